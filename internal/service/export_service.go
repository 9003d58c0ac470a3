package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusworks/grievance-api/internal/models"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
	"github.com/campusworks/grievance-api/pkg/export"
)

type exportGrievanceLister interface {
	ListAll(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, error)
}

// ExportService renders the grievance register as CSV or PDF for
// administrative reporting. Synchronous; the register is small.
type ExportService struct {
	grievances exportGrievanceLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(grievances exportGrievanceLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		grievances: grievances,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

var exportHeaders = []string{"Ticket", "Title", "Category", "Priority", "Status", "Escalation", "Deadline", "Created"}

// Export renders the register in the requested format. Admin only.
func (s *ExportService) Export(ctx context.Context, actor Actor, filter models.GrievanceFilter, format string) ([]byte, string, error) {
	if actor.Role != models.RoleAdmin {
		return nil, "", appErrors.ErrForbidden
	}

	grievances, err := s.grievances.ListAll(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grievances")
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(grievances))}
	for i := range grievances {
		g := &grievances[i]
		deadline := ""
		if g.Deadline != nil {
			deadline = g.Deadline.UTC().Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Ticket":     g.TicketID,
			"Title":      g.Title,
			"Category":   string(g.Category),
			"Priority":   string(g.Priority),
			"Status":     string(g.Status),
			"Escalation": fmt.Sprintf("%d", g.EscalationLevel),
			"Deadline":   deadline,
			"Created":    g.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Grievance Register")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	}
	return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format))
}
