package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

const (
	ticketPrefix     = "GRV"
	ticketDateLayout = "20060102"
	ticketMaxSeq     = 9999
)

// ticketDayPrefix returns the identifier prefix shared by every ticket
// created on the given UTC calendar day, e.g. "GRV-20260219-".
func ticketDayPrefix(today time.Time) string {
	return fmt.Sprintf("%s-%s-", ticketPrefix, today.UTC().Format(ticketDateLayout))
}

// nextTicketID computes the next ticket identifier for today given the
// highest existing identifier with today's prefix ("" when the day has
// no tickets yet). Sequences run 0001..9999; exhausting the range is a
// capacity error rather than a silent wrap that would corrupt the
// format.
func nextTicketID(today time.Time, lastID string) (string, error) {
	prefix := ticketDayPrefix(today)

	seq := 1
	if lastID != "" {
		suffix := strings.TrimPrefix(lastID, prefix)
		last, err := strconv.Atoi(suffix)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("malformed ticket id %q", lastID))
		}
		seq = last + 1
	}

	if seq > ticketMaxSeq {
		return "", appErrors.Clone(appErrors.ErrTicketCapacity, fmt.Sprintf("ticket sequence for %s exhausted", today.UTC().Format(ticketDateLayout)))
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
