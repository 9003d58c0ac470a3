package models

// CategoryCount aggregates grievances per category.
type CategoryCount struct {
	Category GrievanceCategory `db:"category" json:"category"`
	Count    int               `db:"count" json:"count"`
}

// StatusCount aggregates grievances per status.
type StatusCount struct {
	Status GrievanceStatus `db:"status" json:"status"`
	Count  int             `db:"count" json:"count"`
}

// MonthlyCount is one point of the trailing submission trend, keyed by
// a "Jan 2006" style label.
type MonthlyCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ChartStats is the read-only statistics payload for dashboard charts.
type ChartStats struct {
	Categories map[GrievanceCategory]int `json:"categories"`
	Statuses   map[GrievanceStatus]int   `json:"statuses"`
	Monthly    []MonthlyCount            `json:"monthly"`
}
