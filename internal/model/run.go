package model

import "time"

// DerivationRun records one execution of the offline deriver.
type DerivationRun struct {
	ID                 string        `json:"id"`
	Dataset            string        `json:"dataset"`
	RecordsRead        int           `json:"records_read"`
	RecordsUsed        int           `json:"records_used"`
	Locations          int           `json:"locations"`
	AccidentProneCount int           `json:"accident_prone_count"`
	Threshold          int           `json:"threshold"`
	Metadata           ModelMetadata `json:"metadata"`
	StartedAt          time.Time     `json:"started_at"`
	FinishedAt         time.Time     `json:"finished_at"`
}

// Duration returns how long the run took.
func (r DerivationRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
