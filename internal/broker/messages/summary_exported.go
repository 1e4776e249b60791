package messages

import "time"

// SummaryExported is published after a summary list file has been written for a bill.
type SummaryExported struct {
	EventID     string    `json:"event_id"`
	CompanyCode string    `json:"company_code"`
	BillNo      string    `json:"bill_no"`
	FileName    string    `json:"file_name"`
	InvtCount   int       `json:"invt_count"`
	ExportedAt  time.Time `json:"exported_at"`
}
