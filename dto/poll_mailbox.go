package dto

// PollMailbox is the job payload the scheduler enqueues per account. The
// queue delivers it at least once; the ingestion worker is idempotent.
type PollMailbox struct {
	EmailAccountID string `json:"emailAccountId"`
	FirmID         string `json:"firmId"`
}
