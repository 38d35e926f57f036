package interfaces

import "context"

// RunResultAuthFailure is the distinguished error value carried in the run
// summary when the mailbox credentials are rejected. Consumers branch on it;
// the underlying cause lives in logs and the account's error message.
const RunResultAuthFailure = "auth_failure"

// RunSummary is the structured result of one mailbox poll.
type RunSummary struct {
	Total       int    `json:"total"`
	Processed   int    `json:"processed"`
	Errors      int    `json:"errors"`
	Skipped     bool   `json:"skipped,omitempty"`
	AuthFailure bool   `json:"-"`
	Error       string `json:"error,omitempty"`
}

type IngestionService interface {
	Poll(ctx context.Context, accountID, firmID string) (*RunSummary, error)
}
