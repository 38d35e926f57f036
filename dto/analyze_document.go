package dto

// AnalyzeDocument triggers one AI-analysis pipeline run for a stored
// document. Fire-and-forget from the ingestion worker's perspective; the
// analysis service owns the run from here.
type AnalyzeDocument struct {
	FirmID     string `json:"firmId"`
	MatterID   string `json:"matterId"`
	DocumentID string `json:"documentId"`
}

// EmailMatched is the notification payload published when an inbound email
// is attached to a matter.
type EmailMatched struct {
	FirmID     string `json:"firmId"`
	MatterID   string `json:"matterId"`
	EmailID    string `json:"emailId"`
	Subject    string `json:"subject"`
	Method     string `json:"method"`
	Confidence int    `json:"confidence"`
}
