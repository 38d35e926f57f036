package enum

type ImportStatus string

const (
	ImportStatusMatched   ImportStatus = "matched"
	ImportStatusUnmatched ImportStatus = "unmatched"
)

func (t ImportStatus) String() string {
	return string(t)
}

type MatchMethod string

const (
	MatchMethodSubjectReference MatchMethod = "subject_reference"
	MatchMethodSenderHistory    MatchMethod = "sender_history"
	MatchMethodThreadContinuity MatchMethod = "thread_continuity"
	MatchMethodNone             MatchMethod = "none"
)

func (t MatchMethod) String() string {
	return string(t)
}
