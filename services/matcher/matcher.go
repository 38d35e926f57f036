package matcher

import (
	"strings"

	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/utils"
)

// Confidence scores per strategy. Subject references are explicit and rank
// highest; thread continuity slightly below so an explicit reference wins
// when both apply; sender history is circumstantial.
const (
	ConfidenceSubjectReference          = 98
	ConfidenceSubjectReferenceAmbiguous = 92
	ConfidenceThreadContinuity          = 90
	ConfidenceSenderHistory             = 75
)

// MessageFacts is the slice of an inbound message the matcher needs.
type MessageFacts struct {
	Subject     string
	FromAddress string
	ThreadID    string
}

// MatterCandidate is one open matter plus the associations the caller
// loaded for it. The matcher does no I/O; whatever linkage the strategies
// consult must be supplied here.
type MatterCandidate struct {
	ID            string
	ReferenceCode string
	ContactEmails []string
	ThreadIDs     []string
}

// MatchResult carries the decision of a single winning strategy.
type MatchResult struct {
	MatterID   string
	Method     enum.MatchMethod
	Confidence int
}

// Match runs the strategies in fixed order and returns the first confident
// hit, or nil when no strategy fires. Deterministic and free of side
// effects so it stays independently testable.
func Match(msg MessageFacts, candidates []MatterCandidate) *MatchResult {
	if len(candidates) == 0 {
		return nil
	}

	if result := matchSubjectReference(msg, candidates); result != nil {
		return result
	}
	if result := matchThreadContinuity(msg, candidates); result != nil {
		return result
	}
	if result := matchSenderHistory(msg, candidates); result != nil {
		return result
	}
	return nil
}

// matchSubjectReference fires when a matter's reference code appears
// verbatim in the subject line. When several candidates' references occur
// in the subject (near-identical codes sharing a prefix), the longest code
// wins with a reduced confidence.
func matchSubjectReference(msg MessageFacts, candidates []MatterCandidate) *MatchResult {
	subject := strings.ToUpper(utils.NormalizeEmailSubject(msg.Subject))
	if subject == "" {
		return nil
	}

	var hits []MatterCandidate
	for _, candidate := range candidates {
		ref := strings.ToUpper(strings.TrimSpace(candidate.ReferenceCode))
		if ref == "" {
			continue
		}
		if strings.Contains(subject, ref) {
			hits = append(hits, candidate)
		}
	}

	if len(hits) == 0 {
		return nil
	}

	best := hits[0]
	for _, hit := range hits[1:] {
		if len(hit.ReferenceCode) > len(best.ReferenceCode) {
			best = hit
		}
	}

	confidence := ConfidenceSubjectReference
	if len(hits) > 1 {
		confidence = ConfidenceSubjectReferenceAmbiguous
	}

	return &MatchResult{
		MatterID:   best.ID,
		Method:     enum.MatchMethodSubjectReference,
		Confidence: confidence,
	}
}

// matchThreadContinuity fires when the conversation thread is already
// linked to a matter by a prior ingested message.
func matchThreadContinuity(msg MessageFacts, candidates []MatterCandidate) *MatchResult {
	if msg.ThreadID == "" {
		return nil
	}

	for _, candidate := range candidates {
		for _, threadID := range candidate.ThreadIDs {
			if threadID == msg.ThreadID {
				return &MatchResult{
					MatterID:   candidate.ID,
					Method:     enum.MatchMethodThreadContinuity,
					Confidence: ConfidenceThreadContinuity,
				}
			}
		}
	}
	return nil
}

// matchSenderHistory fires when the sender is a known contact of exactly
// one open matter. A sender linked to several open matters is ambiguous and
// the strategy abstains rather than guess.
func matchSenderHistory(msg MessageFacts, candidates []MatterCandidate) *MatchResult {
	sender := utils.NormalizeEmailAddress(msg.FromAddress)
	if sender == "" {
		return nil
	}

	var matched *MatterCandidate
	for i := range candidates {
		for _, contact := range candidates[i].ContactEmails {
			if utils.NormalizeEmailAddress(contact) != sender {
				continue
			}
			if matched != nil && matched.ID != candidates[i].ID {
				// ambiguous, abstain
				return nil
			}
			matched = &candidates[i]
		}
	}

	if matched == nil {
		return nil
	}

	return &MatchResult{
		MatterID:   matched.ID,
		Method:     enum.MatchMethodSenderHistory,
		Confidence: ConfidenceSenderHistory,
	}
}
