package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflowhq/mailroom/internal/enum"
)

func TestMatch_SubjectReference(t *testing.T) {
	candidates := []MatterCandidate{
		{ID: "matter-1", ReferenceCode: "MAT-001"},
		{ID: "matter-42", ReferenceCode: "MAT-042"},
	}

	result := Match(MessageFacts{Subject: "Re: Discovery documents for MAT-042"}, candidates)

	require.NotNil(t, result)
	assert.Equal(t, "matter-42", result.MatterID)
	assert.Equal(t, enum.MatchMethodSubjectReference, result.Method)
	assert.Equal(t, ConfidenceSubjectReference, result.Confidence)
}

func TestMatch_SubjectReferenceCaseInsensitive(t *testing.T) {
	candidates := []MatterCandidate{
		{ID: "matter-42", ReferenceCode: "MAT-042"},
	}

	result := Match(MessageFacts{Subject: "update on mat-042 settlement"}, candidates)

	require.NotNil(t, result)
	assert.Equal(t, "matter-42", result.MatterID)
}

func TestMatch_SubjectReferencePrecedesSenderHistory(t *testing.T) {
	// Subject names one matter, sender belongs to another; the explicit
	// reference must win and sender history must not be consulted.
	candidates := []MatterCandidate{
		{ID: "matter-42", ReferenceCode: "MAT-042"},
		{ID: "matter-7", ReferenceCode: "MAT-007", ContactEmails: []string{"client@example.com"}},
	}

	result := Match(MessageFacts{
		Subject:     "MAT-042: signed engagement letter",
		FromAddress: "client@example.com",
	}, candidates)

	require.NotNil(t, result)
	assert.Equal(t, "matter-42", result.MatterID)
	assert.Equal(t, enum.MatchMethodSubjectReference, result.Method)
}

func TestMatch_SubjectReferenceNearIdenticalCodes(t *testing.T) {
	// MAT-04 is a prefix of MAT-042, so both references occur in the
	// subject; the longer, more specific code wins with reduced confidence.
	candidates := []MatterCandidate{
		{ID: "matter-4", ReferenceCode: "MAT-04"},
		{ID: "matter-42", ReferenceCode: "MAT-042"},
	}

	result := Match(MessageFacts{Subject: "Invoice MAT-042"}, candidates)

	require.NotNil(t, result)
	assert.Equal(t, "matter-42", result.MatterID)
	assert.Equal(t, ConfidenceSubjectReferenceAmbiguous, result.Confidence)
}

func TestMatch_ThreadContinuity(t *testing.T) {
	candidates := []MatterCandidate{
		{ID: "matter-1", ReferenceCode: "MAT-001"},
		{ID: "matter-9", ReferenceCode: "MAT-009", ThreadIDs: []string{"thread-abc"}},
	}

	result := Match(MessageFacts{Subject: "Re: our call", ThreadID: "thread-abc"}, candidates)

	require.NotNil(t, result)
	assert.Equal(t, "matter-9", result.MatterID)
	assert.Equal(t, enum.MatchMethodThreadContinuity, result.Method)
	assert.Equal(t, ConfidenceThreadContinuity, result.Confidence)
}

func TestMatch_SubjectReferencePrecedesThreadContinuity(t *testing.T) {
	candidates := []MatterCandidate{
		{ID: "matter-42", ReferenceCode: "MAT-042"},
		{ID: "matter-9", ReferenceCode: "MAT-009", ThreadIDs: []string{"thread-abc"}},
	}

	result := Match(MessageFacts{Subject: "MAT-042 hearing date", ThreadID: "thread-abc"}, candidates)

	require.NotNil(t, result)
	assert.Equal(t, enum.MatchMethodSubjectReference, result.Method)
	assert.Equal(t, "matter-42", result.MatterID)
}

func TestMatch_SenderHistory(t *testing.T) {
	candidates := []MatterCandidate{
		{ID: "matter-1", ReferenceCode: "MAT-001"},
		{ID: "matter-7", ReferenceCode: "MAT-007", ContactEmails: []string{"Client@Example.com"}},
	}

	result := Match(MessageFacts{
		Subject:     "quick question",
		FromAddress: "client@example.com",
	}, candidates)

	require.NotNil(t, result)
	assert.Equal(t, "matter-7", result.MatterID)
	assert.Equal(t, enum.MatchMethodSenderHistory, result.Method)
	assert.Equal(t, ConfidenceSenderHistory, result.Confidence)
}

func TestMatch_SenderHistoryAbstainsWhenAmbiguous(t *testing.T) {
	// The sender is a contact on two open matters; guessing either would be
	// wrong half the time, so the strategy abstains and nothing matches.
	candidates := []MatterCandidate{
		{ID: "matter-7", ReferenceCode: "MAT-007", ContactEmails: []string{"client@example.com"}},
		{ID: "matter-8", ReferenceCode: "MAT-008", ContactEmails: []string{"client@example.com"}},
	}

	result := Match(MessageFacts{
		Subject:     "quick question",
		FromAddress: "client@example.com",
	}, candidates)

	assert.Nil(t, result)
}

func TestMatch_SenderHistorySameMatterTwice(t *testing.T) {
	// Duplicate contact rows for the same matter are not ambiguity.
	candidates := []MatterCandidate{
		{ID: "matter-7", ReferenceCode: "MAT-007", ContactEmails: []string{"client@example.com", "client@example.com"}},
	}

	result := Match(MessageFacts{FromAddress: "client@example.com"}, candidates)

	require.NotNil(t, result)
	assert.Equal(t, "matter-7", result.MatterID)
}

func TestMatch_NoStrategyFires(t *testing.T) {
	candidates := []MatterCandidate{
		{ID: "matter-1", ReferenceCode: "MAT-001", ContactEmails: []string{"known@example.com"}},
	}

	result := Match(MessageFacts{
		Subject:     "newsletter",
		FromAddress: "stranger@example.com",
		ThreadID:    "thread-new",
	}, candidates)

	assert.Nil(t, result)
}

func TestMatch_NoCandidates(t *testing.T) {
	result := Match(MessageFacts{Subject: "MAT-042"}, nil)
	assert.Nil(t, result)
}

func TestMatch_EmptyReferenceCodeNeverMatches(t *testing.T) {
	candidates := []MatterCandidate{
		{ID: "matter-1", ReferenceCode: ""},
	}

	result := Match(MessageFacts{Subject: "anything at all"}, candidates)
	assert.Nil(t, result)
}
