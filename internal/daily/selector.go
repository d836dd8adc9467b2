package daily

import (
	"context"
	"sort"
	"time"

	"contentgate/internal/domain"
)

// DateLayout is the calendar-day format used in selection keys. Using a day
// string rather than a timestamp keeps the pick stable for the whole day.
const DateLayout = "2006-01-02"

// Select deterministically picks one candidate for (userID, category, date).
// Candidates are sorted before indexing, so the same candidate set always
// produces the same value regardless of input order. Returns false when the
// candidate list is empty; callers must treat that as "no content available",
// not an error.
func Select(userID, category, date string, candidates []string) (domain.SelectionResult, bool) {
	if len(candidates) == 0 {
		return domain.SelectionResult{}, false
	}
	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)

	index := int(Hash(userID+":"+category+":"+date) % uint32(len(sorted)))
	return domain.SelectionResult{
		UserID:      userID,
		Category:    category,
		Date:        date,
		CandidateID: sorted[index],
		Index:       index,
	}, true
}

// CandidateSource lists the ids eligible for selection for a content type.
type CandidateSource interface {
	ListTopicIDs(ctx context.Context, contentType string) ([]string, error)
}

// Selector resolves the daily pick against the published candidate set.
type Selector struct {
	source CandidateSource
}

func NewSelector(source CandidateSource) *Selector {
	return &Selector{source: source}
}

// PickForDay returns the deterministic pick for the user on the given day, or
// domain.ErrNoCandidates when the content type has no published content.
func (s *Selector) PickForDay(ctx context.Context, userID, contentType string, day time.Time) (domain.SelectionResult, error) {
	candidates, err := s.source.ListTopicIDs(ctx, contentType)
	if err != nil {
		return domain.SelectionResult{}, err
	}
	result, ok := Select(userID, contentType, day.Format(DateLayout), candidates)
	if !ok {
		return domain.SelectionResult{}, domain.ErrNoCandidates
	}
	return result, nil
}
