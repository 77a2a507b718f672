package care

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Share is one caregiver's slice of the summary chart.
type Share struct {
	CaregiverID CaregiverID
	Name        string
	Color       Color
	Days        int
	Percent     int
}

// Summary is the per-caregiver distribution of care days over a range.
type Summary struct {
	From   Date
	To     Date
	Total  int
	Shares []Share // empty when Total is zero
}

var hundred = decimal.NewFromInt(100)

// Summarize counts, for each caregiver, the care days in [from, to] and
// turns the counts into rounded percentages. A non-zero childID restricts
// the count to that child. Care days of unknown caregivers are ignored.
func Summarize(days []CareDay, caregivers []Caregiver, from, to Date, childID ChildID) Summary {
	counts := make(map[CaregiverID]int, len(caregivers))
	for _, cg := range caregivers {
		counts[cg.ID] = 0
	}

	total := 0
	for _, cd := range days {
		if childID != 0 && cd.ChildID != childID {
			continue
		}
		if !cd.Date.Within(from, to) {
			continue
		}
		if _, known := counts[cd.CaregiverID]; !known {
			continue
		}
		counts[cd.CaregiverID]++
		total++
	}

	summary := Summary{From: from, To: to, Total: total, Shares: []Share{}}
	if total == 0 {
		return summary
	}

	denominator := decimal.NewFromInt(int64(total))
	for _, cg := range caregivers {
		n := counts[cg.ID]
		summary.Shares = append(summary.Shares, Share{
			CaregiverID: cg.ID,
			Name:        cg.Name,
			Color:       cg.Color,
			Days:        n,
			Percent:     int(decimal.NewFromInt(int64(n)).Mul(hundred).Div(denominator).Round(0).IntPart()),
		})
	}
	return summary
}

// =============================================================================
// SUMMARIES - Summaries read through the repository
// =============================================================================

type Summaries struct {
	repo *Repository
	now  func() time.Time
}

func NewSummaries(repo *Repository) *Summaries {
	return &Summaries{repo: repo, now: time.Now}
}

// Range summarizes [from, to]. Zero bounds default to the current month.
func (s *Summaries) Range(ctx context.Context, from, to Date, childID ChildID) (Summary, error) {
	today := DateOf(s.now())
	if from.IsZero() {
		from = StartOfMonth(today.Year(), today.Month())
	}
	if to.IsZero() {
		to = EndOfMonth(from.Year(), from.Month())
	}
	if to.Before(from) {
		return Summary{}, ErrEndBeforeStart
	}
	return Summarize(s.repo.ListCareDays(ctx), s.repo.ListCaregivers(ctx), from, to, childID), nil
}

// Month summarizes a calendar month.
func (s *Summaries) Month(ctx context.Context, year int, month time.Month, childID ChildID) Summary {
	summary, _ := s.Range(ctx, StartOfMonth(year, month), EndOfMonth(year, month), childID)
	return summary
}
