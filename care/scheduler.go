/*
scheduler.go - Recording care periods

PURPOSE:
  Turns "child C stays with caregiver G from Start to End" into one CareDay
  per calendar day, refusing the whole period when any of its days is
  already recorded for the same child and caregiver.

FLOW (SchedulePeriod):
  1. Every input present             else ErrMissingFields
  2. End not before Start            else ErrEndBeforeStart
  3. Child and caregiver exist       else ErrChildNotFound / ErrCaregiverNotFound
  4. Scan [Start, End] against existing care days of the pair; collect
     every taken date               else *ConflictError, nothing written
  5. Write all days in one transaction (Repository.AddCareDays)
                                     else ErrCommitFailed, nothing written

  A given (child, caregiver, date) is recorded at most once. The same day
  may still have other care days: another child, or another caregiver.

SEE ALSO:
  - repository.go: AddCareDays
  - errors.go: ConflictError
*/
package care

import (
	"context"
	"fmt"
)

// PeriodRequest is the "add care period" form.
type PeriodRequest struct {
	Start       Date
	End         Date
	ChildID     ChildID
	CaregiverID CaregiverID
}

// PeriodResult describes a recorded period.
type PeriodResult struct {
	Start Date
	End   Date
	Days  []CareDay
}

// Message is the confirmation shown once the period is recorded.
func (p PeriodResult) Message() string {
	if p.Start.Equal(p.End) {
		return fmt.Sprintf("Garde du %s enregistrée", p.Start.LongFrench())
	}
	return fmt.Sprintf("Garde du %s au %s enregistrée", p.Start.LongFrench(), p.End.LongFrench())
}

// CareDayRequest is the "edit care day" form.
type CareDayRequest struct {
	Date        Date
	ChildID     ChildID
	CaregiverID CaregiverID
}

type Scheduler struct {
	repo *Repository
}

func NewScheduler(repo *Repository) *Scheduler {
	return &Scheduler{repo: repo}
}

// SchedulePeriod records one care day per day of the request.
func (s *Scheduler) SchedulePeriod(ctx context.Context, req PeriodRequest) (*PeriodResult, error) {
	if req.Start.IsZero() || req.End.IsZero() || req.ChildID == 0 || req.CaregiverID == 0 {
		return nil, ErrMissingFields
	}
	if req.End.Before(req.Start) {
		return nil, ErrEndBeforeStart
	}
	if err := s.checkReferences(ctx, req.ChildID, req.CaregiverID); err != nil {
		return nil, err
	}

	days := DaysInRange(req.Start, req.End)
	if conflicts := Conflicts(s.repo.ListCareDays(ctx), req.ChildID, req.CaregiverID, days); len(conflicts) > 0 {
		return nil, &ConflictError{ChildID: req.ChildID, CaregiverID: req.CaregiverID, Dates: conflicts}
	}

	ids, err := s.repo.AddCareDays(ctx, req.ChildID, req.CaregiverID, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	result := &PeriodResult{Start: req.Start, End: req.End, Days: make([]CareDay, len(days))}
	for i, d := range days {
		result.Days[i] = CareDay{ID: ids[i], ChildID: req.ChildID, CaregiverID: req.CaregiverID, Date: d}
	}
	return result, nil
}

// Reschedule edits a single care day, keeping the one-per-triple rule.
func (s *Scheduler) Reschedule(ctx context.Context, id CareDayID, req CareDayRequest) (*CareDay, error) {
	if req.Date.IsZero() || req.ChildID == 0 || req.CaregiverID == 0 {
		return nil, ErrMissingFields
	}
	existing := s.repo.GetCareDay(ctx, id)
	if existing == nil {
		return nil, ErrCareDayNotFound
	}
	if err := s.checkReferences(ctx, req.ChildID, req.CaregiverID); err != nil {
		return nil, err
	}

	for _, cd := range s.repo.ListCareDays(ctx) {
		if cd.ID != id && cd.Matches(req.ChildID, req.CaregiverID, req.Date) {
			return nil, &ConflictError{ChildID: req.ChildID, CaregiverID: req.CaregiverID, Dates: []Date{req.Date}}
		}
	}

	updated := CareDay{ID: id, ChildID: req.ChildID, CaregiverID: req.CaregiverID, Date: req.Date}
	s.repo.UpdateCareDay(ctx, updated)
	return &updated, nil
}

func (s *Scheduler) checkReferences(ctx context.Context, childID ChildID, caregiverID CaregiverID) error {
	if s.repo.GetChild(ctx, childID) == nil {
		return ErrChildNotFound
	}
	if s.repo.GetCaregiver(ctx, caregiverID) == nil {
		return ErrCaregiverNotFound
	}
	return nil
}

// Conflicts returns the days already recorded for the child and caregiver,
// in the order of days.
func Conflicts(existing []CareDay, childID ChildID, caregiverID CaregiverID, days []Date) []Date {
	taken := make(map[string]bool)
	for _, cd := range existing {
		if cd.ChildID == childID && cd.CaregiverID == caregiverID {
			taken[cd.Date.String()] = true
		}
	}
	var conflicts []Date
	for _, d := range days {
		if taken[d.String()] {
			conflicts = append(conflicts, d)
		}
	}
	return conflicts
}
