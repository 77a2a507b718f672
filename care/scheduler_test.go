package care_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bantra/gardeparents/care"
	"github.com/bantra/gardeparents/care/store"
	"github.com/bantra/gardeparents/logging"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type family struct {
	repo    *care.Repository
	lea     care.ChildID
	hugo    care.ChildID
	camille care.CaregiverID
	michel  care.CaregiverID
}

func newFamily(t *testing.T) family {
	t.Helper()
	repo := care.NewRepository(store.NewMemory(), logging.Nop())
	ctx := context.Background()

	f := family{repo: repo}
	f.lea = repo.AddChild(ctx, care.Child{Name: "Léa", Age: 6})
	f.hugo = repo.AddChild(ctx, care.Child{Name: "Hugo", Age: 3})
	f.camille = repo.AddCaregiver(ctx, care.Caregiver{Name: "Camille", Location: "Lyon", Role: care.RoleGrandmother, Color: "#FF0000"})
	f.michel = repo.AddCaregiver(ctx, care.Caregiver{Name: "Michel", Location: "Annecy", Role: care.RoleGrandfather, Color: "#FF7F00"})
	require.NotZero(t, f.lea)
	require.NotZero(t, f.camille)
	return f
}

func (f family) period(start, end string, child care.ChildID, caregiver care.CaregiverID) care.PeriodRequest {
	return care.PeriodRequest{
		Start:       care.MustParseDate(start),
		End:         care.MustParseDate(end),
		ChildID:     child,
		CaregiverID: caregiver,
	}
}

// =============================================================================
// PERIOD SCHEDULING
// =============================================================================

func TestSchedulePeriod_OneCareDayPerDay(t *testing.T) {
	// GIVEN: Léa and Camille, no care days
	f := newFamily(t)
	sched := care.NewScheduler(f.repo)
	ctx := context.Background()

	// WHEN: Léa stays with Camille from July 1 to July 3
	result, err := sched.SchedulePeriod(ctx, f.period("2025-07-01", "2025-07-03", f.lea, f.camille))

	// THEN: Three care days are recorded
	require.NoError(t, err)
	require.Len(t, result.Days, 3)
	assert.Equal(t, "Garde du 01 juillet 2025 au 03 juillet 2025 enregistrée", result.Message())

	days := f.repo.ListCareDays(ctx)
	require.Len(t, days, 3)
	for _, cd := range days {
		assert.Equal(t, f.lea, cd.ChildID)
		assert.Equal(t, f.camille, cd.CaregiverID)
		assert.NotZero(t, cd.ID)
	}
}

func TestSchedulePeriod_SingleDayMessage(t *testing.T) {
	f := newFamily(t)
	result, err := care.NewScheduler(f.repo).SchedulePeriod(context.Background(),
		f.period("2025-07-14", "2025-07-14", f.lea, f.camille))

	require.NoError(t, err)
	assert.Len(t, result.Days, 1)
	assert.Equal(t, "Garde du 14 juillet 2025 enregistrée", result.Message())
}

func TestSchedulePeriod_ValidationOrder(t *testing.T) {
	f := newFamily(t)
	sched := care.NewScheduler(f.repo)
	ctx := context.Background()

	tests := []struct {
		name string
		req  care.PeriodRequest
		want error
	}{
		{"missing start", care.PeriodRequest{End: care.MustParseDate("2025-07-01"), ChildID: f.lea, CaregiverID: f.camille}, care.ErrMissingFields},
		{"missing child", f.period("2025-07-01", "2025-07-02", 0, f.camille), care.ErrMissingFields},
		{"missing fields win over reversed dates", f.period("2025-07-05", "2025-07-01", f.lea, 0), care.ErrMissingFields},
		{"end before start", f.period("2025-07-05", "2025-07-01", f.lea, f.camille), care.ErrEndBeforeStart},
		{"unknown child", f.period("2025-07-01", "2025-07-02", 99, f.camille), care.ErrChildNotFound},
		{"unknown caregiver", f.period("2025-07-01", "2025-07-02", f.lea, 99), care.ErrCaregiverNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sched.SchedulePeriod(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.repo.ListCareDays(ctx), "nothing written on validation errors")
}

func TestSchedulePeriod_LongPeriodHasNoCap(t *testing.T) {
	// GIVEN: A period of more than a year
	f := newFamily(t)
	ctx := context.Background()

	// WHEN: Scheduling it
	result, err := care.NewScheduler(f.repo).SchedulePeriod(ctx,
		f.period("2025-01-01", "2026-01-02", f.lea, f.camille))

	// THEN: One care day per calendar day, both ends included
	require.NoError(t, err)
	assert.Len(t, result.Days, 367)
	assert.Len(t, f.repo.ListCareDays(ctx), 367)
}

func TestSchedulePeriod_ConflictListsEveryTakenDate(t *testing.T) {
	// GIVEN: Léa already with Camille on July 2 and July 4
	f := newFamily(t)
	sched := care.NewScheduler(f.repo)
	ctx := context.Background()
	_, err := sched.SchedulePeriod(ctx, f.period("2025-07-02", "2025-07-02", f.lea, f.camille))
	require.NoError(t, err)
	_, err = sched.SchedulePeriod(ctx, f.period("2025-07-04", "2025-07-04", f.lea, f.camille))
	require.NoError(t, err)

	// WHEN: Scheduling July 1 to July 5 for the same pair
	_, err = sched.SchedulePeriod(ctx, f.period("2025-07-01", "2025-07-05", f.lea, f.camille))

	// THEN: Both dates are reported and nothing else is written
	var conflict *care.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, care.ErrDateConflict)
	require.Len(t, conflict.Dates, 2)
	assert.Equal(t, "2025-07-02", conflict.Dates[0].String())
	assert.Equal(t, "2025-07-04", conflict.Dates[1].String())
	assert.Len(t, f.repo.ListCareDays(ctx), 2)
}

func TestSchedulePeriod_SameDayOtherPairAllowed(t *testing.T) {
	f := newFamily(t)
	sched := care.NewScheduler(f.repo)
	ctx := context.Background()

	_, err := sched.SchedulePeriod(ctx, f.period("2025-07-01", "2025-07-01", f.lea, f.camille))
	require.NoError(t, err)

	_, err = sched.SchedulePeriod(ctx, f.period("2025-07-01", "2025-07-01", f.lea, f.michel))
	assert.NoError(t, err, "other caregiver, same child and day")

	_, err = sched.SchedulePeriod(ctx, f.period("2025-07-01", "2025-07-01", f.hugo, f.camille))
	assert.NoError(t, err, "other child, same caregiver and day")

	assert.Len(t, f.repo.ListCareDays(ctx), 3)
}

func TestSchedulePeriod_CommitFailureWritesNothing(t *testing.T) {
	// GIVEN: A store whose transaction fails
	s := new(mockStore)
	s.On("GetChild", mock.Anything, care.ChildID(1)).Return(&care.Child{ID: 1, Name: "Léa"}, nil)
	s.On("GetCaregiver", mock.Anything, care.CaregiverID(2)).Return(&care.Caregiver{ID: 2, Name: "Camille"}, nil)
	s.On("ListCareDays", mock.Anything).Return([]care.CareDay{}, nil)
	s.On("WithTx", mock.Anything).Return(errDisk)

	sched := care.NewScheduler(care.NewRepository(s, logging.Nop()))

	// WHEN: Scheduling a period
	result, err := sched.SchedulePeriod(context.Background(), care.PeriodRequest{
		Start:       care.MustParseDate("2025-07-01"),
		End:         care.MustParseDate("2025-07-03"),
		ChildID:     1,
		CaregiverID: 2,
	})

	// THEN: The commit error is reported
	assert.Nil(t, result)
	assert.ErrorIs(t, err, care.ErrCommitFailed)
	s.AssertNotCalled(t, "AddCareDay", mock.Anything, mock.Anything)
}

// =============================================================================
// SINGLE CARE DAY EDITS
// =============================================================================

func TestReschedule_MovesCareDay(t *testing.T) {
	f := newFamily(t)
	sched := care.NewScheduler(f.repo)
	ctx := context.Background()

	result, err := sched.SchedulePeriod(ctx, f.period("2025-07-01", "2025-07-01", f.lea, f.camille))
	require.NoError(t, err)
	id := result.Days[0].ID

	updated, err := sched.Reschedule(ctx, id, care.CareDayRequest{
		Date: care.MustParseDate("2025-07-08"), ChildID: f.lea, CaregiverID: f.michel,
	})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)

	stored := f.repo.GetCareDay(ctx, id)
	require.NotNil(t, stored)
	assert.Equal(t, "2025-07-08", stored.Date.String())
	assert.Equal(t, f.michel, stored.CaregiverID)
}

func TestReschedule_RejectsDuplicateAndUnknown(t *testing.T) {
	f := newFamily(t)
	sched := care.NewScheduler(f.repo)
	ctx := context.Background()

	result, err := sched.SchedulePeriod(ctx, f.period("2025-07-01", "2025-07-02", f.lea, f.camille))
	require.NoError(t, err)

	// Moving July 1 onto July 2 duplicates the pair's day
	_, err = sched.Reschedule(ctx, result.Days[0].ID, care.CareDayRequest{
		Date: care.MustParseDate("2025-07-02"), ChildID: f.lea, CaregiverID: f.camille,
	})
	assert.ErrorIs(t, err, care.ErrDateConflict)

	// Keeping its own date is not a conflict
	_, err = sched.Reschedule(ctx, result.Days[0].ID, care.CareDayRequest{
		Date: care.MustParseDate("2025-07-01"), ChildID: f.lea, CaregiverID: f.camille,
	})
	assert.NoError(t, err)

	_, err = sched.Reschedule(ctx, 999, care.CareDayRequest{
		Date: care.MustParseDate("2025-07-09"), ChildID: f.lea, CaregiverID: f.camille,
	})
	assert.ErrorIs(t, err, care.ErrCareDayNotFound)

	_, err = sched.Reschedule(ctx, result.Days[0].ID, care.CareDayRequest{ChildID: f.lea, CaregiverID: f.camille})
	assert.ErrorIs(t, err, care.ErrMissingFields)
}

func TestConflicts_KeepsRequestOrder(t *testing.T) {
	existing := []care.CareDay{
		{ID: 1, ChildID: 1, CaregiverID: 1, Date: care.MustParseDate("2025-07-03")},
		{ID: 2, ChildID: 1, CaregiverID: 1, Date: care.MustParseDate("2025-07-01")},
		{ID: 3, ChildID: 1, CaregiverID: 2, Date: care.MustParseDate("2025-07-02")},
	}
	days := care.DaysInRange(care.MustParseDate("2025-07-01"), care.MustParseDate("2025-07-03"))

	conflicts := care.Conflicts(existing, 1, 1, days)

	require.Len(t, conflicts, 2)
	assert.Equal(t, "2025-07-01", conflicts[0].String())
	assert.Equal(t, "2025-07-03", conflicts[1].String())
}
