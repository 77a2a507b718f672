/*
scenarios.go - Demo families for testing and demonstrations

PURPOSE:

	Provides pre-built families that populate storage with realistic data
	for demos. Each scenario creates children, grandparents and care periods
	through the same profile and scheduling rules the screens use.

AVAILABLE SCENARIOS:

	lea-july:       Léa with Camille and Michel, July 2025 (75% / 25%)
	two-children:   Léa and Hugo, four grandparents, this month and last
	profiles-only:  A family without any care day yet

HOW SCENARIOS WORK:
 1. Reset storage (clear all lists)
 2. Create children and grandparents via care.Profiles
 3. Record care periods via care.Scheduler

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "lea-july"}

NOTE:

	Scenarios reset storage. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kit/log/level"

	"github.com/bantra/gardeparents/care"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "lea-july",
		Name:        "Léa en juillet",
		Description: "Léa chez Camille du 1er au 15 juillet 2025 puis chez Michel du 16 au 20",
	},
	{
		ID:          "two-children",
		Name:        "Deux enfants",
		Description: "Léa et Hugo répartis entre quatre grands-parents sur le mois en cours et le précédent",
	},
	{
		ID:          "profiles-only",
		Name:        "Profils seuls",
		Description: "Un enfant et deux grands-parents, aucune garde enregistrée",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario replaces every list with a demo family.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "lea-july":
		load = h.loadLeaJulyScenario
	case "two-children":
		load = h.loadTwoChildrenScenario
	case "profiles-only":
		load = h.loadProfilesOnlyScenario
	default:
		writeError(w, http.StatusBadRequest, "Scénario inconnu", nil)
		return
	}

	ctx := r.Context()
	h.Repo.ResetAll(ctx)
	h.setScenario("")

	if err := load(ctx); err != nil {
		level.Error(h.logger).Log("msg", "scenario load failed", "scenario", req.ScenarioID, "err", err)
		writeError(w, http.StatusInternalServerError, "Impossible de charger le scénario", err)
		return
	}

	h.setScenario(req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadLeaJulyScenario(ctx context.Context) error {
	lea, err := h.Profiles.AddChild(ctx, care.ChildForm{Name: "Léa", BirthDate: care.NewDate(2019, time.March, 14)})
	if err != nil {
		return err
	}
	camille, err := h.Profiles.AddCaregiver(ctx, care.CaregiverForm{
		Name: "Camille", Location: "Lyon", Phone: "06 12 34 56 78", Role: care.RoleGrandmother,
	})
	if err != nil {
		return err
	}
	michel, err := h.Profiles.AddCaregiver(ctx, care.CaregiverForm{
		Name: "Michel", Location: "Annecy", Role: care.RoleGrandfather,
	})
	if err != nil {
		return err
	}

	return h.schedule(ctx,
		period("2025-07-01", "2025-07-15", lea.ID, camille.ID),
		period("2025-07-16", "2025-07-20", lea.ID, michel.ID),
	)
}

func (h *Handler) loadTwoChildrenScenario(ctx context.Context) error {
	lea, err := h.Profiles.AddChild(ctx, care.ChildForm{Name: "Léa", BirthDate: care.NewDate(2019, time.March, 14)})
	if err != nil {
		return err
	}
	hugo, err := h.Profiles.AddChild(ctx, care.ChildForm{Name: "Hugo", BirthDate: care.NewDate(2021, time.October, 2)})
	if err != nil {
		return err
	}

	forms := []care.CaregiverForm{
		{Name: "Camille", Location: "Lyon", Role: care.RoleGrandmother},
		{Name: "Michel", Location: "Annecy", Role: care.RoleGrandfather},
		{Name: "Françoise", Location: "Nantes", Role: care.RoleGrandmother},
		{Name: "Jean", Location: "Nantes", Role: care.RoleGrandfather},
	}
	ids := make([]care.CaregiverID, len(forms))
	for i, form := range forms {
		cg, err := h.Profiles.AddCaregiver(ctx, form)
		if err != nil {
			return err
		}
		ids[i] = cg.ID
	}

	today := care.Today()
	this := care.StartOfMonth(today.Year(), today.Month())
	last := this.AddMonths(-1)

	return h.schedule(ctx,
		care.PeriodRequest{Start: last.AddDays(4), End: last.AddDays(10), ChildID: lea.ID, CaregiverID: ids[0]},
		care.PeriodRequest{Start: last.AddDays(4), End: last.AddDays(10), ChildID: hugo.ID, CaregiverID: ids[2]},
		care.PeriodRequest{Start: this, End: this.AddDays(4), ChildID: lea.ID, CaregiverID: ids[1]},
		care.PeriodRequest{Start: this.AddDays(2), End: this.AddDays(3), ChildID: hugo.ID, CaregiverID: ids[3]},
		care.PeriodRequest{Start: this.AddDays(7), End: this.AddDays(8), ChildID: hugo.ID, CaregiverID: ids[0]},
	)
}

func (h *Handler) loadProfilesOnlyScenario(ctx context.Context) error {
	if _, err := h.Profiles.AddChild(ctx, care.ChildForm{Name: "Léa", BirthDate: care.NewDate(2019, time.March, 14)}); err != nil {
		return err
	}
	for _, form := range []care.CaregiverForm{
		{Name: "Camille", Location: "Lyon", Role: care.RoleGrandmother},
		{Name: "Michel", Location: "Annecy", Role: care.RoleGrandfather},
	} {
		if _, err := h.Profiles.AddCaregiver(ctx, form); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) schedule(ctx context.Context, periods ...care.PeriodRequest) error {
	for _, p := range periods {
		if _, err := h.Scheduler.SchedulePeriod(ctx, p); err != nil {
			return fmt.Errorf("period %s..%s: %w", p.Start, p.End, err)
		}
	}
	return nil
}

func period(start, end string, child care.ChildID, caregiver care.CaregiverID) care.PeriodRequest {
	return care.PeriodRequest{
		Start:       care.MustParseDate(start),
		End:         care.MustParseDate(end),
		ChildID:     child,
		CaregiverID: caregiver,
	}
}
