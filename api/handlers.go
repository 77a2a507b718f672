/*
handlers.go - HTTP API handlers for the grandparent care tracker

PURPOSE:
  Exposes the care tracker to the frontend screens. Handles HTTP
  request/response, JSON serialization, and delegates to the care package.

ENDPOINTS:
  Status:
    GET    /api/status                 Backend readiness

  Children:
    GET    /api/children               List children
    POST   /api/children               Add child
    GET    /api/children/{id}          Get child
    PUT    /api/children/{id}          Edit child
    DELETE /api/children/{id}          Delete child and its care days

  Caregivers:
    GET    /api/caregivers             List caregivers
    POST   /api/caregivers             Add caregiver
    GET    /api/caregivers/palette     Colours, used flags, suggestion
    GET    /api/caregivers/{id}        Get caregiver
    PUT    /api/caregivers/{id}        Edit caregiver
    DELETE /api/caregivers/{id}        Delete caregiver and their care days

  Care days:
    POST   /api/care-periods           Record a period, one care day per day
    GET    /api/care-days              History (?from=&to=)
    GET    /api/care-days/{id}         Get care day
    PUT    /api/care-days/{id}         Edit care day
    DELETE /api/care-days/{id}         Delete care day

  Summary:
    GET    /api/summary                Chart (?from=&to=&child_id=)
    GET    /api/summary/{year}/{month} Chart for a calendar month

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    GET    /api/scenarios/current      Currently loaded scenario
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/reset                  Clear every list

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Dates already taken, colour already used
  - 500: Care days could not be written
  The "error" field is the French message the screens display as is.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-playground/validator/v10"

	"github.com/bantra/gardeparents/care"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo      *care.Repository
	Profiles  *care.Profiles
	Scheduler *care.Scheduler
	Summaries *care.Summaries
	History   *care.History

	logger log.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over the repository.
func NewHandler(repo *care.Repository, logger log.Logger) *Handler {
	return &Handler{
		Repo:      repo,
		Profiles:  care.NewProfiles(repo),
		Scheduler: care.NewScheduler(repo),
		Summaries: care.NewSummaries(repo),
		History:   care.NewHistory(repo),
		logger:    logger,
	}
}

// Status reports whether storage is usable.
// GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	dto := StatusDTO{Ready: h.Repo.Ready(), Backend: string(h.Repo.Backend())}
	if err := h.Repo.Err(); err != nil {
		dto.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// CHILD HANDLERS
// =============================================================================

// ListChildren returns all children sorted by name.
func (h *Handler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children := h.Repo.ListChildren(r.Context())
	dtos := make([]ChildDTO, len(children))
	for i, c := range children {
		dtos[i] = toChildDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetChild(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	child := h.Repo.GetChild(r.Context(), care.ChildID(id))
	if child == nil {
		h.writeCareError(w, care.ErrChildNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toChildDTO(*child))
}

func (h *Handler) CreateChild(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeChildForm(w, r)
	if !ok {
		return
	}
	child, err := h.Profiles.AddChild(r.Context(), form)
	if err != nil {
		h.writeCareError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChildDTO(*child))
}

func (h *Handler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	form, ok := h.decodeChildForm(w, r)
	if !ok {
		return
	}
	child, err := h.Profiles.UpdateChild(r.Context(), care.ChildID(id), form)
	if err != nil {
		h.writeCareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildDTO(*child))
}

func (h *Handler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Profiles.DeleteChild(r.Context(), care.ChildID(id)); err != nil {
		h.writeCareError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeChildForm(w http.ResponseWriter, r *http.Request) (care.ChildForm, bool) {
	var req ChildRequest
	if !h.decode(w, r, &req) {
		return care.ChildForm{}, false
	}
	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		h.writeCareError(w, err)
		return care.ChildForm{}, false
	}
	return care.ChildForm{Name: req.Name, BirthDate: birth, PhotoURL: req.PhotoURL}, true
}

// =============================================================================
// CAREGIVER HANDLERS
// =============================================================================

// ListCaregivers returns all caregivers sorted by name.
func (h *Handler) ListCaregivers(w http.ResponseWriter, r *http.Request) {
	caregivers := h.Repo.ListCaregivers(r.Context())
	dtos := make([]CaregiverDTO, len(caregivers))
	for i, cg := range caregivers {
		dtos[i] = toCaregiverDTO(cg)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetCaregiver(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	cg := h.Repo.GetCaregiver(r.Context(), care.CaregiverID(id))
	if cg == nil {
		h.writeCareError(w, care.ErrCaregiverNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toCaregiverDTO(*cg))
}

func (h *Handler) CreateCaregiver(w http.ResponseWriter, r *http.Request) {
	var req CaregiverRequest
	if !h.decode(w, r, &req) {
		return
	}
	cg, err := h.Profiles.AddCaregiver(r.Context(), caregiverForm(req))
	if err != nil {
		h.writeCareError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCaregiverDTO(*cg))
}

func (h *Handler) UpdateCaregiver(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req CaregiverRequest
	if !h.decode(w, r, &req) {
		return
	}
	cg, err := h.Profiles.UpdateCaregiver(r.Context(), care.CaregiverID(id), caregiverForm(req))
	if err != nil {
		h.writeCareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaregiverDTO(*cg))
}

func (h *Handler) DeleteCaregiver(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Profiles.DeleteCaregiver(r.Context(), care.CaregiverID(id)); err != nil {
		h.writeCareError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Palette returns the colour picker state.
// GET /api/caregivers/palette
func (h *Handler) Palette(w http.ResponseWriter, r *http.Request) {
	entries, suggested := h.Profiles.Palette(r.Context())
	dto := PaletteDTO{Colors: make([]PaletteEntryDTO, len(entries)), Suggested: string(suggested)}
	for i, e := range entries {
		dto.Colors[i] = PaletteEntryDTO{Color: string(e.Color), Used: e.Used}
	}
	writeJSON(w, http.StatusOK, dto)
}

func caregiverForm(req CaregiverRequest) care.CaregiverForm {
	return care.CaregiverForm{
		Name:     req.Name,
		Location: req.Location,
		Phone:    req.Phone,
		Role:     care.Role(req.Role),
		PhotoURL: req.PhotoURL,
		Color:    care.Color(req.Color),
	}
}

// =============================================================================
// CARE DAY HANDLERS
// =============================================================================

// CreateCarePeriod records one care day per day of the period.
// POST /api/care-periods
func (h *Handler) CreateCarePeriod(w http.ResponseWriter, r *http.Request) {
	var req CarePeriodRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		h.writeCareError(w, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		h.writeCareError(w, err)
		return
	}

	result, err := h.Scheduler.SchedulePeriod(r.Context(), care.PeriodRequest{
		Start:       start,
		End:         end,
		ChildID:     care.ChildID(req.ChildID),
		CaregiverID: care.CaregiverID(req.CaregiverID),
	})
	if err != nil {
		h.writeCareError(w, err)
		return
	}

	dto := PeriodResultDTO{
		StartDate: result.Start.String(),
		EndDate:   result.End.String(),
		Days:      make([]CareDayDTO, len(result.Days)),
		Message:   result.Message(),
	}
	for i, cd := range result.Days {
		dto.Days[i] = toCareDayDTO(cd)
	}
	writeJSON(w, http.StatusCreated, dto)
}

// ListCareDays returns the history, newest first.
// GET /api/care-days?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListCareDays(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	entries := h.History.Between(r.Context(), from, to)

	dto := HistoryDTO{
		From:    from.String(),
		To:      to.String(),
		Entries: toHistoryEntryDTOs(entries),
	}
	groups := care.ByDay(entries)
	dto.Days = make([]DayGroupDTO, len(groups))
	for i, g := range groups {
		dto.Days[i] = DayGroupDTO{Date: g.Date.String(), Entries: toHistoryEntryDTOs(g.Entries)}
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) GetCareDay(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	cd := h.Repo.GetCareDay(r.Context(), care.CareDayID(id))
	if cd == nil {
		h.writeCareError(w, care.ErrCareDayNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toCareDayDTO(*cd))
}

func (h *Handler) UpdateCareDay(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req CareDayRequest
	if !h.decode(w, r, &req) {
		return
	}
	day, err := parseDate("date", req.Date)
	if err != nil {
		h.writeCareError(w, err)
		return
	}

	cd, err := h.Scheduler.Reschedule(r.Context(), care.CareDayID(id), care.CareDayRequest{
		Date:        day,
		ChildID:     care.ChildID(req.ChildID),
		CaregiverID: care.CaregiverID(req.CaregiverID),
	})
	if err != nil {
		h.writeCareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCareDayDTO(*cd))
}

func (h *Handler) DeleteCareDay(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if h.Repo.GetCareDay(ctx, care.CareDayID(id)) == nil {
		h.writeCareError(w, care.ErrCareDayNotFound)
		return
	}
	h.Repo.DeleteCareDay(ctx, care.CareDayID(id))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// GetSummary returns the chart of a date range, the current month by default.
// GET /api/summary?from=&to=&child_id=
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	childID, ok := childFilter(w, r)
	if !ok {
		return
	}
	summary, err := h.Summaries.Range(r.Context(), from, to, childID)
	if err != nil {
		h.writeCareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetMonthSummary returns the chart of a calendar month.
// GET /api/summary/{year}/{month}
func (h *Handler) GetMonthSummary(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "Année invalide", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Mois invalide", err)
		return
	}
	childID, ok := childFilter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(h.Summaries.Month(r.Context(), year, time.Month(month), childID)))
}

// =============================================================================
// RESET
// =============================================================================

// ResetDatabase clears every list.
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.Repo.ResetAll(r.Context())
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads and validates a JSON body, writing the error response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide", err)
		return false
	}
	if err := validateRequest(dst); err != nil {
		h.writeCareError(w, err)
		return false
	}
	return true
}

// validateRequest maps validator failures onto the care error sentinels.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return &care.ValidationError{Field: fe.Field(), Err: care.ErrMissingFields}
	case "hexcolor":
		return &care.ValidationError{Field: fe.Field(), Err: care.ErrInvalidColor}
	}
	return &care.ValidationError{Field: fe.Field(), Err: fmt.Errorf("failed %q check", fe.Tag())}
}

// parseDate accepts YYYY-MM-DD and anything else dateparse recognizes,
// reading slash dates day first (01/07/2025 is 1 July). Empty input is the
// zero date.
func parseDate(field, s string) (care.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return care.Date{}, nil
	}
	if d, err := care.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return care.Date{}, &care.ValidationError{Field: field, Err: fmt.Errorf("invalid date %q", s)}
	}
	return care.DateOf(t), nil
}

func (h *Handler) rangeQuery(w http.ResponseWriter, r *http.Request) (care.Date, care.Date, bool) {
	q := r.URL.Query()
	from, err := parseDate("from", q.Get("from"))
	if err != nil {
		h.writeCareError(w, err)
		return care.Date{}, care.Date{}, false
	}
	to, err := parseDate("to", q.Get("to"))
	if err != nil {
		h.writeCareError(w, err)
		return care.Date{}, care.Date{}, false
	}
	return from, to, true
}

func childFilter(w http.ResponseWriter, r *http.Request) (care.ChildID, bool) {
	raw := r.URL.Query().Get("child_id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "Enfant invalide", err)
		return 0, false
	}
	return care.ChildID(id), true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Identifiant invalide", err)
		return 0, false
	}
	return id, true
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeCareError picks the status and message for an error of the care package.
func (h *Handler) writeCareError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: userMessage(err), Details: err.Error()}

	var conflict *care.ConflictError
	var invalid *care.ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &conflict):
		status, resp.Code = http.StatusConflict, "date_conflict"
		resp.Dates = make([]string, len(conflict.Dates))
		for i, d := range conflict.Dates {
			resp.Dates[i] = d.String()
		}
	case errors.Is(err, care.ErrColorTaken):
		status, resp.Code = http.StatusConflict, "color_taken"
	case care.IsNotFound(err):
		status, resp.Code = http.StatusNotFound, "not_found"
	case care.IsClientError(err), errors.As(err, &invalid):
		status, resp.Code = http.StatusBadRequest, "invalid"
	case errors.Is(err, care.ErrCommitFailed):
		resp.Code = "commit_failed"
	}
	if status == http.StatusInternalServerError {
		level.Error(h.logger).Log("msg", "request failed", "err", err)
	}
	writeJSON(w, status, resp)
}

var messages = []struct {
	err error
	msg string
}{
	{care.ErrMissingFields, "Veuillez remplir tous les champs"},
	{care.ErrEndBeforeStart, "La date de fin doit être postérieure à la date de début"},
	{care.ErrCommitFailed, "Erreur lors de l'enregistrement de la garde"},
	{care.ErrChildNotFound, "Enfant introuvable"},
	{care.ErrCaregiverNotFound, "Grand-parent introuvable"},
	{care.ErrCareDayNotFound, "Garde introuvable"},
	{care.ErrBirthDateInFuture, "La date de naissance ne peut pas être dans le futur"},
	{care.ErrInvalidRole, "Rôle invalide"},
	{care.ErrInvalidColor, "Couleur invalide"},
	{care.ErrColorTaken, "Veuillez choisir une couleur unique pour ce grand-parent"},
}

func userMessage(err error) string {
	var conflict *care.ConflictError
	if errors.As(err, &conflict) {
		dates := make([]string, len(conflict.Dates))
		for i, d := range conflict.Dates {
			dates[i] = d.LongFrench()
		}
		return "Impossible d'enregistrer. Les dates suivantes sont déjà prises : " + strings.Join(dates, ", ")
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	var invalid *care.ValidationError
	if errors.As(err, &invalid) {
		return "Valeur invalide : " + invalid.Field
	}
	return "Erreur interne"
}
