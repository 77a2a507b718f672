/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Profile forms (children, caregivers, palette)
- Care period scheduling: success, validation, conflicts
- History, care day edits, summary
- Unavailable storage and rate limiting
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantra/gardeparents/care"
	"github.com/bantra/gardeparents/care/store"
	"github.com/bantra/gardeparents/logging"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T, opts Options) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(care.NewRepository(store.NewMemory(), logging.Nop()), logging.Nop())
	return h, NewRouter(h, opts)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type seeded struct {
	lea, camille, michel int64
}

func seed(t *testing.T, router http.Handler) seeded {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/children", ChildRequest{Name: "Léa", BirthDate: "2019-03-14"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lea := decodeBody[ChildDTO](t, rec)

	rec = do(t, router, http.MethodPost, "/api/caregivers", CaregiverRequest{Name: "Camille", Location: "Lyon", Role: "grand-mere"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	camille := decodeBody[CaregiverDTO](t, rec)

	rec = do(t, router, http.MethodPost, "/api/caregivers", CaregiverRequest{Name: "Michel", Location: "Annecy"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	michel := decodeBody[CaregiverDTO](t, rec)

	return seeded{lea: lea.ID, camille: camille.ID, michel: michel.ID}
}

// =============================================================================
// STATUS AND PROFILES
// =============================================================================

func TestStatus_Ready(t *testing.T) {
	_, router := newTestServer(t, Options{})

	rec := do(t, router, http.MethodGet, "/api/status", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[StatusDTO](t, rec)
	assert.True(t, status.Ready)
	assert.Equal(t, "local", status.Backend)
}

func TestStatus_UnavailableStorage(t *testing.T) {
	h := NewHandler(care.Unavailable(errors.New("unable to open database file"), logging.Nop()), logging.Nop())
	router := NewRouter(h, Options{})

	status := decodeBody[StatusDTO](t, do(t, router, http.MethodGet, "/api/status", nil))
	assert.False(t, status.Ready)
	assert.Equal(t, "unable to open database file", status.Error)

	rec := do(t, router, http.MethodGet, "/api/children", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestChildren_CreateListUpdateDelete(t *testing.T) {
	_, router := newTestServer(t, Options{})
	s := seed(t, router)

	children := decodeBody[[]ChildDTO](t, do(t, router, http.MethodGet, "/api/children", nil))
	require.Len(t, children, 1)
	assert.Equal(t, "Léa", children[0].Name)
	assert.Equal(t, "2019-03-14", children[0].BirthDate)
	assert.Positive(t, children[0].Age)

	path := "/api/children/" + jsonID(s.lea)
	rec := do(t, router, http.MethodPut, path, ChildRequest{Name: "Léa Martin", BirthDate: "2019/03/14"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2019-03-14", decodeBody[ChildDTO](t, rec).BirthDate)

	rec = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChildren_Validation(t *testing.T) {
	_, router := newTestServer(t, Options{})

	rec := do(t, router, http.MethodPost, "/api/children", ChildRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "Veuillez remplir tous les champs", resp.Error)

	rec = do(t, router, http.MethodPost, "/api/children", ChildRequest{Name: "Léa", BirthDate: "not a date"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/children", ChildRequest{Name: "Léa", BirthDate: "2999-01-01"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "La date de naissance ne peut pas être dans le futur", decodeBody[ErrorResponse](t, rec).Error)

	rec = do(t, router, http.MethodGet, "/api/children/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseDate_SlashDatesAreDayFirst(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-07-01", "2025-07-01"},
		{"01/07/2025", "2025-07-01"},
		{"14/03/2019", "2019-03-14"},
		{"2019/03/14", "2019-03-14"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := parseDate("date", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestCaregivers_ColorRules(t *testing.T) {
	_, router := newTestServer(t, Options{})
	seed(t, router)

	// Camille got the first colour, Michel the second
	caregivers := decodeBody[[]CaregiverDTO](t, do(t, router, http.MethodGet, "/api/caregivers", nil))
	require.Len(t, caregivers, 2)
	assert.Equal(t, "#FF0000", caregivers[0].Color)
	assert.Equal(t, "grand-mere", caregivers[0].Role)
	assert.Equal(t, "grand-pere", caregivers[1].Role)

	palette := decodeBody[PaletteDTO](t, do(t, router, http.MethodGet, "/api/caregivers/palette", nil))
	assert.Equal(t, "#FFFF00", palette.Suggested)
	assert.True(t, palette.Colors[0].Used)

	rec := do(t, router, http.MethodPost, "/api/caregivers", CaregiverRequest{Name: "Jean", Location: "Nantes", Color: "#FF0000"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "color_taken", decodeBody[ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodPost, "/api/caregivers", CaregiverRequest{Name: "Jean", Location: "Nantes", Color: "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/caregivers", CaregiverRequest{Name: "Jean", Location: "Nantes", Role: "oncle"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CARE PERIODS
// =============================================================================

func TestCarePeriod_Success(t *testing.T) {
	_, router := newTestServer(t, Options{})
	s := seed(t, router)

	rec := do(t, router, http.MethodPost, "/api/care-periods", CarePeriodRequest{
		StartDate: "2025-07-01", EndDate: "2025-07-03", ChildID: s.lea, CaregiverID: s.camille,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decodeBody[PeriodResultDTO](t, rec)
	assert.Len(t, result.Days, 3)
	assert.Equal(t, "Garde du 01 juillet 2025 au 03 juillet 2025 enregistrée", result.Message)
}

func TestCarePeriod_Errors(t *testing.T) {
	_, router := newTestServer(t, Options{})
	s := seed(t, router)

	tests := []struct {
		name   string
		req    CarePeriodRequest
		status int
		msg    string
	}{
		{"missing caregiver", CarePeriodRequest{StartDate: "2025-07-01", EndDate: "2025-07-02", ChildID: s.lea}, http.StatusBadRequest, "Veuillez remplir tous les champs"},
		{"end before start", CarePeriodRequest{StartDate: "2025-07-05", EndDate: "2025-07-01", ChildID: s.lea, CaregiverID: s.camille}, http.StatusBadRequest, "La date de fin doit être postérieure à la date de début"},
		{"unknown child", CarePeriodRequest{StartDate: "2025-07-01", EndDate: "2025-07-02", ChildID: 99, CaregiverID: s.camille}, http.StatusNotFound, "Enfant introuvable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/care-periods", tt.req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.msg, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestCarePeriod_ConflictListsDates(t *testing.T) {
	// GIVEN: Léa with Camille on July 2
	_, router := newTestServer(t, Options{})
	s := seed(t, router)
	rec := do(t, router, http.MethodPost, "/api/care-periods", CarePeriodRequest{
		StartDate: "2025-07-02", EndDate: "2025-07-02", ChildID: s.lea, CaregiverID: s.camille,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN: Scheduling July 1 to July 3 again
	rec = do(t, router, http.MethodPost, "/api/care-periods", CarePeriodRequest{
		StartDate: "2025-07-01", EndDate: "2025-07-03", ChildID: s.lea, CaregiverID: s.camille,
	})

	// THEN: 409 with the taken date
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "date_conflict", resp.Code)
	assert.Equal(t, []string{"2025-07-02"}, resp.Dates)
	assert.Contains(t, resp.Error, "02 juillet 2025")

	history := decodeBody[HistoryDTO](t, do(t, router, http.MethodGet, "/api/care-days", nil))
	assert.Len(t, history.Entries, 1, "nothing else written")
}

// =============================================================================
// HISTORY AND CARE DAY EDITS
// =============================================================================

func TestCareDays_HistoryEditDelete(t *testing.T) {
	_, router := newTestServer(t, Options{})
	s := seed(t, router)
	rec := do(t, router, http.MethodPost, "/api/care-periods", CarePeriodRequest{
		StartDate: "2025-07-01", EndDate: "2025-07-02", ChildID: s.lea, CaregiverID: s.camille,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	history := decodeBody[HistoryDTO](t, do(t, router, http.MethodGet, "/api/care-days?from=2025-07-01&to=2025-07-31", nil))
	require.Len(t, history.Entries, 2)
	assert.Equal(t, "2025-07-02", history.Entries[0].Date)
	assert.Equal(t, "Léa", history.Entries[0].ChildName)
	assert.Equal(t, "Camille", history.Entries[0].CaregiverName)
	assert.Len(t, history.Days, 2)

	id := history.Entries[1].ID
	path := "/api/care-days/" + jsonID(id)

	rec = do(t, router, http.MethodPut, path, CareDayRequest{Date: "2025-07-02", ChildID: s.lea, CaregiverID: s.camille})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPut, path, CareDayRequest{Date: "2025-07-10", ChildID: s.lea, CaregiverID: s.michel})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-07-10", decodeBody[CareDayDTO](t, rec).Date)

	rec = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCareDays_InvalidRange(t *testing.T) {
	_, router := newTestServer(t, Options{})

	rec := do(t, router, http.MethodGet, "/api/care-days?from=yesterday-ish", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestSummary_MonthAndRange(t *testing.T) {
	h, router := newTestServer(t, Options{})
	require.NoError(t, h.loadLeaJulyScenario(context.Background()))

	summary := decodeBody[SummaryDTO](t, do(t, router, http.MethodGet, "/api/summary/2025/7", nil))
	assert.Equal(t, 20, summary.Total)
	require.Len(t, summary.Shares, 2)
	assert.Equal(t, "Camille", summary.Shares[0].Name)
	assert.Equal(t, 75, summary.Shares[0].Percent)
	assert.Equal(t, 25, summary.Shares[1].Percent)

	empty := decodeBody[SummaryDTO](t, do(t, router, http.MethodGet, "/api/summary?from=2025-08-01&to=2025-08-31", nil))
	assert.Equal(t, 0, empty.Total)
	assert.Empty(t, empty.Shares)

	rec := do(t, router, http.MethodGet, "/api/summary?from=2025-07-31&to=2025-07-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/summary/2025/13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	other := decodeBody[SummaryDTO](t, do(t, router, http.MethodGet, "/api/summary/2025/7?child_id=99", nil))
	assert.Equal(t, 0, other.Total)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRateLimit_WriteRoutesOnly(t *testing.T) {
	_, router := newTestServer(t, Options{RateLimit: 1})

	rec := do(t, router, http.MethodPost, "/api/children", ChildRequest{Name: "Léa"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/children", ChildRequest{Name: "Hugo"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	for i := 0; i < 3; i++ {
		rec = do(t, router, http.MethodGet, "/api/children", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestStatic_PlaceholderWithoutBuild(t *testing.T) {
	_, router := newTestServer(t, Options{StaticDir: t.TempDir()})

	rec := do(t, router, http.MethodGet, "/historique", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Garde des grands-parents")
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
