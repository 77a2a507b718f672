/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures the frontend screens exchange with the API.
  These types decouple the care records from the wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Profiles:  ChildDTO, ChildRequest, CaregiverDTO, CaregiverRequest, PaletteDTO
  Care days: CareDayDTO, CarePeriodRequest, CareDayRequest, PeriodResultDTO
  Screens:   HistoryDTO, SummaryDTO, StatusDTO, ScenarioDTO

VALIDATION:
  Request types carry go-playground/validator tags for presence and
  format. Business rules (date ordering, palette, conflicts) live in the
  care package.

DATES:
  Dates are "YYYY-MM-DD" in responses. Requests also accept the other
  formats dateparse understands.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import "github.com/bantra/gardeparents/care"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChildRequest is the add/edit child form.
type ChildRequest struct {
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birth_date"`
	PhotoURL  string `json:"photo_url"`
}

// CaregiverRequest is the add/edit caregiver form.
type CaregiverRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	PhotoURL string `json:"photo_url"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
}

// CarePeriodRequest is the "add care period" form.
type CarePeriodRequest struct {
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	ChildID     int64  `json:"child_id" validate:"required"`
	CaregiverID int64  `json:"caregiver_id" validate:"required"`
}

// CareDayRequest is the "edit care day" form.
type CareDayRequest struct {
	Date        string `json:"date" validate:"required"`
	ChildID     int64  `json:"child_id" validate:"required"`
	CaregiverID int64  `json:"caregiver_id" validate:"required"`
}

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type ChildDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	PhotoURL  string `json:"photo_url,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
}

type CaregiverDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	PhotoURL string `json:"photo_url,omitempty"`
	Color    string `json:"color,omitempty"`
}

type CareDayDTO struct {
	ID          int64  `json:"id"`
	ChildID     int64  `json:"child_id"`
	CaregiverID int64  `json:"caregiver_id"`
	Date        string `json:"date"`
}

// PeriodResultDTO confirms a recorded care period.
type PeriodResultDTO struct {
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Days      []CareDayDTO `json:"days"`
	Message   string       `json:"message"`
}

type HistoryEntryDTO struct {
	CareDayDTO
	ChildName      string `json:"child_name"`
	CaregiverName  string `json:"caregiver_name"`
	CaregiverColor string `json:"caregiver_color,omitempty"`
}

type DayGroupDTO struct {
	Date    string            `json:"date"`
	Entries []HistoryEntryDTO `json:"entries"`
}

// HistoryDTO feeds both the list and the calendar of the history screen.
type HistoryDTO struct {
	From    string            `json:"from,omitempty"`
	To      string            `json:"to,omitempty"`
	Entries []HistoryEntryDTO `json:"entries"`
	Days    []DayGroupDTO     `json:"days"`
}

type ShareDTO struct {
	CaregiverID int64  `json:"caregiver_id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Days        int    `json:"days"`
	Percent     int    `json:"percent"`
}

// SummaryDTO is the home screen chart. Shares is empty when no care day
// falls in the range.
type SummaryDTO struct {
	From   string     `json:"from"`
	To     string     `json:"to"`
	Total  int        `json:"total"`
	Shares []ShareDTO `json:"shares"`
}

type PaletteEntryDTO struct {
	Color string `json:"color"`
	Used  bool   `json:"used"`
}

type PaletteDTO struct {
	Colors    []PaletteEntryDTO `json:"colors"`
	Suggested string            `json:"suggested"`
}

type StatusDTO struct {
	Ready   bool   `json:"ready"`
	Backend string `json:"backend,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details any      `json:"details,omitempty"`
	Dates   []string `json:"dates,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toChildDTO(c care.Child) ChildDTO {
	return ChildDTO{
		ID:        int64(c.ID),
		Name:      c.Name,
		Age:       c.Age,
		PhotoURL:  c.PhotoURL,
		BirthDate: c.BirthDate.String(),
	}
}

func toCaregiverDTO(cg care.Caregiver) CaregiverDTO {
	return CaregiverDTO{
		ID:       int64(cg.ID),
		Name:     cg.Name,
		Location: cg.Location,
		Phone:    cg.Phone,
		Role:     string(cg.Role),
		PhotoURL: cg.PhotoURL,
		Color:    string(cg.Color),
	}
}

func toCareDayDTO(cd care.CareDay) CareDayDTO {
	return CareDayDTO{
		ID:          int64(cd.ID),
		ChildID:     int64(cd.ChildID),
		CaregiverID: int64(cd.CaregiverID),
		Date:        cd.Date.String(),
	}
}

func toHistoryEntryDTOs(entries []care.HistoryEntry) []HistoryEntryDTO {
	dtos := make([]HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = HistoryEntryDTO{
			CareDayDTO:     toCareDayDTO(e.CareDay),
			ChildName:      e.ChildName,
			CaregiverName:  e.CaregiverName,
			CaregiverColor: string(e.CaregiverColor),
		}
	}
	return dtos
}

func toSummaryDTO(s care.Summary) SummaryDTO {
	dto := SummaryDTO{
		From:   s.From.String(),
		To:     s.To.String(),
		Total:  s.Total,
		Shares: make([]ShareDTO, len(s.Shares)),
	}
	for i, sh := range s.Shares {
		dto.Shares[i] = ShareDTO{
			CaregiverID: int64(sh.CaregiverID),
			Name:        sh.Name,
			Color:       string(sh.Color),
			Days:        sh.Days,
			Percent:     sh.Percent,
		}
	}
	return dto
}
