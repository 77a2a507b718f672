package care

import (
	"context"
	"sort"
)

// HistoryEntry is a care day with the names the history screen shows.
type HistoryEntry struct {
	CareDay
	ChildName      string
	CaregiverName  string
	CaregiverColor Color
}

// DayGroup is every care day of one calendar day, for the calendar view.
type DayGroup struct {
	Date    Date
	Entries []HistoryEntry
}

type History struct {
	repo *Repository
}

func NewHistory(repo *Repository) *History {
	return &History{repo: repo}
}

// Between lists the care days of [from, to], newest first. A zero bound is
// open. Records pointing at deleted profiles keep empty names.
func (h *History) Between(ctx context.Context, from, to Date) []HistoryEntry {
	children := make(map[ChildID]Child)
	for _, c := range h.repo.ListChildren(ctx) {
		children[c.ID] = c
	}
	caregivers := make(map[CaregiverID]Caregiver)
	for _, cg := range h.repo.ListCaregivers(ctx) {
		caregivers[cg.ID] = cg
	}

	entries := []HistoryEntry{}
	for _, cd := range h.repo.ListCareDays(ctx) {
		if !from.IsZero() && cd.Date.Before(from) {
			continue
		}
		if !to.IsZero() && cd.Date.After(to) {
			continue
		}
		cg := caregivers[cd.CaregiverID]
		entries = append(entries, HistoryEntry{
			CareDay:        cd,
			ChildName:      children[cd.ChildID].Name,
			CaregiverName:  cg.Name,
			CaregiverColor: cg.Color,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries
}

// ByDay groups entries per calendar day, keeping their order.
func ByDay(entries []HistoryEntry) []DayGroup {
	groups := []DayGroup{}
	index := make(map[string]int)
	for _, e := range entries {
		key := e.Date.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: e.Date})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}
