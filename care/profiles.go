/*
profiles.go - Child and caregiver forms

PURPOSE:
  Validation and derivation that happens before a profile is written:
  - Child:     name required, birth date not in the future, age computed
               from the birth date as of today
  - Caregiver: name and location required, role one of the two variants,
               colour from the palette and not used by another caregiver

  Colour uniqueness is a form rule only. The stores accept anything, and
  two caregivers sharing a colour only makes the chart ambiguous.

SEE ALSO:
  - palette.go: Colours and suggestion
  - repository.go: Persistence
*/
package care

import (
	"context"
	"strings"
	"time"
)

// ChildForm is the add/edit child form.
type ChildForm struct {
	Name      string
	BirthDate Date
	PhotoURL  string
}

// CaregiverForm is the add/edit caregiver form.
type CaregiverForm struct {
	Name     string
	Location string
	Phone    string
	Role     Role
	PhotoURL string
	Color    Color // empty picks the first unused palette colour
}

// PaletteEntry is a colour of the picker and whether someone already uses it.
type PaletteEntry struct {
	Color Color
	Used  bool
}

type Profiles struct {
	repo *Repository
	now  func() time.Time
}

func NewProfiles(repo *Repository) *Profiles {
	return &Profiles{repo: repo, now: time.Now}
}

// =============================================================================
// CHILDREN
// =============================================================================

// AddChild validates the form and stores a new child.
func (p *Profiles) AddChild(ctx context.Context, form ChildForm) (*Child, error) {
	child, err := p.childFromForm(form)
	if err != nil {
		return nil, err
	}
	child.ID = p.repo.AddChild(ctx, child)
	return &child, nil
}

// UpdateChild replaces every field of an existing child.
func (p *Profiles) UpdateChild(ctx context.Context, id ChildID, form ChildForm) (*Child, error) {
	if p.repo.GetChild(ctx, id) == nil {
		return nil, ErrChildNotFound
	}
	child, err := p.childFromForm(form)
	if err != nil {
		return nil, err
	}
	child.ID = id
	p.repo.UpdateChild(ctx, child)
	return &child, nil
}

// DeleteChild removes the child and every care day it had.
func (p *Profiles) DeleteChild(ctx context.Context, id ChildID) error {
	if p.repo.GetChild(ctx, id) == nil {
		return ErrChildNotFound
	}
	p.repo.DeleteChild(ctx, id)
	return nil
}

func (p *Profiles) childFromForm(form ChildForm) (Child, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return Child{}, invalid("name", ErrMissingFields)
	}
	today := DateOf(p.now())
	if !form.BirthDate.IsZero() && form.BirthDate.After(today) {
		return Child{}, invalid("birth_date", ErrBirthDateInFuture)
	}
	return Child{
		Name:      name,
		Age:       AgeOn(form.BirthDate, today),
		PhotoURL:  form.PhotoURL,
		BirthDate: form.BirthDate,
	}, nil
}

// =============================================================================
// CAREGIVERS
// =============================================================================

// AddCaregiver validates the form and stores a new caregiver.
func (p *Profiles) AddCaregiver(ctx context.Context, form CaregiverForm) (*Caregiver, error) {
	cg, err := p.caregiverFromForm(ctx, 0, form)
	if err != nil {
		return nil, err
	}
	cg.ID = p.repo.AddCaregiver(ctx, cg)
	return &cg, nil
}

// UpdateCaregiver replaces every field of an existing caregiver. Keeping
// the caregiver's own colour is allowed.
func (p *Profiles) UpdateCaregiver(ctx context.Context, id CaregiverID, form CaregiverForm) (*Caregiver, error) {
	if p.repo.GetCaregiver(ctx, id) == nil {
		return nil, ErrCaregiverNotFound
	}
	cg, err := p.caregiverFromForm(ctx, id, form)
	if err != nil {
		return nil, err
	}
	cg.ID = id
	p.repo.UpdateCaregiver(ctx, cg)
	return &cg, nil
}

// DeleteCaregiver removes the caregiver and every care day recorded with them.
func (p *Profiles) DeleteCaregiver(ctx context.Context, id CaregiverID) error {
	if p.repo.GetCaregiver(ctx, id) == nil {
		return ErrCaregiverNotFound
	}
	p.repo.DeleteCaregiver(ctx, id)
	return nil
}

// Palette lists the colours, which ones are taken, and the suggested one.
func (p *Profiles) Palette(ctx context.Context) ([]PaletteEntry, Color) {
	used := UsedColors(p.repo.ListCaregivers(ctx), 0)
	entries := make([]PaletteEntry, len(Palette))
	for i, c := range Palette {
		entries[i] = PaletteEntry{Color: c, Used: used[c]}
	}
	return entries, SuggestColor(used)
}

func (p *Profiles) caregiverFromForm(ctx context.Context, id CaregiverID, form CaregiverForm) (Caregiver, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return Caregiver{}, invalid("name", ErrMissingFields)
	}
	location := strings.TrimSpace(form.Location)
	if location == "" {
		return Caregiver{}, invalid("location", ErrMissingFields)
	}
	role, ok := ParseRole(string(form.Role))
	if !ok {
		return Caregiver{}, invalid("role", ErrInvalidRole)
	}

	used := UsedColors(p.repo.ListCaregivers(ctx), id)
	color := NormalizeColor(form.Color)
	switch {
	case color == "":
		if color = SuggestColor(used); color == "" {
			return Caregiver{}, invalid("color", ErrColorTaken)
		}
	case !InPalette(color):
		return Caregiver{}, invalid("color", ErrInvalidColor)
	case used[color]:
		return Caregiver{}, invalid("color", ErrColorTaken)
	}

	return Caregiver{
		Name:     name,
		Location: location,
		Phone:    strings.TrimSpace(form.Phone),
		Role:     role,
		PhotoURL: form.PhotoURL,
		Color:    color,
	}, nil
}
