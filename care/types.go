/*
types.go - Core records of the care tracker

PURPOSE:
  Defines the three persisted records: children, caregivers (grandparents)
  and care days. Every other package speaks these types; the stores map
  them to tables (sqlite) or JSON lists (local fallback).

RECORDS:
  Child:     a grandchild, age derived from birth date at write time
  Caregiver: a grandparent, with a role and a display colour
  CareDay:   "child C spent day D with caregiver G"

IDENTIFIERS:
  Auto-incrementing integers, unique per record type. Zero means
  "not assigned yet".

SEE ALSO:
  - store.go: Persistence interfaces
  - palette.go: Display colours
*/
package care

import "strings"

type (
	ChildID     int64
	CaregiverID int64
	CareDayID   int64
)

// Child is a grandchild being looked after.
type Child struct {
	ID        ChildID
	Name      string
	Age       int
	PhotoURL  string // data URL or plain URL; may be large
	BirthDate Date   // zero when unknown
}

// Role distinguishes the two sides of the family.
type Role string

const (
	RoleGrandmother Role = "grand-mere" // maternal-type
	RoleGrandfather Role = "grand-pere" // paternal-type
)

// DefaultRole is stored when no role is given.
const DefaultRole = RoleGrandfather

func (r Role) Valid() bool {
	return r == RoleGrandmother || r == RoleGrandfather
}

// ParseRole accepts the stored values and a few spellings the forms send.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultRole, true
	case "grand-mere", "grand-mère", "grandmother", "maternal":
		return RoleGrandmother, true
	case "grand-pere", "grand-père", "grandfather", "paternal":
		return RoleGrandfather, true
	}
	return "", false
}

// Caregiver is a grandparent who looks after children.
type Caregiver struct {
	ID       CaregiverID
	Name     string
	Location string
	Phone    string
	Role     Role
	PhotoURL string
	Color    Color // empty when unset
}

// CareDay records that a child was with a caregiver on a given day.
type CareDay struct {
	ID          CareDayID
	ChildID     ChildID
	CaregiverID CaregiverID
	Date        Date
}

// Matches reports whether the care day is for the same child, caregiver and day.
func (c CareDay) Matches(childID ChildID, caregiverID CaregiverID, day Date) bool {
	return c.ChildID == childID && c.CaregiverID == caregiverID && c.Date.Equal(day)
}
