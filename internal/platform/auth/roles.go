package auth

import "strings"

// Role is the single role a user account carries.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDoctor        Role = "doctor"
	RoleNurse         Role = "nurse"
	RolePharmacist    Role = "pharmacist"
	RoleLabTechnician Role = "lab_technician"
	RolePatient       Role = "patient"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleAdmin, RoleDoctor, RoleNurse, RolePharmacist, RoleLabTechnician, RolePatient}

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaff is true for every role except patient.
func (r Role) IsStaff() bool {
	return r.Valid() && r != RolePatient
}
