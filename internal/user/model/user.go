package model

import "strings"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
	RoleCustomer   Role = "customer"
)

var Roles = []Role{RoleAdmin, RoleTechnician, RoleManager, RoleCustomer}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Unscoped reports whether the role sees every company's fleet.
func (r Role) Unscoped() bool {
	return r == RoleAdmin
}

// User is the identity resolved at login and persisted as the session.
// BuildingName, AssignedDevice and Email are only populated for customers.
type User struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name"`
	Role           Role   `json:"role" validate:"required,user_role"`
	CompanyID      string `json:"companyId,omitempty"`
	BuildingName   string `json:"buildingName,omitempty"`
	AssignedDevice string `json:"assignedDevice,omitempty"`
	Email          string `json:"email,omitempty"`
}

func (u *User) IsCustomer() bool {
	return u != nil && u.Role == RoleCustomer
}

// ScopeLabel is the line shown under the user's name in menus.
func (u *User) ScopeLabel() string {
	if u.IsCustomer() {
		return u.BuildingName
	}
	return u.CompanyID
}

// Initial is the avatar letter on the profile screen.
func (u *User) Initial() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

// DisplayRole capitalises the role for display.
func (u *User) DisplayRole() string {
	r := string(u.Role)
	if r == "" {
		return ""
	}
	return strings.ToUpper(r[:1]) + r[1:]
}
