package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrSelfReference = errors.New("user cannot reference itself as manager, hr or team lead")
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleManager    Role = "manager"
	RoleHR         Role = "hr"
	RoleTeamLead   Role = "team_lead"
	RoleEmployee   Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleManager, RoleHR, RoleTeamLead, RoleEmployee:
		return true
	}
	return false
}

// IsAdminOverride reports whether the role is authorized on any request by role alone.
func (r Role) IsAdminOverride() bool {
	return r == RoleSuperAdmin || r == RoleHR
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// User is a directory entry. ManagerID, HRID and TeamLeadID are weak
// references resolved through the Repository, never owned.
type User struct {
	ID           string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	Role         Role      `gorm:"column:role;size:32;not null;index" json:"role"`
	Gender       Gender    `gorm:"column:gender;size:16" json:"gender"`
	DepartmentID string    `gorm:"column:department_id;type:char(36);index" json:"department_id"`
	ManagerID    *string   `gorm:"column:manager_id;type:char(36)" json:"manager_id,omitempty"`
	HRID         *string   `gorm:"column:hr_id;type:char(36)" json:"hr_id,omitempty"`
	TeamLeadID   *string   `gorm:"column:team_lead_id;type:char(36)" json:"team_lead_id,omitempty"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Refers reports whether ref is set and points at id.
func Refers(ref *string, id string) bool {
	return ref != nil && *ref != "" && *ref == id
}

// ValidateRefs enforces that a user is never its own manager, HR contact or team lead.
func (u *User) ValidateRefs() error {
	if Refers(u.ManagerID, u.ID) || Refers(u.HRID, u.ID) || Refers(u.TeamLeadID, u.ID) {
		return ErrSelfReference
	}
	return nil
}
