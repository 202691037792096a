package models

import "time"

const (
	RoleClaimManager        = "Claim Manager"
	RoleLegalContract       = "Legal and Contract Specialist"
	RolePlanningResponsible = "Planning Responsible"
	RoleCostControl         = "Cost Control Responsible"
	RoleSiteResponsible     = "Site Responsible"

	AdministratorRole = RoleClaimManager
	DefaultRole       = RoleSiteResponsible
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	MaxPasswordLength = 100
	MaxFullNameLength = 100
)

var roles = []string{
	RoleClaimManager,
	RoleLegalContract,
	RolePlanningResponsible,
	RoleCostControl,
	RoleSiteResponsible,
}

// Roles returns the fixed role enumeration in display order.
func Roles() []string {
	result := make([]string, len(roles))
	copy(result, roles)
	return result
}

func IsKnownRole(role string) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

type User struct {
	ID                 uint      `gorm:"primaryKey"`
	Username           string    `gorm:"not null"`
	PasswordHash       string    `gorm:"not null"`
	FullName           string    `gorm:"not null;default:''"`
	Email              string    `gorm:"not null;default:''"`
	Role               string    `gorm:"not null"`
	IsActive           bool      `gorm:"not null;default:true"`
	MustChangePassword bool      `gorm:"not null;default:false"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time
}

// SafeProfile is the user record as it leaves the backend: no secret material.
type SafeProfile struct {
	ID                 uint      `json:"id"`
	Username           string    `json:"username"`
	FullName           string    `json:"fullName,omitempty"`
	Email              string    `json:"email,omitempty"`
	Role               string    `json:"role"`
	IsActive           bool      `json:"isActive"`
	MustChangePassword bool      `json:"mustChangePassword,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (user User) Profile() SafeProfile {
	return SafeProfile{
		ID:                 user.ID,
		Username:           user.Username,
		FullName:           user.FullName,
		Email:              user.Email,
		Role:               user.Role,
		IsActive:           user.IsActive,
		MustChangePassword: user.MustChangePassword,
		CreatedAt:          user.CreatedAt,
	}
}

func (user User) IsAdministrator() bool {
	return user.Role == AdministratorRole
}

func Profiles(users []User) []SafeProfile {
	result := make([]SafeProfile, 0, len(users))
	for _, user := range users {
		result = append(result, user.Profile())
	}
	return result
}
