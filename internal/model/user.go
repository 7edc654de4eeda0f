package model

import "time"

// Role is the access level carried by a User and its bearer tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleAirline Role = "airline"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleAirline:
		return true
	}
	return false
}

// User is the single identity table. Airline accounts are users with role
// airline plus an owned Airline profile row.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Email          string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash   string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Role           Role      `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`
	IsActive       bool      `json:"isActive" gorm:"not null;default:true"`
	ProfilePicture *string   `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
