package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is an ordered privilege level. Each higher role is a strict superset
// of the lower ones; the superuser flag on User is orthogonal and always wins.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Level maps a role onto the hierarchy. Unknown roles rank below "user".
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleModerator:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	Username         string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email            string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName        string    `gorm:"size:150" json:"first_name"`
	LastName         string    `gorm:"size:150" json:"last_name"`
	Bio              string    `gorm:"type:text" json:"bio"`
	Role             Role      `gorm:"size:30;default:'user';not null" json:"role"`
	IsSuperuser      bool      `gorm:"default:false;not null" json:"-"`
	ConfirmationCode string    `gorm:"size:36;not null" json:"-"` // Not show in JSON
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasRole reports whether the user meets the minimum role. Superusers pass
// every check regardless of their stored role.
func (u *User) HasRole(min Role) bool {
	if u == nil {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	return u.Role.Level() >= min.Level()
}

// BeforeCreate hook to set the UUID and confirmation code before creating a User
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.ConfirmationCode == "" {
		u.ConfirmationCode = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}
