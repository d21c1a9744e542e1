package models

import (
	"time"

	"courtside/internal/projection"
)

// Role names.
const (
	RoleUser          = "user"
	RoleBanned        = "banned"
	RoleDeactivated   = "deactivated"
	RoleChatModerator = "chat_moderator"
	RoleSiteModerator = "site_moderator"
	RoleAdmin         = "admin"
)

// Role is a permission tier. Higher weight means more privilege.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Weight      int    `gorm:"not null;default:0" json:"weight"`
}

func (r *Role) ProjectionSchema() *projection.Schema { return RoleSchema }

func (r *Role) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", r.ID),
		projection.Value("name", r.Name),
		projection.Value("description", r.Description),
		projection.Value("weight", r.Weight),
	}
}

// User is a registered account.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RoleID           uint      `gorm:"index" json:"role_id"`
	Role             *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Username         string    `gorm:"size:32;uniqueIndex;not null" json:"username"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password         string    `gorm:"size:255" json:"-"`
	Experience       int       `gorm:"not null;default:0" json:"experience"`
	Introduction     string    `gorm:"size:1024" json:"introduction"`
	IsProfileVisible bool      `gorm:"not null;default:true" json:"is_profile_visible"`
	IsStaff          bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser      bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (u *User) ProjectionSchema() *projection.Schema { return UserSchema }

func (u *User) ProjectionFields() []projection.Field {
	return []projection.Field{
		projection.Value("id", u.ID),
		projection.Value("username", u.Username),
		projection.Value("email", u.Email),
		projection.One("role", "role", u.Role),
		projection.Value("experience", u.Experience),
		projection.Value("level", Level(u.Experience)),
		projection.Value("introduction", u.Introduction),
		projection.Value("is_profile_visible", u.IsProfileVisible),
		projection.Value("created_at", u.CreatedAt),
	}
}

// IsModerator reports whether the user may manage other users' content.
func (u *User) IsModerator() bool {
	if u.IsStaff || u.IsSuperuser {
		return true
	}
	if u.Role == nil {
		return false
	}
	switch u.Role.Name {
	case RoleSiteModerator, RoleAdmin:
		return true
	}
	return false
}

// ExperiencePerLevel is how much experience each level costs.
const ExperiencePerLevel = 100

// Level derives a user's level from accumulated experience. Everyone starts at 1.
func Level(experience int) int {
	if experience < 0 {
		return 1
	}
	return experience/ExperiencePerLevel + 1
}
