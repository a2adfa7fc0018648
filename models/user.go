package models

import "gorm.io/gorm"

// User is an account. Deleting a user is soft; its name and email stay taken.
type User struct {
	gorm.Model
	UserName       string `gorm:"unique;not null"`
	Email          string `gorm:"unique;not null"`
	FirstName      string
	LastName       string
	Password       string `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	EmailConfirmed bool
	Roles          []Role `gorm:"many2many:user_roles;"`
}

// RoleNames returns the names of the roles loaded on the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether one of the loaded roles is called name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
