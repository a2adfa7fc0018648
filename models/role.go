package models

import "gorm.io/gorm"

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Role groups permissions. Users get roles, never permissions directly.
type Role struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Description string
	Permissions []Permission `gorm:"many2many:role_permissions;"`
	Users       []User       `gorm:"many2many:user_roles;"`
}
