package models

import "gorm.io/gorm"

// Permission names an action on the catalog or on accounts, e.g. "books:write".
type Permission struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Description string
	Roles       []Role `gorm:"many2many:role_permissions;"`
}

const (
	PermBooksWrite   = "books:write"
	PermAuthorsWrite = "authors:write"
	PermUsersList    = "users:list"
	PermUsersManage  = "users:manage"
)
