package database

import (
	"errors"
	"fmt"

	"bookstore/config"
	"bookstore/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedPermissions = []models.Permission{
	{Name: models.PermBooksWrite, Description: "Create, update and delete books"},
	{Name: models.PermAuthorsWrite, Description: "Create, update and delete authors"},
	{Name: models.PermUsersList, Description: "List all user accounts"},
	{Name: models.PermUsersManage, Description: "Read, update and delete any user account"},
}

var seedRoles = []struct {
	Role        models.Role
	Permissions []string
}{
	{
		Role: models.Role{Name: models.RoleAdmin, Description: "Store administrator"},
		Permissions: []string{
			models.PermBooksWrite, models.PermAuthorsWrite, models.PermUsersList, models.PermUsersManage,
		},
	},
	{
		Role:        models.Role{Name: models.RoleClient, Description: "Store customer"},
		Permissions: nil,
	},
}

// SeedInitialData inserts the roles, permissions and admin account when they
// are missing. Running it again is a no-op.
func SeedInitialData(db *gorm.DB, admin config.AdminConfig, log *zap.Logger) error {
	for _, p := range seedPermissions {
		p := p
		var existing models.Permission
		err := db.Where("name = ?", p.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&p).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", p.Name, err)
			}
			log.Info("Seeded permission", zap.String("name", p.Name))
		} else if err != nil {
			return err
		}
	}

	for _, rData := range seedRoles {
		role := rData.Role
		var existing models.Role
		err := db.Where("name = ?", role.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", role.Name, err)
			}
			log.Info("Seeded role", zap.String("name", role.Name))
			existing = role
		} else if err != nil {
			return err
		}

		if len(rData.Permissions) == 0 {
			continue
		}
		var perms []models.Permission
		if err := db.Where("name IN ?", rData.Permissions).Find(&perms).Error; err != nil {
			return fmt.Errorf("find permissions for role %s: %w", existing.Name, err)
		}
		if err := db.Model(&existing).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("associate permissions with role %s: %w", existing.Name, err)
		}
	}

	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	// A deleted admin keeps its email, so it is not recreated.
	var adminUser models.User
	err := db.Unscoped().Where("email = ? OR user_name = ?", admin.Email, "admin").First(&adminUser).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	var adminRole models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
		return fmt.Errorf("find admin role: %w", err)
	}
	adminUser = models.User{
		UserName:       "admin",
		Email:          admin.Email,
		Password:       string(hashed),
		EmailConfirmed: true,
		Roles:          []models.Role{adminRole},
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("create initial admin user: %w", err)
	}
	log.Info("Created initial admin user", zap.String("email", admin.Email))
	return nil
}
