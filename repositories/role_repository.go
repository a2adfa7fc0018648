package repositories

import (
	"context"

	"bookstore/models"

	"gorm.io/gorm"
)

// RoleRepository reads roles and the permissions they grant.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	// PermissionsForUser returns the distinct permission names granted by the
	// user's current roles. A soft-deleted user has none.
	PermissionsForUser(ctx context.Context, userID uint) ([]string, error)
}

type roleRepository struct {
	db *gorm.DB
}

var _ RoleRepository = (*roleRepository)(nil)

// NewRoleRepository creates a RoleRepository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) PermissionsForUser(ctx context.Context, userID uint) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Where("user_roles.user_id = ?", userID).
		Distinct().
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
