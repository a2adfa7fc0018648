package repositories

import (
	"context"

	"bookstore/models"

	"gorm.io/gorm"
)

// UserRepository interface defines User-related database operations.
// Users come back with their roles loaded.
type UserRepository interface {
	Repository[models.User]
	FindByUserName(ctx context.Context, userName string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	AssignRole(ctx context.Context, user *models.User, role *models.Role) error
	// UserNameTaken and EmailTaken also see soft-deleted users, whose
	// values still occupy the unique columns. exceptID is ignored when zero.
	UserNameTaken(ctx context.Context, userName string, exceptID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
}

type userRepository struct {
	Repository[models.User]
	db *gorm.DB
}

var _ UserRepository = (*userRepository)(nil)

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{Repository: NewRepository[models.User](db), db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").Where("user_name = ?", userName).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, page int, pageSize int) ([]models.User, int64, error) {
	return paginate[models.User](r.db.WithContext(ctx), page, pageSize, "Roles")
}

// Update saves the user's own columns. Role membership changes go through AssignRole.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Roles").Save(user).Error
}

func (r *userRepository) AssignRole(ctx context.Context, user *models.User, role *models.Role) error {
	return r.db.WithContext(ctx).Model(user).Association("Roles").Append(role)
}

func (r *userRepository) UserNameTaken(ctx context.Context, userName string, exceptID uint) (bool, error) {
	return r.taken(ctx, "user_name", userName, exceptID)
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return r.taken(ctx, "email", email, exceptID)
}

func (r *userRepository) taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	query := r.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where(column+" = ?", value)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
