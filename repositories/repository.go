package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the CRUD surface shared by every entity repository.
// Constraint violations come back as the store's own errors.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	FindAll(ctx context.Context, page int, pageSize int) ([]T, int64, error)
	Update(ctx context.Context, entity *T) error
	// Delete removes the row with the given id, or returns
	// gorm.ErrRecordNotFound when there is none.
	Delete(ctx context.Context, id uint) error
}

type repository[T any] struct {
	db *gorm.DB
}

var _ Repository[struct{}] = (*repository[struct{}])(nil)

// NewRepository creates a Repository for T on top of db.
func NewRepository[T any](db *gorm.DB) Repository[T] {
	return &repository[T]{db: db}
}

func (r *repository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *repository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *repository[T]) FindAll(ctx context.Context, page int, pageSize int) ([]T, int64, error) {
	return paginate[T](r.db.WithContext(ctx), page, pageSize)
}

func (r *repository[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *repository[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// paginate counts the rows matched by query and returns one page of them
// ordered by id. page is 1-based. Preloads apply to the page only.
func paginate[T any](query *gorm.DB, page int, pageSize int, preloads ...string) ([]T, int64, error) {
	return paginateBy[T](query, "id", page, pageSize, preloads...)
}

func paginateBy[T any](query *gorm.DB, order string, page int, pageSize int, preloads ...string) ([]T, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := query.Session(&gorm.Session{})
	for _, p := range preloads {
		find = find.Preload(p)
	}
	items := make([]T, 0, pageSize)
	err := find.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
