package mysql

import (
	"context"

	userDomain "leaveflow/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

// Create is used by provisioning tools and tests; the core only reads users.
func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	if err := u.ValidateRefs(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDomain.User, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*userDomain.User, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *UserRepository) get(db *gorm.DB, id string) (*userDomain.User, error) {
	var out userDomain.User
	if err := db.Where("id = ?", id).First(&out).Error; err != nil {
		return nil, mapErr(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) FindActiveByRoles(ctx context.Context, roles []userDomain.Role, departmentID string) ([]userDomain.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Where("is_active = ? AND role IN ?", true, roles)
	if departmentID != "" {
		q = q.Where("department_id = ?", departmentID)
	}
	var out []userDomain.User
	err := q.Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *UserRepository) ListActive(ctx context.Context) ([]userDomain.User, error) {
	var out []userDomain.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
