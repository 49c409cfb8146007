package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shop-api/internal/domain"
	"shop-api/internal/feature/user"
	"shop-api/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	m := user.FromDomain(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("Username already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt = m.CreatedAt
	return nil
}

func (r *UserRepo) find(ctx context.Context, where string, arg any) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).
		Preload("Addresses", byInsertion).
		First(&m, where, arg).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(ctx, "username = ?", username)
}

func (r *UserRepo) List(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&user.UserModel{})
	if q != "" {
		tx = tx.Where("username LIKE ?", "%"+q+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []user.UserModel
	if err := tx.Offset(offset).Limit(limit).Order("created_at desc").Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	users := make([]domain.User, len(ms))
	for i := range ms {
		users[i] = *ms[i].ToDomain()
	}
	return users, total, nil
}

func (r *UserRepo) exists(tx *gorm.DB, id string) (bool, error) {
	var n int64
	if err := tx.Model(&user.UserModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) ListAddresses(ctx context.Context, userID string) ([]domain.Address, bool, error) {
	db := r.db.WithContext(ctx)
	ok, err := r.exists(db, userID)
	if err != nil || !ok {
		return nil, ok, err
	}
	var ms []user.AddressModel
	if err := byInsertion(db.Where("user_id = ?", userID)).Find(&ms).Error; err != nil {
		return nil, true, err
	}
	out := make([]domain.Address, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, true, nil
}

func (r *UserRepo) AddAddress(ctx context.Context, userID string, a domain.Address) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.exists(tx, userID)
		if err != nil || !ok {
			return err
		}
		found = true
		if a.IsDefault {
			if err := tx.Model(&user.AddressModel{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&user.AddressModel{
			UserID:    userID,
			Name:      a.Name,
			Phone:     a.Phone,
			Address:   a.Address,
			IsDefault: a.IsDefault,
		}).Error
	})
	if err != nil {
		return false, fmt.Errorf("add address: %w", err)
	}
	return found, nil
}
