package user

import (
	"time"

	"shop-api/internal/domain"
)

type UserModel struct {
	ID           string `gorm:"primaryKey;type:varchar(32)"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Image        string `gorm:"size:512;not null;default:''"`
	Role         string `gorm:"size:16;not null;default:user"`

	Addresses []AddressModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// AddressModel 自增 ID 即插入顺序
type AddressModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"index;type:varchar(32);not null"`
	Name      string `gorm:"size:64;not null"`
	Phone     string `gorm:"size:32;not null"`
	Address   string `gorm:"size:512;not null"`
	IsDefault bool   `gorm:"not null;default:false"`
}

func (AddressModel) TableName() string { return "user_addresses" }

func (m *AddressModel) ToDomain() domain.Address {
	return domain.Address{Name: m.Name, Phone: m.Phone, Address: m.Address, IsDefault: m.IsDefault}
}

func (m *UserModel) ToDomain() *domain.User {
	u := &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Image:        m.Image,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
	}
	if len(m.Addresses) > 0 {
		u.Addresses = make([]domain.Address, len(m.Addresses))
		for i := range m.Addresses {
			u.Addresses[i] = m.Addresses[i].ToDomain()
		}
	}
	return u
}

func FromDomain(u *domain.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Image:        u.Image,
		Role:         u.Role,
	}
}
