package domain

import (
	"context"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Address struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Image        string    `json:"image"`
	Role         string    `json:"role"`
	Addresses    []Address `json:"addresses"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DefaultAddress 返回默认地址；没有则 nil
func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	return nil
}

// UserRepository 用户及其地址列表（有序）的存储端口。
// Find* 查不到时返回 (nil, nil)。
type UserRepository interface {
	// Create 用户名重复时返回 Conflict；ID 为空时由存储生成
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, offset, limit int, q string) ([]User, int64, error)

	// ListAddresses found=false 表示用户不存在
	ListAddresses(ctx context.Context, userID string) (addrs []Address, found bool, err error)
	// AddAddress a.IsDefault 为真时，清除旧默认与追加在同一原子写内完成
	AddAddress(ctx context.Context, userID string, a Address) (found bool, err error)
}
