package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"shop-api/internal/core/auth"
	"shop-api/internal/domain"
	"shop-api/pkg/utils"
)

// bcrypt 只取前 72 字节
const maxPasswordBytes = 72

type UserService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
	l     *zap.Logger
}

func NewUserService(users domain.UserRepository, jwt *auth.JWTer, l *zap.Logger) *UserService {
	return &UserService{users: users, jwt: jwt, l: l.Named("user")}
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return domain.InvalidArgument("username and password are required")
	}
	if err := domain.CheckLen("username", username, domain.MaxUsernameLen); err != nil {
		return err
	}
	if len(password) > maxPasswordBytes {
		return domain.InvalidArgument("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// Register 返回新用户 id
func (s *UserService) Register(ctx context.Context, username, password string) (string, error) {
	return s.create(ctx, strings.TrimSpace(username), password, domain.RoleUser)
}

func (s *UserService) create(ctx context.Context, username, password, role string) (string, error) {
	if err := validateCredentials(username, password); err != nil {
		return "", err
	}
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", domain.Conflict("Username already exists")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Username: username, PasswordHash: hash, Role: role}
	// 并发注册由唯一索引兜底，仓储返回 Conflict
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	s.l.Info("user registered", zap.String("user_id", u.ID), zap.String("role", role))
	return u.ID, nil
}

// Login 返回 token 与用户 id
func (s *UserService) Login(ctx context.Context, username, password string) (string, string, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", "", err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", "", domain.Unauthorized("Invalid username or password")
	}
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}
	return tok, u.ID, nil
}

// Authenticate 校验 "Bearer xxx" 头，返回其中的用户 id
func (s *UserService) Authenticate(header string) (string, error) {
	claims, err := s.jwt.Authenticate(header)
	if err != nil {
		return "", err
	}
	return claims.UID, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

func (s *UserService) Addresses(ctx context.Context, userID string) ([]domain.Address, error) {
	addrs, found, err := s.users.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NotFound("User not found")
	}
	if addrs == nil {
		addrs = []domain.Address{}
	}
	return addrs, nil
}

func (s *UserService) AddAddress(ctx context.Context, userID string, a domain.Address) error {
	if err := a.Validate(); err != nil {
		return err
	}
	found, err := s.users.AddAddress(ctx, userID, a)
	if err != nil {
		return err
	}
	if !found {
		return domain.NotFound("User not found")
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, page, size int, q string) ([]domain.User, int64, error) {
	offset, limit := pageOf(page, size)
	return s.users.List(ctx, offset, limit, strings.TrimSpace(q))
}

// EnsureAdmin 管理员账号不存在时创建；已存在则不改动
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" {
		return nil
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if u != nil {
		if u.Role != domain.RoleAdmin {
			s.l.Warn("bootstrap admin exists without admin role", zap.String("username", username))
		}
		return nil
	}
	_, err = s.create(ctx, username, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}
