package service

import (
	"context"
	"strings"

	"github.com/ewillweb/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Admin 是通过认证的后台账号。
type Admin struct {
	ID       uint
	Username string
}

// Authenticator 校验后台登录，失败统一返回 db.ErrInvalidCredentials。
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*Admin, error)
}

// GormAuthenticator 使用 users 表。
type GormAuthenticator struct {
	db *gorm.DB
}

func NewGormAuthenticator(gdb *gorm.DB) *GormAuthenticator {
	return &GormAuthenticator{db: gdb}
}

func (a *GormAuthenticator) Authenticate(ctx context.Context, username, password string) (*Admin, error) {
	user, err := db.Authenticate(a.db.WithContext(ctx), username, password)
	if err != nil {
		return nil, err
	}
	return &Admin{ID: user.ID, Username: user.Username}, nil
}

// StaticAuthenticator 在无数据库时使用 SUPER_ROOT_* 配置的单一账号。
type StaticAuthenticator struct {
	username string
	hash     []byte
}

// NewStaticAuthenticator 对密码做 bcrypt 后保存；账号或密码为空时拒绝所有登录。
func NewStaticAuthenticator(username, password string) (*StaticAuthenticator, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return &StaticAuthenticator{}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &StaticAuthenticator{username: username, hash: hash}, nil
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, username, password string) (*Admin, error) {
	if a.username == "" || strings.TrimSpace(username) != a.username {
		return nil, db.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return nil, db.ErrInvalidCredentials
	}
	return &Admin{ID: 1, Username: a.username}, nil
}
