package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hmicael/email-api/internal/domain"
)

var (
	// ErrInvalidCredentials 凭证无效
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
)

// Service 认证服务
type Service struct {
	userRepo UserRepository
}

// UserRepository 用户存储接口
type UserRepository interface {
	GetUser(id uint) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
}

// NewService 创建认证服务
func NewService(userRepo UserRepository) *Service {
	return &Service{
		userRepo: userRepo,
	}
}

// LoginInput 登录输入
type LoginInput struct {
	Username string // 管理账号邮箱
	Password string
}

// Login 管理账号登录
//
// 查找失败和密码不匹配返回同一个错误，避免泄露账号是否存在。
func (s *Service) Login(input LoginInput) (*domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(input.Username))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID 根据 ID 获取管理账号
func (s *Service) GetUserByID(userID uint) (*domain.User, error) {
	user, err := s.userRepo.GetUser(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// HashPassword 哈希密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 检查密码是否匹配
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
