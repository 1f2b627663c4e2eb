// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lumira-go/internal/model"
	"lumira-go/internal/repository"
	"lumira-go/pkg/hash"
	"lumira-go/pkg/token"
)

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(username, password string) (*model.User, error)
	Login(username, password string) (accessToken, refreshToken string, err error)
	GetProfile(username string) (*model.User, error)
	RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
	// GetOrCreateExternal 为外部客户端身份（provider + external id）
	// 幂等地物化一个用户记录。
	GetOrCreateExternal(provider, externalID, firstName string) (*model.User, error)
	// IssueTokens 为已解析的用户签发一对令牌。
	IssueTokens(user *model.User) (accessToken, refreshToken string, err error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager) UserService {
	return &userService{userRepo: userRepo, jwtManager: jwtManager}
}

// Register 处理用户注册的业务逻辑。
func (s *userService) Register(username, password string) (*model.User, error) {
	_, err := s.userRepo.FindByUsername(username)
	if err == nil {
		return nil, errors.New("用户名已存在")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username: username,
		Password: hashedPassword,
		Role:     model.RoleStandard,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// Login 处理用户登录的业务逻辑。
func (s *userService) Login(username, password string) (string, string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", errors.New("invalid credentials")
		}
		return "", "", err
	}

	if !hash.CheckPassword(user.Password, password) {
		return "", "", errors.New("invalid credentials")
	}
	return s.IssueTokens(user)
}

// IssueTokens 签发访问令牌与刷新令牌。
func (s *userService) IssueTokens(user *model.User) (string, string, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GetProfile 根据用户名获取用户资料。
func (s *userService) GetProfile(username string) (*model.User, error) {
	return s.userRepo.FindByUsername(username)
}

// RefreshToken 校验刷新令牌并签发新的一对令牌。
func (s *userService) RefreshToken(refreshTokenString string) (string, string, error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return "", "", err
	}
	return s.IssueTokens(user)
}

// GetOrCreateExternal 幂等解析外部身份对应的用户记录。
func (s *userService) GetOrCreateExternal(provider, externalID, firstName string) (*model.User, error) {
	user, err := s.userRepo.FindByExternal(provider, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// имя пользователя детерминировано из внешней личности, без коллизий
	newUser := &model.User{
		Username:   fmt.Sprintf("%s_%s", provider, externalID),
		Role:       model.RoleMiniApp,
		Provider:   provider,
		ExternalID: externalID,
		FirstName:  firstName,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}
