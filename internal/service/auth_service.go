package service

import (
	"context"
	"fmt"

	"bankdemo/internal/model"
	"bankdemo/internal/repository"
	"bankdemo/pkg/validator"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 注册与登录
// 注册字段全部过纯函数校验器，任何一项不通过都携带校验器原话直接拒绝；
// 密码只存 bcrypt 哈希；注册成功默认开一个活期账户并签发会话。
type AuthService struct {
	userRepo       repository.UserRepository
	accountService *AccountService
	sessionService *SessionService
}

func NewAuthService(
	userRepo repository.UserRepository,
	accountService *AccountService,
	sessionService *SessionService,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		accountService: accountService,
		sessionService: sessionService,
	}
}

type SignupRequest struct {
	Username    string
	Password    string
	Phone       string
	DateOfBirth string // YYYY-MM-DD
	State       string // 美国州代码
}

func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*model.User, *model.Session, error) {
	if len(req.Username) < 3 || len(req.Username) > 64 {
		return nil, nil, ErrUsernameInvalid
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		return nil, nil, err
	}
	if err := validator.ValidatePhone(req.Phone); err != nil {
		return nil, nil, err
	}
	if err := validator.ValidateDateOfBirth(req.DateOfBirth); err != nil {
		return nil, nil, err
	}
	if err := validator.ValidateStateCode(req.State); err != nil {
		return nil, nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		State:        req.State,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("创建用户失败: %w", err)
	}

	// 默认开一个活期账户
	if _, err := s.accountService.CreateAccount(ctx, user.ID, model.AccountTypeChecking); err != nil {
		return nil, nil, fmt.Errorf("创建默认账户失败: %w", err)
	}

	session, err := s.sessionService.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Login 登录
// 用户不存在和密码不匹配返回同一个错误，不泄露用户名是否已注册
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, *model.Session, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.sessionService.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Logout 登出：委托会话终止
// 客户端凭证由 handler 无条件清除；这里的错误仍要上报用于监控
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessionService.Terminate(ctx, token)
}
