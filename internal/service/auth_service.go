package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*model.UserResponse, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	// EnsureAdmin creates the ADMIN account when no user owns email yet.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	tokens *jwt.Manager
}

func NewAuthService(users repository.UserRepository, roles repository.RoleRepository, tokens *jwt.Manager) AuthService {
	return &authService{users: users, roles: roles, tokens: tokens}
}

// Register creates a STAFF account with the role's privileges.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*model.UserResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := s.newUser(ctx, model.RoleStaff, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}
	user.PhoneNumber = req.PhoneNumber
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.PrivilegeCodes())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Privileges: user.PrivilegeCodes(),
	}, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return err
	}
	user, err := s.newUser(ctx, model.RoleAdmin, email, password, "Administrator")
	if err != nil {
		return err
	}
	return s.users.Create(ctx, user)
}

func (s *authService) newUser(ctx context.Context, roleCode, email, password, name string) (*model.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", model.ErrConflict, email)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	role, err := s.roles.FindByCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", roleCode, err)
	}
	user := &model.User{
		Email:      email,
		FullName:   name,
		RoleID:     &role.ID,
		Role:       role,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	user.CreatedBy = SystemActor.UserID
	user.UpdatedBy = SystemActor.UserID
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return user, nil
}
