package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
)

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	FullName    string  `json:"full_name" validate:"required,max=255"`
	PhoneNumber string  `json:"phone_number" validate:"max=20"`
	Role        string  `json:"role" validate:"required,oneof=ADMIN STAFF"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateUserPrivilegesRequest struct {
	Privileges []string `json:"privileges" validate:"required,min=1,dive,required"`
}

// UserService is the admin surface over accounts. Accounts are deactivated,
// never removed, so the audit trail on transactions keeps resolving.
type UserService interface {
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error)
	UpdateUserPrivileges(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateUserPrivilegesRequest) (*model.UserResponse, error)
	DeactivateUser(ctx context.Context, actor Actor, id uuid.UUID) error
	// GetUserTransactions pages through the transactions the user recorded.
	GetUserTransactions(ctx context.Context, id uuid.UUID, page, size int) (*Page, error)
}

type userService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	privileges repository.PrivilegeRepository
	query      TransactionQueryService
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository, privileges repository.PrivilegeRepository, query TransactionQueryService) UserService {
	return &userService{users: users, roles: roles, privileges: privileges, query: query}
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return out, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// UpdateUser rewrites the account. A role change resets the user's
// privileges to the new role's defaults.
func (s *userService) UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive && user.ID.String() == actor.UserID {
		return nil, fmt.Errorf("%w: you cannot deactivate your own account", model.ErrValidation)
	}

	if req.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("%w: email %s is already registered", model.ErrConflict, req.Email)
		} else if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	var role *model.Role
	if req.Role != user.RoleCode() {
		role, err = s.roles.FindByCode(ctx, req.Role)
		if err != nil {
			return nil, fmt.Errorf("role %s: %w", req.Role, err)
		}
		user.RoleID = &role.ID
		user.Role = role
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	user.UpdatedBy = actor.auditID()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if role != nil {
		if err := s.users.ReplacePrivileges(ctx, user, role.Privileges); err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(ctx, id)
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateUserPrivilegesRequest) (*model.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	privs, err := s.privileges.FindByCodes(ctx, req.Privileges)
	if err != nil {
		return nil, err
	}
	if len(privs) != len(uniqueCodes(req.Privileges)) {
		return nil, fmt.Errorf("%w: unknown privilege in %v", model.ErrValidation, req.Privileges)
	}
	user.UpdatedBy = actor.auditID()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.ReplacePrivileges(ctx, user, privs); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *userService) DeactivateUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	if id.String() == actor.UserID {
		return fmt.Errorf("%w: you cannot deactivate your own account", model.ErrValidation)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	user.UpdatedBy = actor.auditID()
	return s.users.Update(ctx, user)
}

func (s *userService) GetUserTransactions(ctx context.Context, id uuid.UUID, page, size int) (*Page, error) {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.query.List(ctx, page, size, repository.TransactionFilter{CreatedByUserID: id.String()})
}

func uniqueCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := codes[:0:0]
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
