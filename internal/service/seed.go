package service

import (
	"context"
	"fmt"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
)

// SeedAccessControl makes sure default privileges and roles exist and that
// ADMIN holds every privilege while STAFF holds model.StaffPrivileges.
func SeedAccessControl(ctx context.Context, privileges repository.PrivilegeRepository, roles repository.RoleRepository) error {
	if err := privileges.SeedDefaults(ctx); err != nil {
		return err
	}
	if err := roles.SeedDefaults(ctx); err != nil {
		return err
	}

	all, err := privileges.FindAll(ctx)
	if err != nil {
		return err
	}
	staff, err := privileges.FindByCodes(ctx, model.StaffPrivileges)
	if err != nil {
		return err
	}

	grants := map[string][]model.Privilege{
		model.RoleAdmin: all,
		model.RoleStaff: staff,
	}
	for code, privs := range grants {
		role, err := roles.FindByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", code, err)
		}
		if err := roles.ReplacePrivileges(ctx, role, privs); err != nil {
			return err
		}
	}
	return nil
}
