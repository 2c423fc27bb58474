package repository

import (
	"errors"
	"fmt"

	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
)

// translate maps gorm errors onto the model error kinds; anything else is
// wrapped with the operation name.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, model.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
