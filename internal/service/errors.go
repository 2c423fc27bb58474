package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/pkg/validator"
)

// classify turns a store failure under an expired ctx into ErrUnavailable.
// Caller cancellation and every other error pass through unchanged.
func classify(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, model.ErrUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", model.ErrUnavailable, err)
	}
	return err
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", model.ErrValidation, errs[0])
	}
	return nil
}

// Notifier receives a payload for every successful mutation. Delivery is best
// effort and must not block the caller.
type Notifier interface {
	Publish(payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(interface{}) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
