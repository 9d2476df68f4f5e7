package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput indicates a caller passed an unusable argument.
var ErrInvalidInput = errors.New("invalid input")

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: context cannot be nil", ErrInvalidInput)
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, name)
	}
	return nil
}
