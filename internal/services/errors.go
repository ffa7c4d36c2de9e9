package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"storefront-functions/internal/pagination"
	"storefront-functions/internal/repositories"
)

var (
	// ErrInvalidArgument marks caller input that failed parsing or validation
	ErrInvalidArgument = pagination.ErrInvalidArgument

	// ErrUnauthenticated is returned when no acting user was supplied
	ErrUnauthenticated = errors.New("no user")

	// ErrNotFound is returned when the requested entity does not exist or
	// belongs to another user
	ErrNotFound = repositories.ErrNotFound
)

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthenticated checks if an error is an unauthenticated error
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// validationError converts validator output into an ErrInvalidArgument
// error naming the first failing field
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("%w: %s failed %s=%s", ErrInvalidArgument, fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %s failed %s", ErrInvalidArgument, fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
}

func requireUser(userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	return nil
}
