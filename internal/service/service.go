package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/storage"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func orNow(clock Clock) Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}

// notFound translates a missing row into the entity's domain error.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// isNotFound reports whether err is a missing-row error.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func uploadError(err error) error {
	if errors.Is(err, storage.ErrNotImage) {
		return apperrors.ErrInvalidUpload
	}
	return fmt.Errorf("store upload: %w", err)
}
