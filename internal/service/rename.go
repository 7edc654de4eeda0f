package service

import (
	"context"
	"fmt"
	"strings"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
)

// propagateRename moves the airline label oldName to newName on flights
// (by label or creator), reviews and the airline profile. It must run in the
// transaction that renames the user so a failure undoes the rename too.
func propagateRename(ctx context.Context, tx repository.Store, userID uint, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if _, err := tx.Flights().RenameAirline(ctx, oldName, newName, userID); err != nil {
		return fmt.Errorf("rename flights: %w", err)
	}
	if _, err := tx.Reviews().RenameAirline(ctx, oldName, newName); err != nil {
		return fmt.Errorf("rename reviews: %w", err)
	}
	if err := tx.Airlines().RenameByUserID(ctx, userID, newName); err != nil {
		return fmt.Errorf("rename airline profile: %w", err)
	}
	return nil
}

// identityChanges is a partial update of the credentials shared by every
// account. Nil fields are left untouched.
type identityChanges struct {
	Name     *string
	Email    *string
	Password *string
}

// apply validates and writes the changes to user inside tx. Airline accounts
// get their new name propagated; the returned event is non-nil in that case.
func (c identityChanges) apply(ctx context.Context, tx repository.Store, hasher auth.PasswordHasher, user *model.User) (*events.Event, error) {
	oldName := user.Name

	if name := trimmed(c.Name); name != nil && *name != "" && *name != user.Name {
		if err := ensureNameAvailable(ctx, tx, *name, user.ID); err != nil {
			return nil, err
		}
		user.Name = *name
	}
	if email := trimmed(c.Email); email != nil && *email != "" {
		normalized := strings.ToLower(*email)
		if normalized != user.Email {
			if err := ensureEmailAvailable(ctx, tx, normalized, user.ID); err != nil {
				return nil, err
			}
			user.Email = normalized
		}
	}
	if c.Password != nil && *c.Password != "" {
		hashed, err := hasher.Hash(*c.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
	}

	if err := tx.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if user.Role != model.RoleAirline || oldName == user.Name {
		return nil, nil
	}
	if err := propagateRename(ctx, tx, user.ID, oldName, user.Name); err != nil {
		return nil, err
	}
	evt := events.New(events.AirlineRenamed, user.ID, map[string]interface{}{
		"from": oldName,
		"to":   user.Name,
	})
	return &evt, nil
}

// ensureNameAvailable checks name against users and airline profiles other
// than the one owned by selfID.
func ensureNameAvailable(ctx context.Context, tx repository.Store, name string, selfID uint) error {
	if u, err := tx.Users().FindByName(ctx, name); err == nil && u.ID != selfID {
		return apperrors.ErrNameTaken
	} else if err != nil && !isNotFound(err) {
		return fmt.Errorf("check name: %w", err)
	}
	if a, err := tx.Airlines().FindByName(ctx, name); err == nil && a.UserID != selfID {
		return apperrors.ErrNameTaken
	} else if err != nil && !isNotFound(err) {
		return fmt.Errorf("check airline name: %w", err)
	}
	return nil
}

func ensureEmailAvailable(ctx context.Context, tx repository.Store, email string, selfID uint) error {
	u, err := tx.Users().FindByEmail(ctx, email)
	if err == nil && u.ID != selfID {
		return apperrors.ErrEmailTaken
	}
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}
