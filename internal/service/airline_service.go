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

// CreateAirlineInput creates an airline account and its profile.
type CreateAirlineInput struct {
	Name     string
	Code     string
	CUIT     string
	Email    string
	Password string
}

// UpdateAirlineInput is a partial airline update. Nil fields are left untouched.
type UpdateAirlineInput struct {
	Name     *string
	Code     *string
	CUIT     *string
	Email    *string
	Password *string
}

// AirlineService manages airline identities.
type AirlineService interface {
	List(ctx context.Context) ([]model.Airline, error)
	Get(ctx context.Context, id uint) (*model.Airline, error)
	Create(ctx context.Context, in CreateAirlineInput) (*model.Airline, error)
	Update(ctx context.Context, id uint, in UpdateAirlineInput) (*model.Airline, error)
	Delete(ctx context.Context, id uint) error
}

type airlineService struct {
	store  repository.Store
	hasher auth.PasswordHasher
	guard  *DeletionGuard
	events events.Publisher
}

// NewAirlineService creates a new airline service.
func NewAirlineService(store repository.Store, hasher auth.PasswordHasher, guard *DeletionGuard, publisher events.Publisher) AirlineService {
	return &airlineService{store: store, hasher: hasher, guard: guard, events: publisher}
}

func (s *airlineService) List(ctx context.Context) ([]model.Airline, error) {
	return s.store.Airlines().List(ctx)
}

func (s *airlineService) Get(ctx context.Context, id uint) (*model.Airline, error) {
	airline, err := s.store.Airlines().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAirlineNotFound)
	}
	return airline, nil
}

// Create writes the airline user and its profile in one transaction.
func (s *airlineService) Create(ctx context.Context, in CreateAirlineInput) (*model.Airline, error) {
	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Role:     model.RoleAirline,
		IsActive: true,
	}
	airline := &model.Airline{
		Name: user.Name,
		Code: strings.ToUpper(strings.TrimSpace(in.Code)),
		CUIT: strings.TrimSpace(in.CUIT),
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := ensureEmailAvailable(ctx, tx, user.Email, 0); err != nil {
			return err
		}
		if err := ensureNameAvailable(ctx, tx, user.Name, 0); err != nil {
			return err
		}
		if err := ensureAirlineKeysAvailable(ctx, tx, airline.Code, airline.CUIT, 0); err != nil {
			return err
		}

		hashed, err := s.hasher.Hash(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
		if err := tx.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("create airline user: %w", err)
		}

		airline.UserID = user.ID
		if err := tx.Airlines().Create(ctx, airline); err != nil {
			return fmt.Errorf("create airline: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	airline.User = user
	return airline, nil
}

// Update changes the airline profile and its user together; a new name is
// propagated to flights and reviews in the same transaction.
func (s *airlineService) Update(ctx context.Context, id uint, in UpdateAirlineInput) (*model.Airline, error) {
	var (
		airline *model.Airline
		renamed *events.Event
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		found, err := tx.Airlines().FindByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrAirlineNotFound)
		}
		user, err := tx.Users().FindByIDForUpdate(ctx, found.UserID)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		airline, err = tx.Airlines().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrAirlineNotFound)
		}

		code, cuit := airline.Code, airline.CUIT
		if v := trimmed(in.Code); v != nil && *v != "" {
			code = strings.ToUpper(*v)
		}
		if v := trimmed(in.CUIT); v != nil && *v != "" {
			cuit = *v
		}
		if err := ensureAirlineKeysAvailable(ctx, tx, code, cuit, airline.ID); err != nil {
			return err
		}

		renamed, err = identityChanges{Name: in.Name, Email: in.Email, Password: in.Password}.apply(ctx, tx, s.hasher, user)
		if err != nil {
			return err
		}

		airline.Name = user.Name
		airline.Code = code
		airline.CUIT = cuit
		if err := tx.Airlines().Update(ctx, airline); err != nil {
			return fmt.Errorf("update airline: %w", err)
		}
		airline.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	if renamed != nil {
		events.PublishSafe(ctx, s.events, *renamed)
	}
	return airline, nil
}

func (s *airlineService) Delete(ctx context.Context, id uint) error {
	return s.guard.DeleteAirline(ctx, id)
}

func ensureAirlineKeysAvailable(ctx context.Context, tx repository.Store, code, cuit string, selfID uint) error {
	if a, err := tx.Airlines().FindByCode(ctx, code); err == nil && a.ID != selfID {
		return apperrors.ErrCodeTaken
	} else if err != nil && !isNotFound(err) {
		return fmt.Errorf("check code: %w", err)
	}
	if a, err := tx.Airlines().FindByCUIT(ctx, cuit); err == nil && a.ID != selfID {
		return apperrors.ErrCUITTaken
	} else if err != nil && !isNotFound(err) {
		return fmt.Errorf("check cuit: %w", err)
	}
	return nil
}
