package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
	"flightbooking/internal/storage"
)

// ProfileUpdate is a self-service change. Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Picture  *multipart.FileHeader
}

// CreateUserInput is an admin-created account.
type CreateUserInput struct {
	Name            string
	Email           string
	ConfirmEmail    string
	Password        string
	ConfirmPassword string
	Role            model.Role
}

// UserUpdate is an admin change to another account.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	IsActive *bool
}

// UserService exposes self-service and admin user management.
type UserService interface {
	GetProfile(ctx context.Context, actor *auth.Principal) (*model.User, error)
	UpdateProfile(ctx context.Context, actor *auth.Principal, in ProfileUpdate) (*model.User, error)
	DeleteProfile(ctx context.Context, actor *auth.Principal) error

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error)
	UpdateUser(ctx context.Context, actor *auth.Principal, id uint, in UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, actor *auth.Principal, id uint) error
	ToggleStatus(ctx context.Context, actor *auth.Principal, id uint) (*model.User, error)
	ChangeRole(ctx context.Context, actor *auth.Principal, id uint, role model.Role) (*model.User, error)
}

type userService struct {
	store  repository.Store
	hasher auth.PasswordHasher
	guard  *DeletionGuard
	files  storage.Sink
	events events.Publisher
}

// NewUserService builds a UserService.
func NewUserService(store repository.Store, hasher auth.PasswordHasher, guard *DeletionGuard, files storage.Sink, publisher events.Publisher) UserService {
	return &userService{store: store, hasher: hasher, guard: guard, files: files, events: publisher}
}

func (s *userService) GetProfile(ctx context.Context, actor *auth.Principal) (*model.User, error) {
	return s.GetUser(ctx, actor.ID)
}

// UpdateProfile applies the caller's own changes. A new picture is stored
// first and discarded again if the update fails; the old one is removed only
// after commit.
func (s *userService) UpdateProfile(ctx context.Context, actor *auth.Principal, in ProfileUpdate) (*model.User, error) {
	var newPicture string
	if in.Picture != nil {
		if s.files == nil {
			return nil, fmt.Errorf("file storage is not configured")
		}
		path, err := s.files.SaveImage(storage.ProfilePictures, "profilePicture", in.Picture)
		if err != nil {
			return nil, uploadError(err)
		}
		newPicture = path
	}

	var (
		user       *model.User
		oldPicture *string
		renamed    *events.Event
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByIDForUpdate(ctx, actor.ID)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		if newPicture != "" {
			oldPicture = user.ProfilePicture
			user.ProfilePicture = &newPicture
		}
		renamed, err = identityChanges{Name: in.Name, Email: in.Email, Password: in.Password}.apply(ctx, tx, s.hasher, user)
		return err
	})
	if err != nil {
		if newPicture != "" {
			s.files.Remove(newPicture)
		}
		return nil, err
	}

	if oldPicture != nil && s.files != nil {
		s.files.Remove(*oldPicture)
	}
	if renamed != nil {
		events.PublishSafe(ctx, s.events, *renamed)
	}
	return user, nil
}

func (s *userService) DeleteProfile(ctx context.Context, actor *auth.Principal) error {
	return s.guard.DeleteSelf(ctx, actor)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.store.Users().List(ctx)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

// CreateUser creates an admin or regular account. Airline accounts are
// created through the airline service.
func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if !strings.EqualFold(strings.TrimSpace(in.Email), strings.TrimSpace(in.ConfirmEmail)) || in.Password != in.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, apperrors.ErrInvalidRole
	}

	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Role:     role,
		IsActive: true,
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := ensureNameAvailable(ctx, tx, user.Name, 0); err != nil {
			return err
		}
		if err := ensureEmailAvailable(ctx, tx, user.Email, 0); err != nil {
			return err
		}
		hashed, err := s.hasher.Hash(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
		if err := tx.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *auth.Principal, id uint, in UserUpdate) (*model.User, error) {
	if in.IsActive != nil && actor.ID == id {
		return nil, apperrors.ErrSelfModification
	}

	var (
		user    *model.User
		renamed *events.Event
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		if in.IsActive != nil {
			user.IsActive = *in.IsActive
		}
		renamed, err = identityChanges{Name: in.Name, Email: in.Email, Password: in.Password}.apply(ctx, tx, s.hasher, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	if renamed != nil {
		renamed.ActorID = actor.ID
		events.PublishSafe(ctx, s.events, *renamed)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor *auth.Principal, id uint) error {
	return s.guard.DeleteUser(ctx, actor, id)
}

func (s *userService) ToggleStatus(ctx context.Context, actor *auth.Principal, id uint) (*model.User, error) {
	if actor.ID == id {
		return nil, apperrors.ErrSelfModification
	}
	var user *model.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		user.IsActive = !user.IsActive
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole switches an account between admin and user. Airline identities
// keep their role for as long as their profile exists.
func (s *userService) ChangeRole(ctx context.Context, actor *auth.Principal, id uint, role model.Role) (*model.User, error) {
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, apperrors.ErrInvalidRole
	}
	if actor.ID == id {
		return nil, apperrors.ErrSelfModification
	}

	var user *model.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		if user.Role == model.RoleAirline {
			return apperrors.ErrAirlineRoleLocked
		}
		user.Role = role
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
