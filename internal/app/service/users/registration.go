// internal/app/service/users/registration.go
//
// Package users handles account registration and credential checks. The
// phone number is the primary identity; email is optional and secondary.
package users

import (
	"context"
	"errors"

	"github.com/dalemusser/memberhub/internal/app/policy/assignpolicy"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// Store is the user persistence surface the service needs.
type Store interface {
	assignpolicy.UserReader
	Create(ctx context.Context, u models.User) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	MarkVerified(ctx context.Context, phone string) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// Service registers accounts and checks credentials.
type Service struct {
	store Store
	log   *zap.Logger
}

// NewService wires a Service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, log: logger}
}

// RegisterInput carries a new registration.
type RegisterInput struct {
	FullName string
	Phone    string
	Email    string
	Password string
	Avatar   string
}

// Register creates a pending, unverified account. Abandoned unverified
// registrations holding the same phone or email are purged first so the
// caller can retry a registration that never completed verification.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Newf(apperr.BadRequest, "password must be at least %d characters", minPasswordLen)
	}
	phone := normalize.Phone(in.Phone)
	if phone == "" {
		return nil, apperr.New(apperr.BadRequest, "phone is required")
	}
	email := normalize.Email(in.Email)

	stale, err := assignpolicy.EnsureUserRegistrable(ctx, s.store, phone, email)
	if err != nil {
		return nil, err
	}
	for _, id := range stale {
		if _, err := s.store.Delete(ctx, id); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "purging stale registration", err)
		}
		s.log.Info("purged stale unverified registration", zap.String("user_id", id.Hex()))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hashing password", err)
	}

	u := models.User{
		FullName:      in.FullName,
		Phone:         phone,
		Avatar:        in.Avatar,
		PasswordHash:  string(hash),
		Verified:      false,
		AccountStatus: models.StatusPending,
	}
	if email != "" {
		u.Email = &email
	}

	created, err := s.store.Create(ctx, u)
	if err != nil {
		// Unique indexes backstop the registrable check under races.
		if errors.Is(err, userstore.ErrDuplicatePhone) || errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil, apperr.Wrap(apperr.Conflict, "account already registered", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "creating account", err)
	}

	s.log.Info("account registered", zap.String("user_id", created.ID.Hex()))
	return &created, nil
}

// Login checks the phone's credentials against a verified, approved
// account. Wrong passwords and ineligible accounts both come back as
// BadRequest so callers cannot probe which accounts exist.
func (s *Service) Login(ctx context.Context, phone, password string) (*models.User, error) {
	u, err := assignpolicy.EnsureLoginEligible(ctx, s.store, normalize.Phone(phone))
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.BadRequest, "invalid credentials")
	}
	return u, nil
}

// VerifyAccount marks the phone's account as verified, completing
// registration.
func (s *Service) VerifyAccount(ctx context.Context, phone string) error {
	normalized := normalize.Phone(phone)
	if _, err := assignpolicy.EnsureOTPEligible(ctx, s.store, normalized); err != nil {
		return err
	}
	if err := s.store.MarkVerified(ctx, normalized); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return apperr.Wrap(apperr.Internal, "marking verified", err)
	}
	s.log.Info("account verified", zap.String("phone", normalized))
	return nil
}

// UpdateAccountStatus moves an account between pending, approved, and
// rejected.
func (s *Service) UpdateAccountStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if !models.ValidStatus(status) {
		return apperr.Newf(apperr.BadRequest, "invalid account status %q", status)
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return apperr.Wrap(apperr.Internal, "updating account status", err)
	}
	s.log.Info("account status updated",
		zap.String("user_id", id.Hex()),
		zap.String("status", status))
	return nil
}
