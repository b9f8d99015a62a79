// Package services contains server-side business logic. UserService
// implements signup, login and the current-user lookup.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenIssuer signs identity claims into a bearer token.
type TokenIssuer interface {
	Issue(c models.TokenClaims) (string, error)
}

// UserService provides the authentication operations:
//   - Signup: create a user with a hashed password
//   - Login: verify credentials and issue a token
//   - GetSelf: fresh read of the user behind a verified token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer
	logger      logging.Logger
	metrics     *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// NewUserService wires the service. m may be nil.
func NewUserService(db *sql.DB, rm repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens TokenIssuer, l logging.Logger, m *metrics.Metrics) *UserService {
	return &UserService{
		db:          db,
		repomanager: rm,
		hasher:      hasher,
		tokens:      tokens,
		logger:      l.With("module", "user_service"),
		metrics:     m,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Signup registers a user. An empty role means models.RoleUser. It returns a
// *common.ValidationError for bad input, common.ErrorAlreadyExists when the
// email is taken and an error matching common.ErrorInternal otherwise.
func (s *UserService) Signup(ctx context.Context, name, email, password string, role models.Role) (*models.PublicUser, error) {
	name = strings.TrimSpace(name)

	if err := validateSignup(signupInput{Name: name, Email: email, Password: password, Role: string(role)}); err != nil {
		s.metrics.Signup(metrics.ResultInvalid)
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	}

	var created *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetUserByEmail(ctx, email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}

		created, err = repo.Create(ctx, &models.User{
			ID:           s.newID(),
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    s.now().UTC(),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.metrics.Signup(metrics.ResultConflict)
			return nil, common.ErrorAlreadyExists
		}
		s.metrics.Signup(metrics.ResultError)
		s.logger.Error(ctx, "signup failed", logging.ErrorAttrs(err)...)
		return nil, common.Internal(err)
	}

	s.metrics.Signup(metrics.ResultSuccess)
	s.logger.Info(ctx, "user registered", "user_id", created.ID, "role", string(created.Role))
	return created.ToPublic(), nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both return common.ErrInvalidCredentials after the same amount
// of hashing work.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	if err := validateLogin(loginInput{Email: email, Password: password}); err != nil {
		s.metrics.Login(metrics.ResultInvalid)
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.hasher.DummyHash())
			s.metrics.Login(metrics.ResultInvalidCredentials)
			return nil, common.ErrInvalidCredentials
		}
		s.metrics.Login(metrics.ResultError)
		s.logger.Error(ctx, "login lookup failed", logging.ErrorAttrs(err)...)
		return nil, common.Internal(err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.Login(metrics.ResultInvalidCredentials)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(models.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		s.metrics.Login(metrics.ResultError)
		s.logger.Error(ctx, "token issue failed", logging.ErrorAttrs(err)...)
		return nil, common.Internal(err)
	}

	s.metrics.Login(metrics.ResultSuccess)
	return &models.AuthResponse{Token: token, User: user.ToLogin()}, nil
}

// GetSelf reads the current state of the user identified by claims. The
// token may outlive its user, in which case common.ErrorNotFound is returned.
func (s *UserService) GetSelf(ctx context.Context, claims *models.TokenClaims) (*models.PublicUser, error) {
	if claims == nil || claims.UserID == "" {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "get self failed", logging.ErrorAttrs(err)...)
		return nil, common.Internal(err)
	}

	return user.ToPublic(), nil
}
