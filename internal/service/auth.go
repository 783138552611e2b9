package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/game-rental/internal/model"
	"github.com/iliyamo/game-rental/internal/repository"
	"github.com/iliyamo/game-rental/internal/utils"
)

// AuthService registers users and issues access tokens.
type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer

	// decoy is verified against when the username is unknown so both
	// failure paths pay for one hash comparison.
	decoyOnce sync.Once
	decoy     string
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// CreateUser stores a new USER with a bcrypt-hashed password and returns a
// token for it. A taken username yields KindUserExists whether it is seen
// by the lookup or by the unique index on insert.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (utils.AccessToken, error) {
	existing, err := s.FindUserByUsername(ctx, username)
	if err != nil {
		return utils.AccessToken{}, err
	}
	if existing != nil {
		return utils.AccessToken{}, userExists(username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return utils.AccessToken{}, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: username, PasswordHash: hash, Role: model.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return utils.AccessToken{}, userExists(username)
		}
		return utils.AccessToken{}, err
	}

	log.WithFields(log.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	return s.tokens.Issue(u.Username, u.Role)
}

// AuthenticateUser verifies the credentials and returns a fresh token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) AuthenticateUser(ctx context.Context, username, password string) (utils.AccessToken, error) {
	u, err := s.FindUserByUsername(ctx, username)
	if err != nil {
		return utils.AccessToken{}, err
	}
	hash := s.decoyHash()
	if u != nil {
		hash = u.PasswordHash
	}
	if !s.hasher.Verify(hash, password) || u == nil {
		log.WithField("username", username).Debug("authentication failed")
		return utils.AccessToken{}, newErr(KindUserUnauthorized, msgBadCredentials)
	}
	return s.tokens.Issue(u.Username, u.Role)
}

func (s *AuthService) decoyHash() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash("decoy-password-for-unknown-users")
		if err != nil {
			log.WithError(err).Warn("hash decoy password")
		}
		s.decoy = h
	})
	return s.decoy
}

// FindUserByUsername returns the user or nil when no such user exists.
func (s *AuthService) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// resolveUser is FindUserByUsername for authenticated callers: a missing
// user means the token outlived its account.
func (s *AuthService) resolveUser(ctx context.Context, username string) (*model.User, error) {
	u, err := s.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, newErr(KindUserUnauthorized, msgUnknownUser, username)
	}
	return u, nil
}

func userExists(username string) *Error {
	return newErr(KindUserExists, "User with username %s already exists", username)
}
