package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/server/auth"
	"github.com/dmitrijs2005/nyayguru/internal/server/config"
	"github.com/dmitrijs2005/nyayguru/internal/shared"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"
)

const providerGoogle = "google"

// TokenResult is a freshly issued access token together with its owner.
type TokenResult struct {
	AccessToken string
	User        *User
}

// RegisterInput is the registration form. Extra carries every field the
// service does not interpret.
type RegisterInput struct {
	Username string
	FullName string
	Email    string
	Password string
	Extra    map[string]json.RawMessage
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required.Error("Email is required"), is.Email.Error("Invalid email address")),
		validation.Field(&in.Password, validation.Required.Error("Password is required"), validation.Length(8, 0).Error("Password must be at least 8 characters long")),
		validation.Field(&in.Username, validation.Required.Error("Username is required")),
	)
}

// Service provides authentication-related operations:
// - Register / Login / LoginWithAssertion: verify identity and mint tokens
// - Authenticate: resolve a bearer token to its user
// - Logout: revoke a token until it would have expired anyway
// - UpdateProfile / SetAvatar: edit the account
type Service struct {
	repo      Repository
	jwtSecret []byte
	tokenTTL  time.Duration
	hashCost  int

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(cfg.SecretKey),
		tokenTTL:  cfg.TokenTTL,
		hashCost:  bcrypt.DefaultCost,
		revoked:   make(map[string]time.Time),
	}
}

// EnsureAdmin creates the admin account unless the email is already taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, shared.ErrorNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	_, err = s.repo.Create(ctx, &User{
		Username:     "admin",
		Email:        email,
		FullName:     "Administrator",
		IsAdmin:      true,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*TokenResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := s.repo.Create(ctx, &User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Extra:        in.Extra,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorInvalidLoginPassword
		}
		return nil, err
	}
	if len(u.PasswordHash) == 0 {
		return nil, shared.ErrorInvalidLoginPassword
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, shared.ErrorInvalidLoginPassword
	}
	return s.issue(u)
}

// LoginWithAssertion signs in with a third-party ID token, creating the
// account on first use.
func (s *Service) LoginWithAssertion(ctx context.Context, provider, token string) (*TokenResult, error) {
	if !strings.EqualFold(provider, providerGoogle) {
		return nil, shared.ErrorUnsupportedProvider
	}

	claims, err := auth.ParseAssertion(token)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, claims.Email)
	if errors.Is(err, shared.ErrorNotFound) {
		username, _, _ := strings.Cut(claims.Email, "@")
		u, err = s.repo.Create(ctx, &User{
			Username: username,
			Email:    claims.Email,
			FullName: claims.Name,
		})
	}
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Authenticate returns the user owning a valid, unrevoked token.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, *auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, nil, err
	}
	if s.isRevoked(claims.ID) {
		return nil, nil, shared.ErrorTokenRevoked
	}

	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, nil, shared.ErrorInvalidToken
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, nil, shared.ErrorInvalidToken
		}
		return nil, nil, err
	}
	return u, claims, nil
}

// Logout revokes the token identified by claims.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for jti, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, jti)
		}
	}

	exp := now.Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.revoked[claims.ID] = exp
}

func (s *Service) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

// fields a profile update may not touch
var protectedFields = map[string]struct{}{
	"id":         {},
	"isAdmin":    {},
	"is_admin":   {},
	"password":   {},
	"created_at": {},
	"avatar_url": {},
}

// UpdateProfile applies a partial update. A null value removes an extra
// field; protected fields are ignored.
func (s *Service) UpdateProfile(ctx context.Context, id int64, patch map[string]json.RawMessage) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := patch[k]
		if _, ok := protectedFields[k]; ok {
			continue
		}
		switch k {
		case "username", "email", "full_name":
			var str string
			if err := json.Unmarshal(v, &str); err != nil {
				return nil, fmt.Errorf("%w: %s must be a string", shared.ErrorValidation, k)
			}
			if err := s.setField(u, k, strings.TrimSpace(str)); err != nil {
				return nil, err
			}
		default:
			if string(v) == "null" {
				delete(u.Extra, k)
				continue
			}
			u.Extra[k] = v
		}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) setField(u *User, k, v string) error {
	switch k {
	case "username":
		if err := validation.Validate(v, validation.Required.Error("Username is required")); err != nil {
			return validationError(err)
		}
		u.Username = v
	case "email":
		if err := validation.Validate(v, validation.Required.Error("Email is required"), is.Email.Error("Invalid email address")); err != nil {
			return validationError(err)
		}
		u.Email = v
	case "full_name":
		u.FullName = v
	}
	return nil
}

func (s *Service) SetAvatar(ctx context.Context, id int64, url string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.AvatarURL = url
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) issue(u *User) (*TokenResult, error) {
	token, err := auth.GenerateToken(auth.Subject{
		UserID:  u.idString(),
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &TokenResult{AccessToken: token, User: u}, nil
}

// validationError keeps the first message in field order.
func validationError(err error) error {
	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if errs[k] != nil {
				return fmt.Errorf("%w: %s", shared.ErrorValidation, errs[k].Error())
			}
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrorValidation, err.Error())
}
