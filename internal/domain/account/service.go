package account

import (
	"context"
	"strings"
	"time"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/auth"
)

const errBadCredentials = "Incorrect username or password"

type Service struct {
	repo     Repository
	hasher   auth.PasswordHasher
	tokens   *auth.TokenIssuer
	tokenTTL time.Duration
}

func NewService(repo Repository, hasher auth.PasswordHasher, tokens *auth.TokenIssuer, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, tokenTTL: tokenTTL}
}

func validateInput(in *AccountInput, requirePassword bool) error {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return apperr.Validation("username is required")
	}
	if requirePassword && in.Password == "" {
		return apperr.Validation("password is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("name is required")
	}
	if strings.TrimSpace(in.Position) == "" {
		return apperr.Validation("position is required")
	}
	return nil
}

// ensureUsernameFree returns Conflict when another account already holds username.
func (s *Service) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return apperr.Conflict("Username already registered")
	case apperr.IsNotFound(err):
		return nil
	default:
		return err
	}
}

func (s *Service) create(ctx context.Context, in AccountInput) (*Account, error) {
	if err := validateInput(&in, true); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, in.Username); err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Unexpected(err, "hash password")
	}
	a := &Account{
		Username:       in.Username,
		HashedPassword: digest,
		Name:           in.Name,
		Position:       in.Position,
		Phone:          in.Phone,
		TelegramID:     in.TelegramID,
		Email:          in.Email,
		IsActive:       true,
		IsAdmin:        in.IsAdmin,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Register creates a staff account. Self-registration never grants admin.
func (s *Service) Register(ctx context.Context, in AccountInput) (*Account, error) {
	in.IsAdmin = false
	return s.create(ctx, in)
}

// CreateUser is the administrator variant of Register and honours IsAdmin.
func (s *Service) CreateUser(ctx context.Context, in AccountInput) (*Account, error) {
	return s.create(ctx, in)
}

// Authenticate checks a username and password pair. Unknown usernames and
// wrong passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if apperr.IsNotFound(err) {
		return nil, apperr.Auth(errBadCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, a.HashedPassword) {
		return nil, apperr.Auth(errBadCredentials)
	}
	return a, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	a, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	tok, err := s.tokens.Issue(a.Username, s.tokenTTL)
	if err != nil {
		return nil, apperr.Unexpected(err, "issue token")
	}
	return &Token{AccessToken: tok, TokenType: "bearer"}, nil
}

// ResolveIdentity implements auth.IdentityResolver.
func (s *Service) ResolveIdentity(ctx context.Context, username string) (*auth.Identity, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if apperr.IsNotFound(err) {
		return nil, auth.ErrUnknownIdentity
	}
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, apperr.Inactive("Inactive user")
	}
	return a.Identity(), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.repo.List(ctx)
}

// UpdateProfile replaces the caller's display and contact fields.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*Account, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if strings.TrimSpace(in.Position) == "" {
		return nil, apperr.Validation("position is required")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Name = in.Name
	a.Position = in.Position
	a.Phone = in.Phone
	a.TelegramID = in.TelegramID
	a.Email = in.Email
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateUser fully replaces an account. An empty password keeps the
// existing hash; the active flag is not part of the input and is kept.
func (s *Service) UpdateUser(ctx context.Context, id int64, in AccountInput) (*Account, error) {
	if err := validateInput(&in, false); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Username != a.Username {
		if err := s.ensureUsernameFree(ctx, in.Username); err != nil {
			return nil, err
		}
	}
	if in.Password != "" {
		digest, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, apperr.Unexpected(err, "hash password")
		}
		a.HashedPassword = digest
	}
	a.Username = in.Username
	a.Name = in.Name
	a.Position = in.Position
	a.Phone = in.Phone
	a.TelegramID = in.TelegramID
	a.Email = in.Email
	a.IsAdmin = in.IsAdmin
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteUser removes an account. An actor can never delete itself.
func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if actorID == id {
		return apperr.Conflict("Cannot delete yourself")
	}
	return s.repo.Delete(ctx, id)
}

// EnsureAdmin creates an active administrator with the given credentials
// unless the username already exists. It reports whether one was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !apperr.IsNotFound(err) {
		return false, err
	}
	_, err = s.create(ctx, AccountInput{
		Username: username,
		Password: password,
		Name:     "Administrator",
		Position: "Administrator",
		IsAdmin:  true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
