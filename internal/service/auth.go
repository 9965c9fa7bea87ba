package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/dto"
	apperrors "github.com/looking-sharp/User-Authentication-Microservice/internal/errors"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/model"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/repository"
	ctxutil "github.com/looking-sharp/User-Authentication-Microservice/pkg/context"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/database"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
)

var errShortTokenExhausted = errors.New("short token collided on every attempt")

type AuthService struct {
	users       repository.UserRepository
	tx          repository.Transactor
	revocations *RevocationService
	hasher      *PasswordHasher
	tokens      *JWTService

	shortTokenLength int
	newShortToken    func(length int) (string, error)
}

func NewAuthService(
	users repository.UserRepository,
	tx repository.Transactor,
	revocations *RevocationService,
	hasher *PasswordHasher,
	tokens *JWTService,
	shortTokenLength int,
) *AuthService {
	if shortTokenLength <= 0 || shortTokenLength > constants.MaxShortTokenLen {
		shortTokenLength = constants.DefaultShortTokenLength
	}
	return &AuthService{
		users:            users,
		tx:               tx,
		revocations:      revocations,
		hasher:           hasher,
		tokens:           tokens,
		shortTokenLength: shortTokenLength,
		newShortToken:    NewShortToken,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Startup prunes revocations that expired while the service was down
func (s *AuthService) Startup(ctx context.Context) {
	s.revocations.Sweep(ctxutil.WithFunction(ctx, "service", "Startup"))
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Register")

	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	if email == "" || req.Password == "" || name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields are required")
	}
	if utf8.RuneCountInString(req.Password) < constants.MinPasswordLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Password must be at least 6 characters")
	}
	if len(req.Password) > constants.MaxPasswordLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Password must be at most 72 bytes")
	}
	if utf8.RuneCountInString(email) > constants.MaxEmailLength || utf8.RuneCountInString(name) > constants.MaxNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Email or name is too long")
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	for attempt := 1; attempt <= constants.ShortTokenMaxAttempts; attempt++ {
		shortToken, err := s.newShortToken(s.shortTokenLength)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}

		user := &model.User{
			Email:        email,
			Name:         name,
			PasswordHash: digest,
			ShortToken:   &shortToken,
		}

		err = s.users.Create(ctx, user)
		switch {
		case err == nil:
			logger.InfoWithContext(ctx, "User registered").
				Uint("user_id", user.ID).
				Log()
			return &dto.RegisterResponse{
				UserID:     user.ID,
				ShortToken: shortToken,
				Message:    constants.MsgUserCreated,
			}, nil

		case database.IsUniqueViolationOn(err, "short_token"):
			logger.WarnWithContext(ctx, "Short token collision, regenerating").
				Int("attempt", attempt).
				Log()
			continue

		case database.IsUniqueViolation(err):
			logger.InfoWithContext(ctx, "Registration rejected, email taken").
				Log()
			return nil, apperrors.ErrEmailExists

		default:
			logger.ErrorWithContext(ctx, "Failed to create user").
				Err(err).
				Log()
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	logger.ErrorWithContext(ctx, "Short token allocation exhausted").
		Int("attempts", constants.ShortTokenMaxAttempts).
		Log()
	return nil, apperrors.WrapError(apperrors.ErrInternal, errShortTokenExhausted)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Login")

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Email and password required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if database.IsNotFound(err) {
			s.hasher.CompareDummy(req.Password)
			logger.LogAuth("login", false, logReason("unknown_email"))
			return nil, apperrors.ErrInvalidCredentials
		}
		logger.ErrorWithContext(ctx, "Failed to load user for login").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		logger.ErrorWithContext(ctx, "Stored password digest is unusable").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !ok {
		logger.LogAuth("login", false, logReason("wrong_password"), logUserID(user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}

	shortToken, err := s.ensureShortToken(ctx, user)
	if err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sign token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.LogAuth("login", true, logUserID(user.ID))

	return &dto.LoginResponse{
		Token:      token,
		UserID:     user.ID,
		ShortToken: shortToken,
		Message:    constants.MsgLoginSuccessful,
	}, nil
}

// ensureShortToken backfills a short token for accounts created without one
func (s *AuthService) ensureShortToken(ctx context.Context, user *model.User) (string, error) {
	if user.ShortToken != nil && *user.ShortToken != "" {
		return *user.ShortToken, nil
	}

	for attempt := 1; attempt <= constants.ShortTokenMaxAttempts; attempt++ {
		candidate, err := s.newShortToken(s.shortTokenLength)
		if err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}

		updated, err := s.users.AssignShortToken(ctx, user.ID, candidate)
		switch {
		case err == nil && updated:
			user.ShortToken = &candidate
			return candidate, nil

		case err == nil:
			// a concurrent login assigned one first
			current, err := s.users.GetByID(ctx, user.ID)
			if err != nil {
				return "", apperrors.WrapError(apperrors.ErrInternal, err)
			}
			if current.ShortToken != nil {
				return *current.ShortToken, nil
			}

		case database.IsUniqueViolationOn(err, "short_token"):
			continue

		default:
			logger.ErrorWithContext(ctx, "Failed to backfill short token").
				Uint("user_id", user.ID).
				Err(err).
				Log()
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	return "", apperrors.WrapError(apperrors.ErrInternal, errShortTokenExhausted)
}

// authenticate verifies the token and rejects revoked ones
func (s *AuthService) authenticate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		logger.DebugWithContext(ctx, "Token rejected").
			Err(err).
			Log()
		return nil, apperrors.ErrInvalidToken
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.JTI())
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	return claims, nil
}

// Verify returns the identity embedded in a valid, unrevoked token. The user
// row is not re-read.
func (s *AuthService) Verify(ctx context.Context, token string) (*dto.UserIdentity, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Verify")

	claims, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	return &dto.UserIdentity{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

// Logout revokes an authentic, unexpired token. Anything else is answered
// with a benign message since such a token can no longer be used anyway.
func (s *AuthService) Logout(ctx context.Context, token string) (string, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Logout")

	if token == "" {
		return "", apperrors.ErrUnauthorized
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		logger.DebugWithContext(ctx, "Logout with unusable token").
			Err(err).
			Log()
		return constants.MsgAlreadyLoggedOutOrIn, nil
	}

	s.revocations.Sweep(ctx)

	created, err := s.revocations.Revoke(ctx, claims.JTI(), claims.ExpiresAtTime())
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !created {
		return constants.MsgAlreadyLoggedOut, nil
	}

	s.revocations.Remember(ctx, claims.JTI(), claims.ExpiresAtTime())
	logger.LogAuth("logout", true, logUserID(claims.UserID))

	return constants.MsgLogoutSuccessful, nil
}

// DeleteAccount revokes the token and removes the user in one transaction,
// returning the identity the token carried.
func (s *AuthService) DeleteAccount(ctx context.Context, token string) (*dto.UserIdentity, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "DeleteAccount")

	claims, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	ctx = ctxutil.WithUserID(ctx, claims.UserID)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.revocations.Revoke(ctx, claims.JTI(), claims.ExpiresAtTime())
		if err != nil {
			return err
		}
		if !created {
			// lost a race with a concurrent logout or delete
			return apperrors.ErrTokenRevoked
		}

		deleted, err := s.users.Delete(ctx, claims.UserID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			logger.WarnWithContext(ctx, "Account already removed, token revoked anyway").
				Log()
		}
		return nil
	})
	if err != nil {
		if apperrors.IsDomainError(err) {
			return nil, err
		}
		logger.ErrorWithContext(ctx, "Account deletion rolled back").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.revocations.Remember(ctx, claims.JTI(), claims.ExpiresAtTime())
	logger.InfoWithContext(ctx, "Account deleted").
		Log()

	return &dto.UserIdentity{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

// Exists reports whether the normalized email is registered
func (s *AuthService) Exists(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, apperrors.WithMessage(apperrors.ErrInvalidInput, constants.MsgNoEmailProvided)
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return taken, nil
}

func (s *AuthService) LookupByShortToken(ctx context.Context, shortToken string) (*dto.PublicUser, error) {
	shortToken = strings.TrimSpace(shortToken)
	if shortToken == "" || len(shortToken) > constants.MaxShortTokenLen {
		return nil, apperrors.ErrUserNotFound
	}

	user, err := s.users.GetByShortToken(ctx, shortToken)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.PublicUser{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		ShortToken: user.ShortTokenValue(),
	}, nil
}

// ListUsers backs the admin user table
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int, search string) ([]dto.AdminUserRow, int64, error) {
	users, total, err := s.users.List(ctx, limit, offset, search)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	rows := make([]dto.AdminUserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, dto.AdminUserRow{
			ID:         u.ID,
			Email:      u.Email,
			Name:       u.Name,
			ShortToken: u.ShortTokenValue(),
			CreatedAt:  u.CreatedAt,
		})
	}
	return rows, total, nil
}
