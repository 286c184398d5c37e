package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/travel-desk/itinerary-service/internal/auth"
	"github.com/travel-desk/itinerary-service/internal/domain"
	"github.com/travel-desk/itinerary-service/internal/events"
	"github.com/travel-desk/itinerary-service/internal/repository"
	apperrors "github.com/travel-desk/itinerary-service/pkg/util/errorutil"
)

// AuthService coordinates login, registration and session flows.
type AuthService struct {
	identities repository.IdentityRepository
	employees  repository.EmployeeRepository
	tokens     *auth.TokenManager
	blacklist  auth.Blacklist
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	IdentityRepo repository.IdentityRepository
	EmployeeRepo repository.EmployeeRepository
	Tokens       *auth.TokenManager
	Blacklist    auth.Blacklist
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	BcryptCost   int
}

// AuthResult is returned by Login and Register.
type AuthResult struct {
	Identity *domain.Identity
	Tokens   domain.TokenPair
}

// RegisterInput carries the registration form. Nil means the field was absent.
type RegisterInput struct {
	Username        *string
	Email           string
	FirstName       string
	LastName        string
	Password        *string
	PasswordConfirm *string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		identities: deps.IdentityRepo,
		employees:  deps.EmployeeRepo,
		tokens:     deps.Tokens,
		blacklist:  deps.Blacklist,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: deps.BcryptCost,
	}
}

// Login authenticates by username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("Must include username and password", nil)
	}

	identity, err := s.identities.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}
	if err := auth.ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	if !identity.IsActive {
		return nil, apperrors.NewAccountDisabled()
	}

	pair, err := s.tokens.GeneratePair(identity.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Identity: identity, Tokens: pair}, nil
}

// Register creates an active identity and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	problems := fieldErrors{}
	username := problems.checkUsername("username", input.Username)
	email := problems.checkEmail("email", input.Email)
	firstName := problems.checkOptional("first_name", input.FirstName, maxNameLength)
	lastName := problems.checkOptional("last_name", input.LastName, maxNameLength)

	password := ""
	if input.Password == nil || *input.Password == "" {
		problems.add("password", msgRequired)
	} else {
		password = *input.Password
		if len([]rune(password)) < minPasswordLength {
			problems.add("password", "Ensure this field has at least 8 characters.")
		}
	}
	if input.PasswordConfirm == nil || *input.PasswordConfirm == "" {
		problems.add("password_confirm", msgRequired)
	}
	if err := problems.err(); err != nil {
		return nil, err
	}
	if password != *input.PasswordConfirm {
		return nil, apperrors.NewValidationError("Passwords don't match", map[string]any{
			"password": "Password fields didn't match.",
		})
	}

	exists, err := s.identities.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateUsername()
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	identity := &domain.Identity{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, duplicateUsername()
		}
		return nil, err
	}

	pair, err := s.tokens.GeneratePair(identity.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIdentityRegistered,
		ActorID: identity.ID,
		Payload: events.IdentityPayload{Username: identity.Username},
	})
	return &AuthResult{Identity: identity, Tokens: pair}, nil
}

// Logout blacklists a refresh token. Every failure is reported as InvalidToken.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return apperrors.NewInvalidToken()
	}
	claims, err := s.tokens.ParseTyped(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return apperrors.NewInvalidToken()
	}
	added, err := s.blacklist.Add(ctx, claims.ID, s.tokens.RemainingTTL(claims))
	if err != nil {
		s.logger.Warn("blacklist write failed", zap.String("jti", claims.ID), zap.Error(err))
		return apperrors.NewInvalidToken()
	}
	if !added {
		return apperrors.NewInvalidToken()
	}
	return nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseTyped(strings.TrimSpace(refreshToken), domain.TokenTypeRefresh)
	if err != nil {
		return "", apperrors.NewInvalidToken()
	}
	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("blacklist lookup failed", zap.String("jti", claims.ID), zap.Error(err))
		return "", apperrors.NewInvalidToken()
	}
	if revoked {
		return "", apperrors.NewInvalidToken()
	}
	identity, err := s.identities.GetByID(ctx, claims.UserID)
	if err != nil || !identity.IsActive {
		return "", apperrors.NewInvalidToken()
	}
	access, _, err := s.tokens.GenerateAccessToken(identity.ID)
	if err != nil {
		return "", err
	}
	return access, nil
}

// CurrentProfile returns the caller's identity.
func (s *AuthService) CurrentProfile(_ context.Context, caller *domain.Identity) (*domain.Identity, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	return caller, nil
}

// EmployeeProfile returns the employee record linked to the caller.
func (s *AuthService) EmployeeProfile(ctx context.Context, caller *domain.Identity) (*domain.Employee, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	employee, err := s.employees.GetByUserID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Employee profile", nil)
		}
		return nil, err
	}
	return employee, nil
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, event)
}

func duplicateUsername() error {
	return apperrors.NewValidationError("Validation failed", map[string]any{
		"username": "A user with that username already exists.",
	})
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
