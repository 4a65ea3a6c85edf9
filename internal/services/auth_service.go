package services

import (
	"fmt"

	"github.com/isdelr/inkwell-be/internal/auth"
	"github.com/isdelr/inkwell-be/internal/models"
	"github.com/rs/zerolog/log"
)

// AuthServiceProvider defines the interface for authentication services.
type AuthServiceProvider interface {
	Register(name, email, password string) (models.User, string, error)
	Login(email, password string) (models.User, string, error)
	Logout(token string) error
	LogoutAll(userID string) error
}

// AuthService orchestrates registration and login: it verifies credentials
// through the user service and asks the token registry to mint and revoke
// session tokens.
type AuthService struct {
	users    UserServiceProvider
	registry auth.TokenIssuer
	events   EventServiceProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserServiceProvider, registry auth.TokenIssuer, events EventServiceProvider) *AuthService {
	return &AuthService{users: users, registry: registry, events: events}
}

// Register creates a new account and immediately issues a session token for
// it; a freshly registered user is logged in.
func (s *AuthService) Register(name, email, password string) (models.User, string, error) {
	user, err := s.users.CreateUser(name, email, password)
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.registry.Issue(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to issue session: %w", err)
	}

	s.recordEvent("auth.register", fmt.Sprintf("User '%s' registered.", user.Name))
	return user, token, nil
}

// Login verifies credentials and issues a fresh token. Each login gets its
// own token, so sessions on different devices are independently revocable.
func (s *AuthService) Login(email, password string) (models.User, string, error) {
	user, err := s.users.AuthenticateUser(email, password)
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.registry.Issue(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to issue session: %w", err)
	}

	s.recordEvent("auth.login", fmt.Sprintf("User '%s' logged in.", user.Name))
	return user, token, nil
}

// Logout revokes exactly the presented token. Revoking a token that is
// already gone is a no-op.
func (s *AuthService) Logout(token string) error {
	return s.registry.Revoke(token)
}

// LogoutAll ends every session the user holds, across all devices.
func (s *AuthService) LogoutAll(userID string) error {
	if err := s.registry.RevokeAll(userID); err != nil {
		return err
	}
	s.recordEvent("auth.logout_all", "All sessions ended for a user.")
	return nil
}

func (s *AuthService) recordEvent(eventType, message string) {
	if err := s.events.CreateEvent(eventType, "info", message, nil); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record auth event")
	}
}
