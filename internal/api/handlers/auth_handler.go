package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/isdelr/inkwell-be/internal/auth"
	"github.com/isdelr/inkwell-be/internal/models"
	"github.com/isdelr/inkwell-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for registration and session lifecycle.
type AuthHandler struct {
	authService services.AuthServiceProvider
	userService services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthServiceProvider, userService services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the body returned by register and login.
type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register handles new user registration. A successful registration issues a
// session token right away, so the client is logged in without a second call.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFailure(w, http.StatusBadRequest, "Bad request", "Invalid request body")
		return
	}

	if fieldErrors := validateRegister(payload); len(fieldErrors) > 0 {
		writeValidation(w, fieldErrors)
		return
	}

	user, token, err := h.authService.Register(payload.Name, payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, err)
		return
	}

	setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": sessionResponse{Token: token, User: user},
	})
}

// Login handles user authentication and session token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFailure(w, http.StatusBadRequest, "Bad request", "Invalid request body")
		return
	}

	fieldErrors := map[string][]string{}
	requireField(fieldErrors, "email", payload.Email)
	requireField(fieldErrors, "password", payload.Password)
	if len(fieldErrors) > 0 {
		writeValidation(w, fieldErrors)
		return
	}

	user, token, err := h.authService.Login(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": sessionResponse{Token: token, User: user},
	})
}

// Logout revokes the session token presented on this request. Repeating the
// call with the same token is a no-op.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if err := h.authService.Logout(token); err != nil {
		log.Error().Err(err).Msg("Failed to revoke session")
		writeError(w, err)
		return
	}

	clearTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// LogoutAll revokes every session of the authenticated user, ending their
// logins on all devices.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve principal from context")
		writeFailure(w, http.StatusInternalServerError, "Internal server error", "Could not retrieve user from token")
		return
	}

	if err := h.authService.LogoutAll(principal); err != nil {
		log.Error().Err(err).Str("user_id", principal).Msg("Failed to revoke sessions")
		writeError(w, err)
		return
	}

	clearTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "All sessions ended"})
}

// GetMe retrieves the currently authenticated user.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve principal from context")
		writeFailure(w, http.StatusInternalServerError, "Internal server error", "Could not retrieve user from token")
		return
	}

	user, err := h.userService.GetUserByID(principal)
	if err != nil {
		log.Error().Err(err).Str("user_id", principal).Msg("User from token not found in DB")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func validateRegister(payload RegisterPayload) map[string][]string {
	fieldErrors := map[string][]string{}
	requireField(fieldErrors, "name", payload.Name)
	requireField(fieldErrors, "email", payload.Email)
	if payload.Email != "" && !strings.Contains(payload.Email, "@") {
		fieldErrors["email"] = append(fieldErrors["email"], "The email field must be a valid email address.")
	}
	if payload.Password == "" {
		fieldErrors["password"] = append(fieldErrors["password"], "The password field is required.")
	} else if len(payload.Password) < 8 {
		fieldErrors["password"] = append(fieldErrors["password"], "The password field must be at least 8 characters.")
	}
	if payload.PasswordConfirmation != "" && payload.PasswordConfirmation != payload.Password {
		fieldErrors["password"] = append(fieldErrors["password"], "The password field confirmation does not match.")
	}
	return fieldErrors
}

func requireField(fieldErrors map[string][]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fieldErrors[name] = append(fieldErrors[name], "The "+name+" field is required.")
	}
}

func setTokenCookie(w http.ResponseWriter, token string) {
	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Path:     "/",
	})
}
