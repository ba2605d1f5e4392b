package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/SlavaKuntsov/software-security/internal/application/auth"
	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/http/middleware"
)

// AuthHandler serves registration, login, token refresh and logout. Access
// tokens go in the response body, refresh tokens only in the cookie.
type AuthHandler struct {
	register *auth.Register
	login    *auth.Login
	refresh  *auth.Refresh
	logout   *auth.Logout
	users    ports.UsersRepository
	cookies  *CookieManager
	lockout  ports.LoginLockoutStore
	emitter  ports.WebhookEmitter
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(register *auth.Register, login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, users ports.UsersRepository, cookies *CookieManager, lockout ports.LoginLockoutStore, emitter ports.WebhookEmitter, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register: register,
		login:    login,
		refresh:  refresh,
		logout:   logout,
		users:    users,
		cookies:  cookies,
		lockout:  lockout,
		emitter:  emitter,
		validate: validator.New(),
		log:      log,
	}
}

// registrationRequest allows an empty password: such accounts carry no hash
// and can only sign in through OAuth.
type registrationRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"omitempty,min=8,max=128"`
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

func (h *AuthHandler) Registration(w http.ResponseWriter, r *http.Request) {
	var body registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" {
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeValidation, "invalid email")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Email:       email,
		Password:    password,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		DateOfBirth: body.DateOfBirth,
	})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "user.registration", "", false, err.Error())
		middleware.RecordAuthAttempt("registration", false)
		if errors.Is(err, domerrors.ErrUserExists) {
			writeErr(w, http.StatusConflict, ErrCodeConflict, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("registration failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditEmit(h.log, r, h.emitter, "user.registration", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("registration", true)
	h.cookies.Set(w, result.Tokens.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": result.Tokens.AccessToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeValidation, "invalid email or password length")
		return
	}
	if h.lockout != nil {
		if locked, retryAfter := h.lockout.IsLocked(r.Context(), email); locked {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeErr(w, http.StatusTooManyRequests, ErrCodeAccountLocked, "too many failed attempts")
			return
		}
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{Email: email, Password: password})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "user.login", "", false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		switch {
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, domerrors.ErrInvalidCredentials):
			if h.lockout != nil {
				h.lockout.RecordFailure(r.Context(), email)
			}
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
		default:
			h.log.Error().Err(err).Msg("login failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	if h.lockout != nil {
		h.lockout.RecordSuccess(r.Context(), email)
	}
	AuditEmit(h.log, r, h.emitter, "user.login", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	h.cookies.Set(w, result.Tokens.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": result.Tokens.AccessToken,
	})
}

// RefreshToken exchanges the refresh-token cookie for a new pair. The rotated
// refresh token replaces the cookie; replaying the old value fails.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.cookies.Read(r)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, "refresh token missing")
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{RefreshToken: token})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "auth.refresh", "", false, err.Error())
		middleware.RecordAuthAttempt("refresh", false)
		switch {
		case errors.Is(err, domerrors.ErrInvalidToken):
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, err.Error())
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			h.log.Error().Err(err).Msg("refresh failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditEmit(h.log, r, h.emitter, "auth.refresh", "", true, "")
	middleware.RecordAuthAttempt("refresh", true)
	h.cookies.Set(w, result.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": result.AccessToken,
	})
}

// Authorize returns the authenticated user's profile.
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), id.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("authorize lookup failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if user == nil {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse(user))
}

// Unauthorize revokes the caller's refresh token and clears the cookie.
func (h *AuthHandler) Unauthorize(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	h.cookies.Clear(w)
	if err := h.logout.Execute(r.Context(), id.UserID); err != nil {
		AuditEmit(h.log, r, h.emitter, "user.logout", id.UserID.String(), false, err.Error())
		if errors.Is(err, domerrors.ErrTokenNotFound) {
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("logout failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditEmit(h.log, r, h.emitter, "user.logout", id.UserID.String(), true, "")
	w.WriteHeader(http.StatusOK)
}
