package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog"

	"github.com/SlavaKuntsov/software-security/internal/application/auth"
	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/http/middleware"
)

const oauthProvider = "google"

// InitOAuthProviders registers the Google provider and session store. Call once at startup.
func InitOAuthProviders(callbackBaseURL, sessionSecret, googleClientID, googleClientSecret string) {
	if googleClientID != "" && googleClientSecret != "" {
		callbackURL := callbackBaseURL + "/api/v1/auth/google-response"
		goth.UseProviders(google.New(googleClientID, googleClientSecret, callbackURL, "email", "profile"))
	}
	if sessionSecret != "" {
		gothic.Store = sessions.NewCookieStore([]byte(sessionSecret))
	}
}

// OAuthHandler drives the Google login flow. The provider verifies the
// identity; the callback either logs in a matching account or registers a
// passwordless one.
type OAuthHandler struct {
	callback *auth.OAuthCallback
	cookies  *CookieManager
	emitter  ports.WebhookEmitter
	log      zerolog.Logger
}

func NewOAuthHandler(callback *auth.OAuthCallback, cookies *CookieManager, emitter ports.WebhookEmitter, log zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{callback: callback, cookies: cookies, emitter: emitter, log: log}
}

// GoogleLogin redirects to the Google consent screen.
func (h *OAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := goth.GetProvider(oauthProvider); err != nil {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "google oauth not configured")
		return
	}
	r2 := withProvider(r)
	authURL, err := gothic.GetAuthURL(w, r2)
	if err != nil {
		h.log.Error().Err(err).Msg("google auth url failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GoogleResponse completes the provider handshake and issues tokens.
func (h *OAuthHandler) GoogleResponse(w http.ResponseWriter, r *http.Request) {
	r2 := withProvider(r)
	gothUser, err := gothic.CompleteUserAuth(w, r2)
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "user.oauth", "", false, err.Error())
		middleware.RecordAuthAttempt("oauth", false)
		writeErr(w, http.StatusBadRequest, "", "google authentication failed")
		return
	}
	email := SanitizeEmail(gothUser.Email)
	if email == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid google credentials")
		return
	}
	result, err := h.callback.Execute(r.Context(), auth.OAuthUser{
		Email:     email,
		FirstName: gothUser.FirstName,
		LastName:  gothUser.LastName,
	})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "user.oauth", "", false, err.Error())
		middleware.RecordAuthAttempt("oauth", false)
		h.log.Error().Err(err).Msg("oauth callback failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditEmit(h.log, r, h.emitter, "user.oauth", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("oauth", true)
	h.cookies.Set(w, result.Tokens.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":         string(result.Mode),
		"access_token": result.Tokens.AccessToken,
		"user":         UserResponse(result.User),
	})
}

// withProvider clones the request with the provider query gothic expects.
func withProvider(r *http.Request) *http.Request {
	r2 := r.Clone(r.Context())
	q := r2.URL.Query()
	q.Set("provider", oauthProvider)
	r2.URL.RawQuery = q.Encode()
	return r2
}
