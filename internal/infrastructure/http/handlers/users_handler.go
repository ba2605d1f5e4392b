package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/application/users"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/http/middleware"
)

// UsersHandler serves profile updates, account deletion and the admin list.
type UsersHandler struct {
	update   *users.UpdateUser
	delete   *users.DeleteUser
	repo     ports.UsersRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewUsersHandler(update *users.UpdateUser, del *users.DeleteUser, repo ports.UsersRepository, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{
		update:   update,
		delete:   del,
		repo:     repo,
		validate: validator.New(),
		log:      log,
	}
}

// UserResponse is the public JSON shape of a user. The password hash never
// leaves the server.
func UserResponse(u *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"id":            u.ID.String(),
		"email":         u.Email,
		"role":          u.Role.String(),
		"auth_type":     u.AuthType.String(),
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"date_of_birth": u.DateOfBirth,
	}
}

// Update applies a partial profile update to the caller's own account.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	var body struct {
		FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
		LastName    *string `json:"last_name" validate:"omitempty,max=100"`
		DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}
	if body.FirstName != nil {
		*body.FirstName = SanitizeName(*body.FirstName)
	}
	if body.LastName != nil {
		*body.LastName = SanitizeName(*body.LastName)
	}
	user, err := h.update.Execute(r.Context(), users.UpdateUserInput{
		ID:          id.UserID,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		DateOfBirth: body.DateOfBirth,
	})
	if err != nil {
		if errors.Is(err, domerrors.ErrUserNotFound) {
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("user update failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse(user))
}

// Delete removes a user by id. Admin only; an admin cannot delete their own
// account this way, and the last admin cannot be deleted at all.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	targetID, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	if targetID == id.UserID {
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeSelfDelete, domerrors.ErrSelfDelete.Error())
		return
	}
	if err := h.delete.Execute(r.Context(), targetID); err != nil {
		AuditLog(h.log, r, "user.delete", targetID.String(), false, err.Error())
		switch {
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, domerrors.ErrLastAdmin):
			writeErr(w, http.StatusUnprocessableEntity, ErrCodeLastAdmin, err.Error())
		default:
			h.log.Error().Err(err).Msg("user delete failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "user.delete", targetID.String(), true, "")
	w.WriteHeader(http.StatusOK)
}

// DeleteMe removes the caller's own account.
func (h *UsersHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	if err := h.delete.Execute(r.Context(), id.UserID); err != nil {
		AuditLog(h.log, r, "user.delete_me", id.UserID.String(), false, err.Error())
		switch {
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, domerrors.ErrLastAdmin):
			writeErr(w, http.StatusUnprocessableEntity, ErrCodeLastAdmin, err.Error())
		default:
			h.log.Error().Err(err).Msg("user self delete failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "user.delete_me", id.UserID.String(), true, "")
	w.WriteHeader(http.StatusOK)
}

// List returns every user. Admin only.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("user list failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	out := make([]map[string]interface{}, 0, len(all))
	for _, u := range all {
		out = append(out, UserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}
