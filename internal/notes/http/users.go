package http

import (
	"net/http"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/aussiebroadwan/notes/pkg/notesdk"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleRegister godoc
//
//	@Summary		Register a company
//	@Description	Creates a tenant on the Free plan together with its first Admin user and returns a session token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		notesdk.RegisterRequest	true	"Company and admin details"
//	@Success		201		{object}	notesdk.AuthResponse
//	@Failure		400		{object}	notesdk.ErrorResponse	"validation_error or conflict"
//	@Failure		429		{object}	notesdk.ErrorResponse
//	@Router			/users/register [post]
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req notesdk.RegisterRequest
	if !decodeValid(w, r, &req) {
		return
	}

	sess, err := h.UserService.Register(r.Context(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, notesdk.AuthResponse{
		Message: "Registration successful",
		Token:   sess.Token,
		User:    toUserWithTenant(sess.User, sess.Tenant),
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Authenticates with email and password and returns a session token valid for 24 hours.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		notesdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	notesdk.AuthResponse
//	@Failure		400		{object}	notesdk.ErrorResponse	"invalid_credentials or tenant_deactivated"
//	@Failure		429		{object}	notesdk.ErrorResponse
//	@Router			/users/login [post]
func (h *UsersHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req notesdk.LoginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	sess, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.AuthResponse{
		Message: "Login successful",
		Token:   sess.Token,
		User:    toUserWithTenant(sess.User, sess.Tenant),
	})
}

// HandleInvite godoc
//
//	@Summary		Invite a user
//	@Description	Adds a user to the caller's tenant with a generated temporary password. Admin only.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		notesdk.InviteRequest	true	"Invitee"
//	@Success		201		{object}	notesdk.InviteResponse
//	@Failure		400		{object}	notesdk.ErrorResponse	"validation_error or conflict"
//	@Failure		401		{object}	notesdk.ErrorResponse
//	@Failure		403		{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/invite [post]
func (h *UsersHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req notesdk.InviteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, temp, err := h.UserService.Invite(r.Context(), mustPrincipal(r), service.InviteInput{
		Email:     req.Email,
		Role:      domain.Role(req.Role),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := toUser(user)
	if tenant, ok := tenantFromContext(r.Context()); ok {
		out = toUserWithTenant(user, tenant)
	}

	httpx.WriteJSON(w, http.StatusCreated, notesdk.InviteResponse{
		Message:           "User invited successfully",
		User:              out,
		TemporaryPassword: temp,
	})
}

// ProfileHandler godoc
//
//	@Summary		Current user
//	@Description	Returns the caller and a usage snapshot of their tenant.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	notesdk.ProfileResponse
//	@Failure		401	{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/profile [get]
func ProfileHandler(users *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, info, err := users.Profile(r.Context(), mustPrincipal(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, notesdk.ProfileResponse{
			Message:    "Profile accessed successfully",
			User:       toUser(user),
			TenantInfo: toTenantUsage(info),
		})
	}
}
