package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/aussiebroadwan/notes/pkg/notesdk"
)

// TenantsHandler serves the /tenants/{slug} routes. The router guarantees
// slug is the caller's own tenant.
type TenantsHandler struct {
	TenantService *service.TenantService
	UserService   *service.UserService
}

// HandleGet godoc
//
//	@Summary		Tenant information
//	@Description	Returns the caller's tenant with its active note count and whether another note fits the plan.
//	@Tags			Tenants
//	@Produce		json
//	@Param			slug	path		string	true	"Tenant slug"
//	@Success		200		{object}	notesdk.TenantResponse
//	@Failure		401		{object}	notesdk.ErrorResponse
//	@Failure		403		{object}	notesdk.ErrorResponse	"slug is not the caller's tenant"
//	@Security		BearerAuth
//	@Router			/tenants/{slug} [get]
func (h *TenantsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	info, err := h.TenantService.Info(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.TenantResponse{
		Message: "Tenant information retrieved successfully",
		Tenant:  toTenantUsage(info),
	})
}

// HandleUpgrade godoc
//
//	@Summary		Upgrade to Pro
//	@Description	Moves the tenant from the Free plan to Pro, lifting the note cap. There is no billing and no downgrade. Admin only.
//	@Tags			Tenants
//	@Produce		json
//	@Param			slug	path		string	true	"Tenant slug"
//	@Success		200		{object}	notesdk.UpgradeResponse
//	@Failure		400		{object}	notesdk.ErrorResponse	"already_pro"
//	@Failure		403		{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/tenants/{slug}/upgrade [post]
func (h *TenantsHandler) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.TenantService.Upgrade(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.UpgradeResponse{
		Message: "Tenant successfully upgraded to Pro plan",
		Tenant: notesdk.UpgradedTenant{
			Tenant:     toTenant(tenant),
			UpgradedAt: tenant.UpdatedAt.UTC().Truncate(time.Millisecond),
		},
	})
}

// HandleUsers godoc
//
//	@Summary		Tenant users
//	@Description	Lists the active users of the tenant. Admin only.
//	@Tags			Tenants
//	@Produce		json
//	@Param			slug	path		string	true	"Tenant slug"
//	@Success		200		{object}	notesdk.TenantUsersResponse
//	@Failure		403		{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/tenants/{slug}/users [get]
func (h *TenantsHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	tenant, users, err := h.TenantService.Users(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]notesdk.User, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}

	summary := toTenant(tenant)
	httpx.WriteJSON(w, http.StatusOK, notesdk.TenantUsersResponse{
		Message: "Tenant users retrieved successfully",
		Tenant:  notesdk.Tenant{Name: summary.Name, Slug: summary.Slug},
		Users:   out,
	})
}

// HandleDeactivateUser godoc
//
//	@Summary		Deactivate a user
//	@Description	Soft-deletes a user of the tenant. Their tokens stop working immediately. Admins cannot deactivate themselves.
//	@Tags			Tenants
//	@Produce		json
//	@Param			slug	path		string	true	"Tenant slug"
//	@Param			id		path		string	true	"User ID"
//	@Success		200		{object}	notesdk.DeactivateUserResponse
//	@Failure		400		{object}	notesdk.ErrorResponse
//	@Failure		403		{object}	notesdk.ErrorResponse
//	@Failure		404		{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/tenants/{slug}/users/{id} [delete]
func (h *TenantsHandler) HandleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.UserService.Deactivate(r.Context(), mustPrincipal(r), id); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.DeactivateUserResponse{
		Message:           "User deactivated successfully",
		DeactivatedUserID: id,
	})
}
