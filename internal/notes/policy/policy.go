// Package policy holds the authorization table for the notes service.
//
// Every role/action pair maps to a scope. A pair missing from the table is
// denied. Cross-tenant access is always denied before the table is consulted,
// so a scope of ScopeTenant never reaches past the caller's own tenant.
package policy

import "github.com/aussiebroadwan/notes/internal/notes/domain"

type Action string

const (
	NoteCreate Action = "note:create"
	NoteRead   Action = "note:read"
	NoteUpdate Action = "note:update"
	NoteDelete Action = "note:delete"

	TenantRead    Action = "tenant:read"
	TenantUpgrade Action = "tenant:upgrade"
	TenantUsers   Action = "tenant:users"

	UserInvite     Action = "user:invite"
	UserDeactivate Action = "user:deactivate"
)

type Scope int

const (
	// ScopeDeny rejects the action outright.
	ScopeDeny Scope = iota
	// ScopeOwn allows the action on resources the caller authored.
	ScopeOwn
	// ScopeTenant allows the action on any resource of the caller's tenant.
	ScopeTenant
)

type rule struct {
	role   domain.Role
	action Action
}

var table = map[rule]Scope{
	{domain.RoleAdmin, NoteCreate}:     ScopeTenant,
	{domain.RoleAdmin, NoteRead}:       ScopeTenant,
	{domain.RoleAdmin, NoteUpdate}:     ScopeTenant,
	{domain.RoleAdmin, NoteDelete}:     ScopeTenant,
	{domain.RoleAdmin, TenantRead}:     ScopeTenant,
	{domain.RoleAdmin, TenantUpgrade}:  ScopeTenant,
	{domain.RoleAdmin, TenantUsers}:    ScopeTenant,
	{domain.RoleAdmin, UserInvite}:     ScopeTenant,
	{domain.RoleAdmin, UserDeactivate}: ScopeTenant,

	{domain.RoleMember, NoteCreate}: ScopeTenant,
	{domain.RoleMember, NoteRead}:   ScopeTenant,
	{domain.RoleMember, NoteUpdate}: ScopeOwn,
	{domain.RoleMember, NoteDelete}: ScopeOwn,
	{domain.RoleMember, TenantRead}: ScopeTenant,
}

// ScopeOf returns the scope granted to role for action.
func ScopeOf(role domain.Role, action Action) Scope {
	return table[rule{role, action}]
}

// Allowed evaluates the table for a resource inside the caller's tenant.
func Allowed(role domain.Role, action Action, isOwner bool) bool {
	switch ScopeOf(role, action) {
	case ScopeTenant:
		return true
	case ScopeOwn:
		return isOwner
	default:
		return false
	}
}

// Can reports whether the principal may perform an action that is not tied
// to a specific resource, such as inviting a user.
func Can(p domain.Principal, action Action) bool {
	return ScopeOf(p.Role, action) != ScopeDeny
}

// CanAccess evaluates action against a resource owned by ownerID in tenantID.
func CanAccess(p domain.Principal, action Action, tenantID, ownerID string) bool {
	if p.TenantID == "" || p.TenantID != tenantID {
		return false
	}
	return Allowed(p.Role, action, ownerID != "" && ownerID == p.UserID)
}

// CanModify is the note ownership rule: same tenant, and either an Admin or
// the note's author.
func CanModify(p domain.Principal, n domain.Note) bool {
	return CanAccess(p, NoteUpdate, n.TenantID, n.AuthorID)
}

// CanDelete mirrors CanModify for deletion.
func CanDelete(p domain.Principal, n domain.Note) bool {
	return CanAccess(p, NoteDelete, n.TenantID, n.AuthorID)
}
