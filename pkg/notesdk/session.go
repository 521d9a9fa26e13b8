package notesdk

import (
	"context"
	"net/http"
	"net/url"
	"sync"
)

// Session is an authenticated handle on the API. Tokens are not refreshed;
// once the server answers token_expired, log in again. Safe for concurrent
// use.
type Session struct {
	client *Client

	mu    sync.RWMutex
	token string
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken swaps the bearer token, for example after a fresh login.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) do(ctx context.Context, method, path string, body, target any, expected int) error {
	return s.client.do(ctx, method, path, s.Token(), body, target, expected)
}

// ============================================================================
// Profile and Users
// ============================================================================

func (s *Session) Profile(ctx context.Context) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := s.do(ctx, http.MethodGet, "/profile", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invite adds a user to the session's tenant. Requires Admin.
func (s *Session) Invite(ctx context.Context, req InviteRequest) (*InviteResponse, error) {
	var out InviteResponse
	if err := s.do(ctx, http.MethodPost, "/users/invite", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Tenants
// ============================================================================

func (s *Session) Tenant(ctx context.Context, slug string) (*TenantResponse, error) {
	var out TenantResponse
	if err := s.do(ctx, http.MethodGet, "/tenants/"+url.PathEscape(slug), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upgrade moves the tenant to the Pro plan. Requires Admin.
func (s *Session) Upgrade(ctx context.Context, slug string) (*UpgradeResponse, error) {
	var out UpgradeResponse
	if err := s.do(ctx, http.MethodPost, "/tenants/"+url.PathEscape(slug)+"/upgrade", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// TenantUsers lists the active users of the tenant. Requires Admin.
func (s *Session) TenantUsers(ctx context.Context, slug string) (*TenantUsersResponse, error) {
	var out TenantUsersResponse
	if err := s.do(ctx, http.MethodGet, "/tenants/"+url.PathEscape(slug)+"/users", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateUser soft-deletes a user of the tenant. Requires Admin.
func (s *Session) DeactivateUser(ctx context.Context, slug, userID string) (*DeactivateUserResponse, error) {
	var out DeactivateUserResponse
	path := "/tenants/" + url.PathEscape(slug) + "/users/" + url.PathEscape(userID)
	if err := s.do(ctx, http.MethodDelete, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Notes
// ============================================================================

func (s *Session) ListNotes(ctx context.Context, params ListNotesParams) (*NoteListResponse, error) {
	path := "/notes"
	if q := params.Values().Encode(); q != "" {
		path += "?" + q
	}

	var out NoteListResponse
	if err := s.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateNote(ctx context.Context, req CreateNoteRequest) (*Note, error) {
	var out NoteResponse
	if err := s.do(ctx, http.MethodPost, "/notes", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Note, nil
}

func (s *Session) GetNote(ctx context.Context, id string) (*Note, error) {
	var out NoteResponse
	if err := s.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Note, nil
}

func (s *Session) UpdateNote(ctx context.Context, id string, req UpdateNoteRequest) (*Note, error) {
	var out NoteResponse
	if err := s.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Note, nil
}

// DeleteNote removes a note and returns its ID.
func (s *Session) DeleteNote(ctx context.Context, id string) (string, error) {
	var out DeleteNoteResponse
	if err := s.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.DeletedNoteID, nil
}
