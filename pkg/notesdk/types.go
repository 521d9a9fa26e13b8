package notesdk

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// Error Responses
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the machine readable code, see the ErrorCode constants
	Error string `json:"error"`

	// Message is a human readable description
	Message string `json:"message"`

	// Details holds field errors of a validation_error
	Details map[string]string `json:"details,omitempty"`

	// Limit payload, only set on limit_reached
	CurrentNotes     *int   `json:"currentNotes,omitempty"`
	MaxNotes         *int   `json:"maxNotes,omitempty"`
	SubscriptionPlan string `json:"subscriptionPlan,omitempty"`
}

// ============================================================================
// Tenants and Users
// ============================================================================

type Tenant struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	SubscriptionPlan string `json:"subscriptionPlan,omitempty"`

	// MaxNotes is -1 for unlimited
	MaxNotes int `json:"maxNotes,omitempty"`
}

// TenantUsage is a tenant with its active note count.
type TenantUsage struct {
	Tenant
	CurrentNotes       int  `json:"currentNotes"`
	CanCreateMoreNotes bool `json:"canCreateMoreNotes"`
}

type UpgradedTenant struct {
	Tenant
	UpgradedAt time.Time `json:"upgradedAt"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	Tenant    *Tenant   `json:"tenant,omitempty"`
}

// ============================================================================
// Users
// ============================================================================

// RegisterRequest creates a company and its first Admin.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type InviteRequest struct {
	Email string `json:"email"`

	// Role is Admin or Member, Member when empty
	Role      string `json:"role,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type InviteResponse struct {
	Message           string `json:"message"`
	User              User   `json:"user"`
	TemporaryPassword string `json:"temporaryPassword"`
}

type ProfileResponse struct {
	Message    string      `json:"message"`
	User       User        `json:"user"`
	TenantInfo TenantUsage `json:"tenantInfo"`
}

// ============================================================================
// Tenant Operations
// ============================================================================

type TenantResponse struct {
	Message string      `json:"message"`
	Tenant  TenantUsage `json:"tenant"`
}

type UpgradeResponse struct {
	Message string         `json:"message"`
	Tenant  UpgradedTenant `json:"tenant"`
}

type TenantUsersResponse struct {
	Message string `json:"message"`
	Tenant  Tenant `json:"tenant"`
	Users   []User `json:"users"`
}

type DeactivateUserResponse struct {
	Message           string `json:"message"`
	DeactivatedUserID string `json:"deactivatedUserId"`
}

// ============================================================================
// Notes
// ============================================================================

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Author struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Priority   string    `json:"priority"`
	IsArchived bool      `json:"isArchived"`
	Author     Author    `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
	Priority string   `json:"priority,omitempty"`
}

// UpdateNoteRequest is a partial update; nil fields are left unchanged.
type UpdateNoteRequest struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Priority   *string   `json:"priority,omitempty"`
	IsArchived *bool     `json:"isArchived,omitempty"`
}

type NoteResponse struct {
	Message string `json:"message"`
	Note    Note   `json:"note"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalNotes  int  `json:"totalNotes"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type NoteListResponse struct {
	Message    string     `json:"message"`
	Notes      []Note     `json:"notes"`
	Pagination Pagination `json:"pagination"`
}

type DeleteNoteResponse struct {
	Message       string `json:"message"`
	DeletedNoteID string `json:"deletedNoteId"`
}

// ListNotesParams are the query parameters of GET /notes. Zero values are
// omitted and take the server defaults.
type ListNotesParams struct {
	Search   string
	Priority string
	Tags     []string // matches notes carrying any of them
	Author   string
	Archived bool
	Page     int
	Limit    int
}

// Values encodes the parameters as a query string.
func (p ListNotesParams) Values() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Priority != "" {
		v.Set("priority", p.Priority)
	}
	if len(p.Tags) > 0 {
		v.Set("tags", strings.Join(p.Tags, ","))
	}
	if p.Author != "" {
		v.Set("author", p.Author)
	}
	if p.Archived {
		v.Set("archived", "true")
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// ============================================================================
// System
// ============================================================================

type HealthResponse struct {
	Status  string  `json:"status"`
	Uptime  float64 `json:"uptime"` // seconds
	Version string  `json:"version"`
}

type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type IndexResponse struct {
	Message   string                       `json:"message"`
	Version   string                       `json:"version"`
	Endpoints map[string]map[string]string `json:"endpoints"`
}
