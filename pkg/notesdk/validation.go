package notesdk

import (
	"strings"
)

const requiredReason = "is required"

// Validate checks the fields a register request cannot do without.
// Returns a map of field names to error messages, or nil if all fields are valid.
func (r RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = requiredReason
	}
	requireEmail(errs, r.Email)
	if r.Password == "" {
		errs["password"] = requiredReason
	}
	if strings.TrimSpace(r.CompanyName) == "" {
		errs["companyName"] = requiredReason
	}
	return orNil(errs)
}

func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	requireEmail(errs, r.Email)
	if r.Password == "" {
		errs["password"] = requiredReason
	}
	return orNil(errs)
}

func (r InviteRequest) Validate() map[string]string {
	errs := make(map[string]string)
	requireEmail(errs, r.Email)
	switch r.Role {
	case "", "Admin", "Member":
	default:
		errs["role"] = "must be Admin or Member"
	}
	return orNil(errs)
}

func (r CreateNoteRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.Title) == "" {
		errs["title"] = requiredReason
	}
	if strings.TrimSpace(r.Content) == "" {
		errs["content"] = requiredReason
	}
	if r.Priority != "" && !validPriority(r.Priority) {
		errs["priority"] = "must be low, medium or high"
	}
	return orNil(errs)
}

func (r UpdateNoteRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		errs["title"] = "must not be empty"
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		errs["content"] = "must not be empty"
	}
	if r.Priority != nil && !validPriority(*r.Priority) {
		errs["priority"] = "must be low, medium or high"
	}
	return orNil(errs)
}

func validPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func requireEmail(errs map[string]string, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = requiredReason
	case !strings.Contains(email, "@"):
		errs["email"] = "must be a valid email address"
	}
}

func orNil(errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
