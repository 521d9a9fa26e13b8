package domain

import (
	"strings"
	"time"
	"unicode"
)

type Plan string

const (
	PlanFree Plan = "Free"
	PlanPro  Plan = "Pro"
)

const (
	// FreeMaxNotes is the active-note cap of a Free tenant.
	FreeMaxNotes = 3

	// Unlimited is the MaxNotes sentinel for tenants without a cap.
	Unlimited = -1

	// MaxSlugLength bounds derived slugs.
	MaxSlugLength = 50
)

func (p Plan) Valid() bool { return p == PlanFree || p == PlanPro }

// MaxNotesFor returns the note cap that goes with a plan.
func MaxNotesFor(p Plan) int {
	if p == PlanPro {
		return Unlimited
	}
	return FreeMaxNotes
}

type Tenant struct {
	ID        string
	Name      string
	Slug      string // unique, lowercase, immutable
	Plan      Plan
	MaxNotes  int // Unlimited (-1) for Pro
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanCreateNote reports whether a tenant with active non-archived notes may
// add one more.
func (t Tenant) CanCreateNote(active int) bool {
	if t.Plan == PlanPro || t.MaxNotes < 0 {
		return true
	}
	return active < t.MaxNotes
}

// Slugify derives a tenant slug from a company name: lowercase, anything but
// letters, digits and whitespace dropped, whitespace runs joined with "-",
// capped at MaxSlugLength.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingDash = true
		}
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
