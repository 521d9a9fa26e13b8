package domain

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const (
	MaxTitleLength   = 200
	MaxContentLength = 10000
)

type Note struct {
	ID         string
	Title      string
	Content    string
	Tags       []string
	Priority   Priority
	AuthorID   string
	TenantID   string
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NormalizeTags trims every tag, drops empty ones and duplicates, keeping the
// order of first occurrence. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// NoteFilter selects notes inside one tenant. All set fields are AND-ed;
// Tags matches notes carrying any of the given tags.
type NoteFilter struct {
	TenantID string
	Search   string
	Priority Priority
	Tags     []string
	AuthorID string
	Archived bool

	Page  int
	Limit int
}

// Offset is the number of rows skipped for the current page.
func (f NoteFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalNotes  int
	HasNextPage bool
	HasPrevPage bool
}

// NewPagination computes the page envelope for total matches.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalNotes:  total,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
