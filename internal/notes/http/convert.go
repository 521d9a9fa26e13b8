package http

import (
	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/aussiebroadwan/notes/pkg/notesdk"
)

func toTenant(t domain.Tenant) notesdk.Tenant {
	return notesdk.Tenant{
		ID:               t.ID,
		Name:             t.Name,
		Slug:             t.Slug,
		SubscriptionPlan: string(t.Plan),
		MaxNotes:         t.MaxNotes,
	}
}

func toTenantUsage(info service.TenantInfo) notesdk.TenantUsage {
	return notesdk.TenantUsage{
		Tenant:             toTenant(info.Tenant),
		CurrentNotes:       info.CurrentNotes,
		CanCreateMoreNotes: info.CanCreate,
	}
}

func toUser(u domain.User) notesdk.User {
	return notesdk.User{
		ID:        u.ID,
		Name:      u.DisplayName(),
		Email:     u.Email,
		Role:      string(u.Role),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// toUserWithTenant nests the tenant summary the way register and login
// return it.
func toUserWithTenant(u domain.User, t domain.Tenant) notesdk.User {
	out := toUser(u)
	tenant := toTenant(t)
	out.Tenant = &tenant
	return out
}

func toNote(v service.NoteView) notesdk.Note {
	return notesdk.Note{
		ID:         v.ID,
		Title:      v.Title,
		Content:    v.Content,
		Tags:       v.Tags,
		Priority:   string(v.Priority),
		IsArchived: v.IsArchived,
		Author: notesdk.Author{
			ID:        v.Author.ID,
			Email:     v.Author.Email,
			FirstName: v.Author.FirstName,
			LastName:  v.Author.LastName,
			Role:      string(v.Author.Role),
		},
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toPagination(p domain.Pagination) notesdk.Pagination {
	return notesdk.Pagination{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalNotes:  p.TotalNotes,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
	}
}

func toTags(tags *[]string) *[]string {
	if tags == nil {
		return nil
	}
	out := domain.NormalizeTags(*tags)
	return &out
}

func toPriority(p *string) *domain.Priority {
	if p == nil {
		return nil
	}
	out := domain.Priority(*p)
	return &out
}
