package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/aussiebroadwan/notes/pkg/notesdk"
)

type NotesHandler struct {
	NoteService *service.NoteService
}

// HandleList godoc
//
//	@Summary		List notes
//	@Description	Lists the notes of the caller's tenant, newest first. Archived notes are only returned with archived=true.
//	@Tags			Notes
//	@Produce		json
//	@Param			search		query		string	false	"Case-insensitive substring of title or content"
//	@Param			priority	query		string	false	"low, medium or high"
//	@Param			tags		query		string	false	"Comma separated, matches any"
//	@Param			author		query		string	false	"Author user ID"
//	@Param			archived	query		bool	false	"List archived notes instead"
//	@Param			page		query		int		false	"Page number, from 1"
//	@Param			limit		query		int		false	"Page size, 1 to 100"
//	@Success		200			{object}	notesdk.NoteListResponse
//	@Failure		400			{object}	notesdk.ErrorResponse
//	@Failure		401			{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *NotesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	in, errs := parseListQuery(r.URL.Query())
	if errs != nil {
		writeValidation(w, errs)
		return
	}

	views, page, err := h.NoteService.List(r.Context(), mustPrincipal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	notes := make([]notesdk.Note, 0, len(views))
	for _, v := range views {
		notes = append(notes, toNote(v))
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.NoteListResponse{
		Message:    "Notes retrieved successfully",
		Notes:      notes,
		Pagination: toPagination(page),
	})
}

// HandleCreate godoc
//
//	@Summary		Create a note
//	@Description	Creates a note in the caller's tenant. Free tenants are capped at 3 active notes.
//	@Tags			Notes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		notesdk.CreateNoteRequest	true	"Note"
//	@Success		201		{object}	notesdk.NoteResponse
//	@Failure		400		{object}	notesdk.ErrorResponse
//	@Failure		401		{object}	notesdk.ErrorResponse
//	@Failure		403		{object}	notesdk.ErrorResponse	"limit_reached with currentNotes, maxNotes and subscriptionPlan"
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *NotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req notesdk.CreateNoteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	v, err := h.NoteService.Create(r.Context(), mustPrincipal(r), service.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Priority: domain.Priority(req.Priority),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, notesdk.NoteResponse{
		Message: "Note created successfully",
		Note:    toNote(v),
	})
}

// HandleGet godoc
//
//	@Summary		Get a note
//	@Tags			Notes
//	@Produce		json
//	@Param			id	path		string	true	"Note ID"
//	@Success		200	{object}	notesdk.NoteResponse
//	@Failure		400	{object}	notesdk.ErrorResponse	"invalid_identifier"
//	@Failure		404	{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.NoteService.Get(r.Context(), mustPrincipal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.NoteResponse{
		Message: "Note retrieved successfully",
		Note:    toNote(v),
	})
}

// HandleUpdate godoc
//
//	@Summary		Update a note
//	@Description	Partial update, omitted fields are left unchanged. Members may only update their own notes. Restoring an archived note counts against the plan cap.
//	@Tags			Notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Note ID"
//	@Param			request	body		notesdk.UpdateNoteRequest	true	"Fields to change"
//	@Success		200		{object}	notesdk.NoteResponse
//	@Failure		400		{object}	notesdk.ErrorResponse
//	@Failure		403		{object}	notesdk.ErrorResponse
//	@Failure		404		{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *NotesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req notesdk.UpdateNoteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	v, err := h.NoteService.Update(r.Context(), mustPrincipal(r), r.PathValue("id"), service.UpdateNoteInput{
		Title:      req.Title,
		Content:    req.Content,
		Tags:       toTags(req.Tags),
		Priority:   toPriority(req.Priority),
		IsArchived: req.IsArchived,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.NoteResponse{
		Message: "Note updated successfully",
		Note:    toNote(v),
	})
}

// HandleDelete godoc
//
//	@Summary		Delete a note
//	@Description	Permanently removes a note. Members may only delete their own notes.
//	@Tags			Notes
//	@Produce		json
//	@Param			id	path		string	true	"Note ID"
//	@Success		200	{object}	notesdk.DeleteNoteResponse
//	@Failure		400	{object}	notesdk.ErrorResponse
//	@Failure		403	{object}	notesdk.ErrorResponse
//	@Failure		404	{object}	notesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *NotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := h.NoteService.Delete(r.Context(), mustPrincipal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.DeleteNoteResponse{
		Message:       "Note deleted successfully",
		DeletedNoteID: id,
	})
}

// parseListQuery maps query parameters onto the list input. Numbers and
// booleans that do not parse are field errors; range checks are left to the
// service.
func parseListQuery(q url.Values) (service.ListNotesInput, map[string]string) {
	in := service.ListNotesInput{
		Search:   q.Get("search"),
		Priority: domain.Priority(strings.ToLower(strings.TrimSpace(q.Get("priority")))),
		AuthorID: strings.TrimSpace(q.Get("author")),
	}
	errs := map[string]string{}

	// tags=a,b and tags=a&tags=b are both accepted
	for _, raw := range q["tags"] {
		in.Tags = append(in.Tags, strings.Split(raw, ",")...)
	}

	if raw := q.Get("archived"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs["archived"] = "must be true or false"
		}
		in.Archived = b
	}

	intParam := func(name string, dst *int) {
		raw := q.Get(name)
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs[name] = "must be an integer"
			return
		}
		*dst = n
	}
	intParam("page", &in.Page)
	intParam("limit", &in.Limit)

	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}
