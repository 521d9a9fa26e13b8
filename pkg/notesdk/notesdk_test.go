package notesdk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListNotesParamsValues(t *testing.T) {
	require.Empty(t, ListNotesParams{}.Values().Encode())

	v := ListNotesParams{
		Search:   "plan",
		Priority: PriorityHigh,
		Tags:     []string{"a", "b"},
		Archived: true,
		Page:     2,
		Limit:    5,
	}.Values()

	require.Equal(t, "plan", v.Get("search"))
	require.Equal(t, "high", v.Get("priority"))
	require.Equal(t, "a,b", v.Get("tags"))
	require.Equal(t, "true", v.Get("archived"))
	require.Equal(t, "2", v.Get("page"))
	require.Equal(t, "5", v.Get("limit"))
	require.False(t, v.Has("author"))
}

func TestValidate(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		require.Nil(t, RegisterRequest{Name: "A", Email: "a@b.c", Password: "x", CompanyName: "C"}.Validate())

		errs := RegisterRequest{Email: "nope"}.Validate()
		require.Contains(t, errs, "name")
		require.Contains(t, errs, "email")
		require.Contains(t, errs, "password")
		require.Contains(t, errs, "companyName")
	})

	t.Run("invite role", func(t *testing.T) {
		require.Nil(t, InviteRequest{Email: "a@b.c"}.Validate())
		require.Nil(t, InviteRequest{Email: "a@b.c", Role: "Admin"}.Validate())
		require.Contains(t, InviteRequest{Email: "a@b.c", Role: "Owner"}.Validate(), "role")
	})

	t.Run("create note", func(t *testing.T) {
		require.Nil(t, CreateNoteRequest{Title: "t", Content: "c"}.Validate())
		errs := CreateNoteRequest{Title: " ", Priority: "urgent"}.Validate()
		require.Len(t, errs, 3)
	})

	t.Run("update note", func(t *testing.T) {
		require.Nil(t, UpdateNoteRequest{}.Validate())
		empty, bad := "", "urgent"
		errs := UpdateNoteRequest{Title: &empty, Priority: &bad}.Validate()
		require.Contains(t, errs, "title")
		require.Contains(t, errs, "priority")
	})
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notes":
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			require.JSONEq(t, `{"title":"t","content":"c"}`, string(body))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"limit_reached","message":"Note limit reached","currentNotes":3,"maxNotes":3,"subscriptionPlan":"Free"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL + "/")
	session := client.NewSession("tok")

	_, err := session.CreateNote(context.Background(), CreateNoteRequest{Title: "t", Content: "c"})
	require.ErrorIs(t, err, ErrLimitReached)
	require.False(t, errors.Is(err, ErrForbidden))

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.Equal(t, 3, apiErr.CurrentNotes)
	require.Equal(t, 3, apiErr.MaxNotes)
	require.Equal(t, "Free", apiErr.SubscriptionPlan)

	_, err = client.Health(context.Background())
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}
