package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store/drivers/sqlite"
	"github.com/aussiebroadwan/notes/pkg/cryptox"
	"github.com/aussiebroadwan/notes/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "notes-service")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type fixture struct {
	store   *sqlite.Store
	auth    *AuthService
	users   *UserService
	tenants *TenantService
	notes   *NoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	keys, err := jwtx.NewHS256([]byte(strings.Repeat("k", 32)), "notes-test")
	require.NoError(t, err)

	auth := &AuthService{Store: st, Signer: keys, Verifier: keys, Issuer: "notes-test"}
	return &fixture{
		store:   st,
		auth:    auth,
		users:   &UserService{Store: st, Auth: auth},
		tenants: &TenantService{Store: st},
		notes:   &NoteService{Store: st},
	}
}

// register creates a company and returns its admin principal.
func (f *fixture) register(t *testing.T, company, email string) domain.Principal {
	t.Helper()

	sess, err := f.users.Register(context.Background(), RegisterInput{
		Name:        "Ada Lovelace",
		Email:       email,
		Password:    "correct horse",
		CompanyName: company,
	})
	require.NoError(t, err)

	return principalOf(sess.User, sess.Tenant)
}

// invite adds a user to admin's tenant and returns its principal.
func (f *fixture) invite(t *testing.T, admin domain.Principal, email string, role domain.Role) domain.Principal {
	t.Helper()

	user, _, err := f.users.Invite(context.Background(), admin, InviteInput{Email: email, Role: role})
	require.NoError(t, err)

	return domain.Principal{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		TenantID:   admin.TenantID,
		TenantSlug: admin.TenantSlug,
	}
}

func (f *fixture) createNote(t *testing.T, p domain.Principal, title string) NoteView {
	t.Helper()

	v, err := f.notes.Create(context.Background(), p, CreateNoteInput{Title: title, Content: "body of " + title})
	require.NoError(t, err)
	return v
}

func principalOf(u domain.User, t domain.Tenant) domain.Principal {
	return domain.Principal{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		TenantID:   t.ID,
		TenantSlug: t.Slug,
	}
}

func ptr[T any](v T) *T { return &v }
