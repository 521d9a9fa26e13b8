package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/stretchr/testify/require"
)

func TestCanCreateNote(t *testing.T) {
	free := domain.Tenant{Plan: domain.PlanFree, MaxNotes: domain.FreeMaxNotes}
	pro := domain.Tenant{Plan: domain.PlanPro, MaxNotes: domain.Unlimited}

	tests := []struct {
		name   string
		tenant domain.Tenant
		active int
		want   bool
	}{
		{"free empty", free, 0, true},
		{"free below cap", free, 2, true},
		{"free at cap", free, 3, false},
		{"free over cap", free, 7, false},
		{"pro at free cap", pro, 3, true},
		{"pro many", pro, 10000, true},
		{"free plan with unlimited sentinel", domain.Tenant{Plan: domain.PlanFree, MaxNotes: domain.Unlimited}, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.tenant.CanCreateNote(tt.active))
		})
	}
}

func TestMaxNotesFor(t *testing.T) {
	require.Equal(t, 3, domain.MaxNotesFor(domain.PlanFree))
	require.Equal(t, domain.Unlimited, domain.MaxNotesFor(domain.PlanPro))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Acme":                 "acme",
		"Acme Corp":            "acme-corp",
		"  Acme   Corp  ":      "acme-corp",
		"Acme & Co.":           "acme-co",
		"Globex\tInc":          "globex-inc",
		"Ünïcode Company 42":   "ncode-company-42",
		"!!!":                  "",
		strings.Repeat("a", 60): strings.Repeat("a", 50),
	}

	for in, want := range tests {
		require.Equal(t, want, domain.Slugify(in), "input %q", in)
	}

	// A cut that lands on a separator does not leave a trailing dash.
	long := strings.Repeat("a", 49) + " b"
	require.Equal(t, strings.Repeat("a", 49), domain.Slugify(long))
}

func TestNormalizeTags(t *testing.T) {
	require.Equal(t, []string{"work", "urgent"}, domain.NormalizeTags([]string{" work ", "", "urgent", "work", "   "}))
	require.NotNil(t, domain.NormalizeTags(nil))
	require.Empty(t, domain.NormalizeTags(nil))
}

func TestPriorityValid(t *testing.T) {
	require.True(t, domain.PriorityLow.Valid())
	require.True(t, domain.PriorityMedium.Valid())
	require.True(t, domain.PriorityHigh.Valid())
	require.False(t, domain.Priority("urgent").Valid())
	require.False(t, domain.Priority("").Valid())
}

func TestNewPagination(t *testing.T) {
	p := domain.NewPagination(1, 10, 0)
	require.Equal(t, domain.Pagination{CurrentPage: 1}, p)

	p = domain.NewPagination(2, 10, 25)
	require.Equal(t, 3, p.TotalPages)
	require.True(t, p.HasNextPage)
	require.True(t, p.HasPrevPage)

	p = domain.NewPagination(3, 10, 25)
	require.False(t, p.HasNextPage)
}

func TestSplitNameAndDisplayName(t *testing.T) {
	first, last := domain.SplitName("  Ada  King Lovelace ")
	require.Equal(t, "Ada", first)
	require.Equal(t, "King Lovelace", last)

	first, last = domain.SplitName("")
	require.Empty(t, first)
	require.Empty(t, last)

	require.Equal(t, "Ada King", domain.User{FirstName: "Ada", LastName: "King"}.DisplayName())
	require.Equal(t, "ada", domain.User{Email: "ada@acme.test"}.DisplayName())
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "ada@acme.test", domain.NormalizeEmail("  Ada@ACME.test "))
}

func TestNowIsMillisecondPrecision(t *testing.T) {
	now := domain.Now()
	require.Equal(t, time.UTC, now.Location())
	require.Zero(t, now.Nanosecond()%int(time.Millisecond))
}
