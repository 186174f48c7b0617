package security_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/events"
	"github.com/quillauth/embedkit/widgets"
	"github.com/quillauth/embedkit/widgets/security"
	"github.com/stretchr/testify/require"
)

type providerStub struct {
	mu     sync.Mutex
	status api.SecurityStatus
}

func (s *providerStub) set(status api.SecurityStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *providerStub) get() api.SecurityStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, config security.Config) (*security.Widget, *providerStub) {
	t.Helper()

	stub := &providerStub{}

	mux := http.NewServeMux()
	mux.HandleFunc(api.RouteValidateClient, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": true})
	})
	mux.HandleFunc(api.RouteSecurityStatus, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(stub.get())
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	apiClient, err := api.New(server.URL, "test-client-1")
	require.NoError(t, err)

	widget, err := security.New(apiClient, config, widgets.Options{
		Origin:        "https://host.example.com",
		TokenAccessor: func(ctx context.Context) (string, error) { return "at-1", nil },
	}, security.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return widget, stub
}

func recentChange() *time.Time {
	changed := fixedNow.Add(-24 * time.Hour)
	return &changed
}

func staleChange() *time.Time {
	changed := fixedNow.Add(-365 * 24 * time.Hour)
	return &changed
}

func TestScoreZeroWhenNothingDone(t *testing.T) {
	widget, _ := newFixture(t, security.Config{})
	require.NoError(t, widget.Initialize(context.Background()))
	require.Zero(t, widget.Score())
	require.Equal(t, "Verify your email address.", widget.Recommendation())
}

func TestScoreFullWhenEverythingDone(t *testing.T) {
	widget, stub := newFixture(t, security.Config{})
	stub.set(api.SecurityStatus{
		EmailVerified:     true,
		PhraseActive:      true,
		PhraseVerified:    true,
		PasswordChangedAt: recentChange(),
	})

	require.NoError(t, widget.Initialize(context.Background()))
	require.Equal(t, 100, widget.Score())
	require.Empty(t, widget.Recommendation())
}

func TestDefaultWeightContributions(t *testing.T) {
	tests := []struct {
		name   string
		status api.SecurityStatus
		score  int
	}{
		{"email only", api.SecurityStatus{EmailVerified: true}, 30},
		{"phrase active only", api.SecurityStatus{PhraseActive: true}, 30},
		{"phrase verified only", api.SecurityStatus{PhraseVerified: true}, 20},
		{"recent password only", api.SecurityStatus{PasswordChangedAt: recentChange()}, 20},
		{"email and phrase", api.SecurityStatus{EmailVerified: true, PhraseActive: true}, 60},
		{"stale password scores nothing", api.SecurityStatus{PasswordChangedAt: staleChange()}, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			widget, stub := newFixture(t, security.Config{})
			stub.set(test.status)
			require.NoError(t, widget.Initialize(context.Background()))
			require.Equal(t, test.score, widget.Score())
		})
	}
}

func TestScoreSaturatesAt100(t *testing.T) {
	widget, stub := newFixture(t, security.Config{
		Weights: security.Weights{EmailVerified: 90, PhraseActive: 90, PhraseVerified: 90, PasswordRecent: 90},
	})
	stub.set(api.SecurityStatus{EmailVerified: true, PhraseActive: true, PhraseVerified: true})

	require.NoError(t, widget.Initialize(context.Background()))
	require.Equal(t, 100, widget.Score())
}

func TestScoreMonotoneInSatisfiedFactors(t *testing.T) {
	widget, stub := newFixture(t, security.Config{})
	stub.set(api.SecurityStatus{EmailVerified: true})
	require.NoError(t, widget.Initialize(context.Background()))
	before := widget.Score()

	stub.set(api.SecurityStatus{EmailVerified: true, PhraseActive: true})
	require.NoError(t, widget.Refresh(context.Background()))
	require.GreaterOrEqual(t, widget.Score(), before)
}

func TestRefreshUpdatesInPlace(t *testing.T) {
	widget, stub := newFixture(t, security.Config{})
	require.NoError(t, widget.Initialize(context.Background()))
	id := widget.ID()

	var refreshed []int
	widget.Bus().On(events.TypeStatusRefreshed, func(event events.Event) {
		refreshed = append(refreshed, event.Data["score"].(int))
	})

	stub.set(api.SecurityStatus{EmailVerified: true, PhraseActive: true})
	require.NoError(t, widget.Refresh(context.Background()))

	require.Equal(t, id, widget.ID(), "refresh never reconstructs the widget")
	require.Equal(t, []int{60}, refreshed)
	require.Equal(t, 60, widget.Score())
	require.Equal(t, widgets.StateReady, widget.State())
}

func TestRecommendationOrder(t *testing.T) {
	widget, stub := newFixture(t, security.Config{})
	require.NoError(t, widget.Initialize(context.Background()))

	stub.set(api.SecurityStatus{EmailVerified: true})
	require.NoError(t, widget.Refresh(context.Background()))
	require.Equal(t, "Set up a recovery phrase.", widget.Recommendation())

	stub.set(api.SecurityStatus{EmailVerified: true, PhraseActive: true})
	require.NoError(t, widget.Refresh(context.Background()))
	require.Equal(t, "Verify your recovery phrase.", widget.Recommendation())

	stub.set(api.SecurityStatus{EmailVerified: true, PhraseActive: true, PhraseVerified: true})
	require.NoError(t, widget.Refresh(context.Background()))
	require.Equal(t, "Change your password.", widget.Recommendation())
}

func TestRenderShowsFactors(t *testing.T) {
	widget, stub := newFixture(t, security.Config{})
	stub.set(api.SecurityStatus{EmailVerified: true})
	require.NoError(t, widget.Initialize(context.Background()))

	html, err := widget.Render()
	require.NoError(t, err)
	require.Contains(t, string(html), `aria-valuenow="30"`)
	require.Contains(t, string(html), "ek-factor-done")
	require.Contains(t, string(html), "ek-factor-missing")
}
