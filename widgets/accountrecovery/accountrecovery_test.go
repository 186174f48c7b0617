package accountrecovery_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/events"
	"github.com/quillauth/embedkit/widgets"
	"github.com/quillauth/embedkit/widgets/accountrecovery"
	"github.com/stretchr/testify/require"
)

const validPhrase = "abandon ability able about above absent absorb abstract absurd abuse " +
	"access accident account accuse achieve acid acoustic acquire across act " +
	"action actor actress actual"

type providerStub struct {
	acceptPhrase bool
	verifyCalls  int
	resetCalls   int
	lastEmail    string
	lastPhrase   string
	lastToken    string
	lastPassword string
}

func newFixture(t *testing.T) (*accountrecovery.Widget, *providerStub) {
	t.Helper()

	stub := &providerStub{acceptPhrase: true}

	mux := http.NewServeMux()
	mux.HandleFunc(api.RouteValidateClient, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": true})
	})
	mux.HandleFunc(api.RouteRecoveryVerifyPhrase, func(w http.ResponseWriter, r *http.Request) {
		stub.verifyCalls++
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		stub.lastEmail = body["email"]
		stub.lastPhrase = body["phrase"]
		if !stub.acceptPhrase {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "phrase does not match"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"recovery_token": "rt-1"})
	})
	mux.HandleFunc(api.RouteRecoveryResetPassword, func(w http.ResponseWriter, r *http.Request) {
		stub.resetCalls++
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		stub.lastToken = body["recovery_token"]
		stub.lastPassword = body["new_password"]
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	apiClient, err := api.New(server.URL, "test-client-1")
	require.NoError(t, err)

	widget, err := accountrecovery.New(apiClient, widgets.Options{
		Origin: "https://host.example.com",
	})
	require.NoError(t, err)
	require.NoError(t, widget.Initialize(context.Background()))
	return widget, stub
}

func advanceToPhrase(t *testing.T, widget *accountrecovery.Widget) {
	t.Helper()
	require.NoError(t, widget.SubmitEmail("jay@example.com"))
	require.Equal(t, accountrecovery.StepPhrase, widget.CurrentStep())
}

func advanceToPassword(t *testing.T, widget *accountrecovery.Widget) {
	t.Helper()
	advanceToPhrase(t, widget)
	require.NoError(t, widget.SubmitPhrase(context.Background(), validPhrase))
	require.Equal(t, accountrecovery.StepPassword, widget.CurrentStep())
}

func TestFlowStartsAtEmail(t *testing.T) {
	widget, _ := newFixture(t)
	require.Equal(t, accountrecovery.StepEmail, widget.CurrentStep())
}

func TestEmailValidatedLocally(t *testing.T) {
	widget, _ := newFixture(t)

	require.NoError(t, widget.SubmitEmail("not-an-address"))
	require.Equal(t, accountrecovery.StepEmail, widget.CurrentStep())
	require.NotEmpty(t, widget.InlineError())

	require.NoError(t, widget.SubmitEmail("  jay@example.com  "))
	require.Equal(t, accountrecovery.StepPhrase, widget.CurrentStep())
	require.Equal(t, "jay@example.com", widget.Email())
}

func TestWordCountCheckedBeforeNetwork(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToPhrase(t, widget)

	require.NoError(t, widget.SubmitPhrase(context.Background(), "only three words"))
	require.Zero(t, stub.verifyCalls, "a malformed phrase never reaches the provider")
	require.Equal(t, accountrecovery.StepPhrase, widget.CurrentStep())
	require.NotEmpty(t, widget.InlineError())
}

func TestPhraseNormalizedBeforeSubmission(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToPhrase(t, widget)

	messy := "  " + strings.ToUpper(validPhrase) + "\n"
	require.NoError(t, widget.SubmitPhrase(context.Background(), messy))

	require.Equal(t, validPhrase, stub.lastPhrase)
	require.Equal(t, "jay@example.com", stub.lastEmail)
	require.Equal(t, accountrecovery.StepPassword, widget.CurrentStep())
}

func TestRejectedPhraseStaysOnPhraseStep(t *testing.T) {
	widget, stub := newFixture(t)
	stub.acceptPhrase = false
	advanceToPhrase(t, widget)

	require.NoError(t, widget.SubmitPhrase(context.Background(), validPhrase))
	require.Equal(t, accountrecovery.StepPhrase, widget.CurrentStep())
	require.NotEmpty(t, widget.InlineError())
	require.Equal(t, widgets.StateReady, widget.State(), "a rejected phrase never escalates to the error state")
}

func TestWeakPasswordRejectedLocally(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToPassword(t, widget)

	require.NoError(t, widget.SubmitNewPassword(context.Background(), "short", "short"))
	require.Zero(t, stub.resetCalls)
	require.Equal(t, accountrecovery.StepPassword, widget.CurrentStep())
	require.NotEmpty(t, widget.InlineError())
}

func TestConfirmationMismatchRejectedLocally(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToPassword(t, widget)

	require.NoError(t, widget.SubmitNewPassword(context.Background(), "NewPassw0rd", "Different1"))
	require.Zero(t, stub.resetCalls)
	require.Equal(t, accountrecovery.StepPassword, widget.CurrentStep())
}

func TestSuccessfulRecoverySpendsToken(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToPassword(t, widget)

	var completed int
	widget.Bus().On(events.TypeRecoveryComplete, func(events.Event) { completed++ })

	require.NoError(t, widget.SubmitNewPassword(context.Background(), "NewPassw0rd", "NewPassw0rd"))
	require.Equal(t, accountrecovery.StepSuccess, widget.CurrentStep())
	require.Equal(t, widgets.StateSuccess, widget.State())
	require.Equal(t, "rt-1", stub.lastToken)
	require.Equal(t, "NewPassw0rd", stub.lastPassword)
	require.Equal(t, 1, completed)
}

func TestBackFromPhraseOnly(t *testing.T) {
	widget, _ := newFixture(t)
	advanceToPhrase(t, widget)

	require.NoError(t, widget.Back())
	require.Equal(t, accountrecovery.StepEmail, widget.CurrentStep())

	// No back navigation from email or past the phrase step
	require.Error(t, widget.Back())
	advanceToPassword(t, widget)
	require.Error(t, widget.Back())
}

func TestRenderNeverExposesRecoveryToken(t *testing.T) {
	widget, _ := newFixture(t)
	advanceToPassword(t, widget)

	html, err := widget.Render()
	require.NoError(t, err)
	require.NotContains(t, string(html), "rt-1")
	require.Contains(t, string(html), "ek-step-password")
}
