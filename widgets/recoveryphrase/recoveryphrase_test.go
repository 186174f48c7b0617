package recoveryphrase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/events"
	"github.com/quillauth/embedkit/widgets"
	"github.com/quillauth/embedkit/widgets/recoveryphrase"
	"github.com/stretchr/testify/require"
)

var testPhraseWords = []string{
	"abandon", "ability", "able", "about", "above", "absent",
	"absorb", "abstract", "absurd", "abuse", "access", "accident",
	"account", "accuse", "achieve", "acid", "acoustic", "acquire",
	"across", "act", "action", "actor", "actress", "actual",
}

type providerStub struct {
	setupStatus  int
	setupCalls   int
	confirmCalls int
	indices      []int
	lastPassword string
}

func newFixture(t *testing.T) (*recoveryphrase.Widget, *providerStub) {
	t.Helper()

	stub := &providerStub{setupStatus: http.StatusOK, indices: []int{2, 7, 19}}

	mux := http.NewServeMux()
	mux.HandleFunc(api.RouteValidateClient, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": true})
	})
	mux.HandleFunc(api.RoutePhraseSetup, func(w http.ResponseWriter, r *http.Request) {
		stub.setupCalls++
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		stub.lastPassword = body["password"]
		if stub.setupStatus != http.StatusOK {
			w.WriteHeader(stub.setupStatus)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid password"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.PhraseSetup{
			Phrase:              strings.Join(testPhraseWords, " "),
			VerificationIndices: stub.indices,
		})
	})
	mux.HandleFunc(api.RoutePhraseVerify, func(w http.ResponseWriter, r *http.Request) {
		stub.confirmCalls++
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	apiClient, err := api.New(server.URL, "test-client-1")
	require.NoError(t, err)

	widget, err := recoveryphrase.New(apiClient, recoveryphrase.Config{}, widgets.Options{
		Origin:        "https://host.example.com",
		TokenAccessor: func(ctx context.Context) (string, error) { return "at-1", nil },
	})
	require.NoError(t, err)
	require.NoError(t, widget.Initialize(context.Background()))
	return widget, stub
}

func advanceToDisplay(t *testing.T, widget *recoveryphrase.Widget) {
	t.Helper()
	require.NoError(t, widget.Start())
	require.NoError(t, widget.SubmitPassword(context.Background(), "Passw0rd"))
	require.Equal(t, recoveryphrase.StepDisplay, widget.CurrentStep())
}

func advanceToVerify(t *testing.T, widget *recoveryphrase.Widget) {
	t.Helper()
	advanceToDisplay(t, widget)
	widget.Acknowledge(true)
	require.NoError(t, widget.AdvanceToVerify())
	require.Equal(t, recoveryphrase.StepVerify, widget.CurrentStep())
}

func correctAnswers(indices []int) map[int]string {
	answers := make(map[int]string, len(indices))
	for _, index := range indices {
		answers[index] = testPhraseWords[index]
	}
	return answers
}

func TestFlowStartsAtIntro(t *testing.T) {
	widget, _ := newFixture(t)
	require.Equal(t, recoveryphrase.StepIntro, widget.CurrentStep())
	require.Equal(t, widgets.StateReady, widget.State())
}

func TestPasswordStepReceivesPhrase(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToDisplay(t, widget)

	require.Equal(t, "Passw0rd", stub.lastPassword)
	require.Equal(t, testPhraseWords, widget.Phrase())
	require.Equal(t, []int{2, 7, 19}, widget.VerificationIndices())
}

func TestWrongPasswordStaysInline(t *testing.T) {
	widget, stub := newFixture(t)
	stub.setupStatus = http.StatusUnauthorized

	require.NoError(t, widget.Start())
	require.NoError(t, widget.SubmitPassword(context.Background(), "wrong"))

	require.Equal(t, recoveryphrase.StepPassword, widget.CurrentStep())
	require.NotEmpty(t, widget.InlineError())
	require.Equal(t, widgets.StateReady, widget.State(), "wrong password never escalates to the error state")
}

func TestEmptyPasswordNeverReachesNetwork(t *testing.T) {
	widget, stub := newFixture(t)
	require.NoError(t, widget.Start())

	require.NoError(t, widget.SubmitPassword(context.Background(), "   "))
	require.Zero(t, stub.setupCalls)
	require.NotEmpty(t, widget.InlineError())
}

func TestDisplayRequiresAcknowledgment(t *testing.T) {
	widget, _ := newFixture(t)
	advanceToDisplay(t, widget)

	require.NoError(t, widget.AdvanceToVerify())
	require.Equal(t, recoveryphrase.StepDisplay, widget.CurrentStep())
	require.NotEmpty(t, widget.InlineError())

	widget.Acknowledge(true)
	require.NoError(t, widget.AdvanceToVerify())
	require.Equal(t, recoveryphrase.StepVerify, widget.CurrentStep())
}

func TestVerificationSucceedsWithMatchingWords(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToVerify(t, widget)

	var created int
	widget.Bus().On(events.TypePhraseCreated, func(events.Event) { created++ })

	require.NoError(t, widget.SubmitVerification(context.Background(), correctAnswers(stub.indices)))
	require.Equal(t, recoveryphrase.StepSuccess, widget.CurrentStep())
	require.Equal(t, widgets.StateSuccess, widget.State())
	require.Equal(t, 1, stub.confirmCalls)
	require.Equal(t, 1, created)
}

func TestVerificationIsCaseInsensitiveAndTrimmed(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToVerify(t, widget)

	answers := correctAnswers(stub.indices)
	for index, word := range answers {
		answers[index] = "  " + strings.ToUpper(word) + " "
	}

	require.NoError(t, widget.SubmitVerification(context.Background(), answers))
	require.Equal(t, recoveryphrase.StepSuccess, widget.CurrentStep())
}

func TestSingleMismatchKeepsVerifyStep(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToVerify(t, widget)

	answers := correctAnswers(stub.indices)
	answers[stub.indices[1]] = "wrongword"

	require.NoError(t, widget.SubmitVerification(context.Background(), answers))
	require.Equal(t, recoveryphrase.StepVerify, widget.CurrentStep())
	require.NotEmpty(t, widget.InlineError())
	require.Zero(t, stub.confirmCalls, "mismatch never reaches the provider")
}

func TestMissingAnswerKeepsVerifyStep(t *testing.T) {
	widget, stub := newFixture(t)
	advanceToVerify(t, widget)

	answers := correctAnswers(stub.indices)
	delete(answers, stub.indices[0])

	require.NoError(t, widget.SubmitVerification(context.Background(), answers))
	require.Equal(t, recoveryphrase.StepVerify, widget.CurrentStep())
}

func TestBackNavigation(t *testing.T) {
	widget, _ := newFixture(t)

	require.NoError(t, widget.Start())
	require.NoError(t, widget.Back())
	require.Equal(t, recoveryphrase.StepIntro, widget.CurrentStep())

	// No back navigation from intro
	require.Error(t, widget.Back())

	advanceToVerify(t, widget)
	require.NoError(t, widget.Back())
	require.Equal(t, recoveryphrase.StepDisplay, widget.CurrentStep())

	// Once the phrase exists there is no way back to the password step
	require.NoError(t, widget.AdvanceToVerify())
	require.NoError(t, widget.Back())
	require.Equal(t, recoveryphrase.StepDisplay, widget.CurrentStep())
}

func TestCopyAndDownloadHaveNoStateImpact(t *testing.T) {
	widget, _ := newFixture(t)
	advanceToDisplay(t, widget)

	text, err := widget.PhraseText()
	require.NoError(t, err)
	require.Equal(t, strings.Join(testPhraseWords, " "), text)

	name, contents, err := widget.DownloadPayload()
	require.NoError(t, err)
	require.Equal(t, "recovery-phrase.txt", name)
	require.Equal(t, text+"\n", contents)

	require.Equal(t, recoveryphrase.StepDisplay, widget.CurrentStep())
}

func TestPhraseUnavailableBeforePasswordStep(t *testing.T) {
	widget, _ := newFixture(t)

	_, err := widget.PhraseText()
	require.Error(t, err)
	_, _, err = widget.DownloadPayload()
	require.Error(t, err)
}

func TestRenderShowsCurrentStepOnly(t *testing.T) {
	widget, _ := newFixture(t)

	html, err := widget.Render()
	require.NoError(t, err)
	require.Contains(t, string(html), "ek-step-intro")
	require.NotContains(t, string(html), "ek-phrase")

	advanceToDisplay(t, widget)
	html, err = widget.Render()
	require.NoError(t, err)
	require.Contains(t, string(html), "ek-step-display")
	require.Contains(t, string(html), testPhraseWords[0])
}

func TestServerErrorEscalates(t *testing.T) {
	widget, stub := newFixture(t)
	stub.setupStatus = http.StatusInternalServerError

	require.NoError(t, widget.Start())
	err := widget.SubmitPassword(context.Background(), "Passw0rd")
	require.True(t, autherrors.IsCode(err, autherrors.CodeAPIError))
	require.Equal(t, widgets.StateError, widget.State())
}
