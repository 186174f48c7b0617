// Package recoveryphrase implements the recovery-phrase setup widget: a
// five-step flow that re-authenticates the user, displays a fresh 24-word
// phrase, and verifies the user actually saved it.
package recoveryphrase

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/events"
	"github.com/quillauth/embedkit/widgets"
)

// Step is the widget's position in the setup flow.
type Step string

const (
	StepIntro    Step = "intro"
	StepPassword Step = "password"
	StepDisplay  Step = "display"
	StepVerify   Step = "verify"
	StepSuccess  Step = "success"
)

// PhraseWordCount is the fixed length of a provider recovery phrase.
const PhraseWordCount = 24

// Config holds the widget-specific settings.
type Config struct {
	// AllowCopy enables the copy-to-clipboard affordance. Default true.
	AllowCopy *bool

	// AllowDownload enables the download-as-file affordance. Default true.
	AllowDownload *bool

	// DownloadFileName names the downloaded phrase file.
	// Default "recovery-phrase.txt".
	DownloadFileName string
}

func (c *Config) applyDefaults() {
	if c.AllowCopy == nil {
		allow := true
		c.AllowCopy = &allow
	}
	if c.AllowDownload == nil {
		allow := true
		c.AllowDownload = &allow
	}
	if c.DownloadFileName == "" {
		c.DownloadFileName = "recovery-phrase.txt"
	}
}

// Widget is the recovery-phrase setup flow.
type Widget struct {
	*widgets.Base
	config Config

	mu           sync.Mutex
	step         Step
	phrase       string
	words        []string
	indices      []int
	acknowledged bool
	inlineError  string
}

// New constructs the widget in its intro step.
func New(apiClient *api.Client, config Config, opts widgets.Options) (*Widget, error) {
	config.applyDefaults()

	base, err := widgets.NewBase("recovery-phrase", apiClient, opts)
	if err != nil {
		return nil, errors.Wrap(err, "[recoveryphrase.New] NewBase")
	}

	w := &Widget{
		Base:   base,
		config: config,
		step:   StepIntro,
	}
	base.SetRenderer(w)
	return w, nil
}

// CurrentStep returns the widget's position in the flow.
func (w *Widget) CurrentStep() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// InlineError returns the message shown on the current step, if any.
func (w *Widget) InlineError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inlineError
}

// Start advances intro → password.
func (w *Widget) Start() error {
	return w.transition(StepIntro, StepPassword)
}

// Back returns password → intro. Once a phrase exists there is no way back
// to the password step: the phrase must be verified or the widget destroyed.
func (w *Widget) Back() error {
	w.mu.Lock()
	switch w.step {
	case StepPassword:
		w.step = StepIntro
	case StepVerify:
		w.step = StepDisplay
	default:
		step := w.step
		w.mu.Unlock()
		return errors.Errorf("[Back] no back navigation from step %q", step)
	}
	w.inlineError = ""
	step := w.step
	w.mu.Unlock()

	w.EmitStepChange(string(step))
	return nil
}

// SubmitPassword re-authenticates the user's password server-side and, on
// success, receives the phrase plus the sampled verification indices and
// advances to display. A rejected password stays on the password step with
// an inline message.
func (w *Widget) SubmitPassword(ctx context.Context, password string) error {
	if !w.Alive() {
		return widgets.ErrDestroyed
	}
	if w.CurrentStep() != StepPassword {
		return errors.Errorf("[SubmitPassword] not on password step")
	}
	if strings.TrimSpace(password) == "" {
		w.setInlineError("Enter your password to continue.")
		return nil
	}

	w.SetLoading()
	setup, err := w.APIClient().SetupRecoveryPhrase(ctx, w.TokenAccessor(), password)
	if err != nil {
		authErr := autherrors.Normalize(err)
		if authErr.Code == autherrors.CodeAPIError && (authErr.Status == 401 || authErr.Status == 403) {
			// Wrong password: recover locally on the same step
			w.SetReady()
			w.setInlineError("That password is incorrect.")
			return nil
		}
		return w.Fail(err)
	}

	words := strings.Fields(setup.Phrase)
	if len(words) != PhraseWordCount {
		return w.Fail(autherrors.Newf(autherrors.CodeAPIError, "provider returned a %d-word phrase", len(words)))
	}

	w.mu.Lock()
	w.phrase = setup.Phrase
	w.words = words
	w.indices = setup.VerificationIndices
	w.step = StepDisplay
	w.inlineError = ""
	w.mu.Unlock()

	w.SetReady()
	w.EmitStepChange(string(StepDisplay))
	return nil
}

// Phrase returns the words for display. Empty before the password step
// completes.
func (w *Widget) Phrase() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.words...)
}

// VerificationIndices returns the sampled word positions the user must
// re-type on the verify step.
func (w *Widget) VerificationIndices() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]int(nil), w.indices...)
}

// Acknowledge records the "I saved it" checkbox state.
func (w *Widget) Acknowledge(saved bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.acknowledged = saved
	if saved {
		w.inlineError = ""
	}
}

// AdvanceToVerify moves display → verify; refused until the user has
// acknowledged saving the phrase.
func (w *Widget) AdvanceToVerify() error {
	w.mu.Lock()
	if w.step != StepDisplay {
		w.mu.Unlock()
		return errors.Errorf("[AdvanceToVerify] not on display step")
	}
	if !w.acknowledged {
		w.inlineError = "Confirm you saved your recovery phrase before continuing."
		w.mu.Unlock()
		return nil
	}
	w.step = StepVerify
	w.inlineError = ""
	w.mu.Unlock()

	w.EmitStepChange(string(StepVerify))
	return nil
}

// SubmitVerification checks the user's answers for every sampled index,
// case-insensitively and trimmed. Any mismatch keeps the widget on the
// verify step with an inline message; only a full match confirms the phrase
// with the provider and completes the flow.
func (w *Widget) SubmitVerification(ctx context.Context, answers map[int]string) error {
	if !w.Alive() {
		return widgets.ErrDestroyed
	}
	if w.CurrentStep() != StepVerify {
		return errors.Errorf("[SubmitVerification] not on verify step")
	}

	w.mu.Lock()
	indices := append([]int(nil), w.indices...)
	words := append([]string(nil), w.words...)
	w.mu.Unlock()

	for _, index := range indices {
		if index < 0 || index >= len(words) {
			continue
		}
		expected := strings.ToLower(strings.TrimSpace(words[index]))
		got := strings.ToLower(strings.TrimSpace(answers[index]))
		if got != expected {
			w.setInlineError("One or more words don't match your phrase. Check them and try again.")
			return nil
		}
	}

	w.SetLoading()
	if err := w.APIClient().ConfirmRecoveryPhrase(ctx, w.TokenAccessor()); err != nil {
		return w.Fail(err)
	}

	w.mu.Lock()
	w.step = StepSuccess
	w.inlineError = ""
	w.mu.Unlock()

	w.Succeed()
	w.Emit(events.Event{Type: events.TypePhraseCreated})
	w.EmitStepChange(string(StepSuccess))
	return nil
}

// PhraseText returns the phrase as plain text for copy-to-clipboard.
// Pure side-effect payload: no state-machine impact.
func (w *Widget) PhraseText() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !*w.config.AllowCopy {
		return "", errors.New("[PhraseText] copy disabled by configuration")
	}
	if w.phrase == "" {
		return "", errors.New("[PhraseText] no phrase available")
	}
	return w.phrase, nil
}

// DownloadPayload returns the file name and contents for the download
// affordance. No state-machine impact.
func (w *Widget) DownloadPayload() (name, contents string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !*w.config.AllowDownload {
		return "", "", errors.New("[DownloadPayload] download disabled by configuration")
	}
	if w.phrase == "" {
		return "", "", errors.New("[DownloadPayload] no phrase available")
	}
	return w.config.DownloadFileName, w.phrase + "\n", nil
}

func (w *Widget) transition(from, to Step) error {
	w.mu.Lock()
	if w.step != from {
		step := w.step
		w.mu.Unlock()
		return errors.Errorf("[transition] expected step %q, on %q", from, step)
	}
	w.step = to
	w.inlineError = ""
	w.mu.Unlock()

	w.EmitStepChange(string(to))
	return nil
}

func (w *Widget) setInlineError(message string) {
	w.mu.Lock()
	w.inlineError = message
	w.mu.Unlock()
}
