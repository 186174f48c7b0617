// Package accountrecovery implements the account-recovery widget: an
// unauthenticated flow that trades a recovery phrase for a password reset.
package accountrecovery

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/events"
	"github.com/quillauth/embedkit/users"
	"github.com/quillauth/embedkit/widgets"
)

// Step is the widget's position in the recovery flow.
type Step string

const (
	StepEmail    Step = "email"
	StepPhrase   Step = "phrase"
	StepPassword Step = "password"
	StepSuccess  Step = "success"
)

// PhraseWordCount is the fixed length of a provider recovery phrase.
const PhraseWordCount = 24

// Widget walks a locked-out user from their email address through phrase
// verification to a fresh password. No access token is involved at any
// point; the short-lived recovery token from the phrase step authorizes the
// reset.
type Widget struct {
	*widgets.Base

	mu            sync.Mutex
	step          Step
	email         string
	recoveryToken string
	inlineError   string
}

// New constructs the widget on its email step.
func New(apiClient *api.Client, opts widgets.Options) (*Widget, error) {
	base, err := widgets.NewBase("account-recovery", apiClient, opts)
	if err != nil {
		return nil, errors.Wrap(err, "[accountrecovery.New] NewBase")
	}

	w := &Widget{Base: base, step: StepEmail}
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

// Email returns the address entered on the first step.
func (w *Widget) Email() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.email
}

// SubmitEmail records the account's address and advances to the phrase
// step. Purely local: the provider learns nothing until a phrase is
// submitted alongside it.
func (w *Widget) SubmitEmail(email string) error {
	if !w.Alive() {
		return widgets.ErrDestroyed
	}
	if w.CurrentStep() != StepEmail {
		return errors.Errorf("[SubmitEmail] not on email step")
	}

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		w.setInlineError("Enter the email address for your account.")
		return nil
	}

	w.mu.Lock()
	w.email = email
	w.step = StepPhrase
	w.inlineError = ""
	w.mu.Unlock()

	w.EmitStepChange(string(StepPhrase))
	return nil
}

// SubmitPhrase verifies the recovery phrase against the account. The word
// count is checked locally first; only a well-formed phrase reaches the
// provider. A rejected phrase stays on the phrase step.
func (w *Widget) SubmitPhrase(ctx context.Context, phrase string) error {
	if !w.Alive() {
		return widgets.ErrDestroyed
	}
	if w.CurrentStep() != StepPhrase {
		return errors.Errorf("[SubmitPhrase] not on phrase step")
	}

	words := strings.Fields(strings.ToLower(phrase))
	if len(words) != PhraseWordCount {
		w.setInlineError("A recovery phrase has exactly 24 words. Check for missing or extra words.")
		return nil
	}

	w.SetLoading()
	token, err := w.APIClient().VerifyRecoveryPhraseForAccount(ctx, w.Email(), strings.Join(words, " "))
	if err != nil {
		if autherrors.IsCode(err, autherrors.CodeAPIError) {
			// The provider rejected the phrase; the user can correct it
			w.SetReady()
			w.setInlineError("That phrase doesn't match this account. Check the words and their order.")
			return nil
		}
		return w.Fail(err)
	}

	w.mu.Lock()
	w.recoveryToken = token
	w.step = StepPassword
	w.inlineError = ""
	w.mu.Unlock()

	w.SetReady()
	w.EmitStepChange(string(StepPassword))
	return nil
}

// SubmitNewPassword applies the password policy and the confirmation match
// locally, then spends the recovery token on the reset. Success is
// terminal.
func (w *Widget) SubmitNewPassword(ctx context.Context, password, confirmation string) error {
	if !w.Alive() {
		return widgets.ErrDestroyed
	}
	if w.CurrentStep() != StepPassword {
		return errors.Errorf("[SubmitNewPassword] not on password step")
	}

	if err := users.ValidatePasswordStrength(password); err != nil {
		w.setInlineError(err.Error())
		return nil
	}
	if password != confirmation {
		w.setInlineError("The passwords don't match.")
		return nil
	}

	w.mu.Lock()
	token := w.recoveryToken
	w.mu.Unlock()

	w.SetLoading()
	if err := w.APIClient().ResetPassword(ctx, token, password); err != nil {
		return w.Fail(err)
	}

	w.mu.Lock()
	w.step = StepSuccess
	w.recoveryToken = ""
	w.inlineError = ""
	w.mu.Unlock()

	w.Succeed()
	w.Emit(events.Event{Type: events.TypeRecoveryComplete, WidgetID: w.ID()})
	w.EmitStepChange(string(StepSuccess))
	return nil
}

// Back walks one step towards the email step. The password step is a point
// of no return: its recovery token was issued for this exact attempt.
func (w *Widget) Back() error {
	w.mu.Lock()
	switch w.step {
	case StepPhrase:
		w.step = StepEmail
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

func (w *Widget) setInlineError(message string) {
	w.mu.Lock()
	w.inlineError = message
	w.mu.Unlock()
}
