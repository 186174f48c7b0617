// Package emailverify implements the email-verification widget: a prompt
// that nags until the account's email address is confirmed, polling the
// provider in the background and resolving itself once verification lands.
package emailverify

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/events"
	"github.com/quillauth/embedkit/widgets"
)

// Mode selects the widget's presentation wrapper. The flow is identical in
// all three.
type Mode string

const (
	ModeBanner Mode = "banner"
	ModeModal  Mode = "modal"
	ModeInline Mode = "inline"
)

// Config holds the widget-specific settings.
type Config struct {
	// Mode selects the presentation wrapper. Default ModeBanner.
	Mode Mode

	// PollInterval is how often the provider is asked whether verification
	// happened. Default 5s.
	PollInterval time.Duration

	// DisablePolling turns off the background status checks; Refresh still
	// works.
	DisablePolling bool

	// DisableAutoHide keeps the success state visible instead of hiding
	// the widget after AutoHideDelay.
	DisableAutoHide bool

	// ResendCooldownSeconds is how long the resend affordance stays blocked
	// after a send. Default 60.
	ResendCooldownSeconds int

	// AutoHideDelay is how long the success state stays visible before the
	// widget hides itself. Default 3s.
	AutoHideDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeBanner
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.ResendCooldownSeconds <= 0 {
		c.ResendCooldownSeconds = 60
	}
	if c.AutoHideDelay <= 0 {
		c.AutoHideDelay = 3 * time.Second
	}
}

// Widget is the email-verification prompt.
type Widget struct {
	*widgets.Base
	config Config

	mu          sync.Mutex
	email       string
	verified    bool
	cooldown    int
	resendCount int
	inlineNote  string
	stopPolling func()
}

// New constructs the widget. Nothing happens until Initialize.
func New(apiClient *api.Client, config Config, opts widgets.Options) (*Widget, error) {
	config.applyDefaults()

	base, err := widgets.NewBase("email-verify", apiClient, opts)
	if err != nil {
		return nil, errors.Wrap(err, "[emailverify.New] NewBase")
	}

	w := &Widget{Base: base, config: config}
	base.SetRenderer(w)
	return w, nil
}

// Initialize validates the client, checks the verification status once, and
// starts background polling. An already-verified account short-circuits to
// the success state without ever prompting.
func (w *Widget) Initialize(ctx context.Context) error {
	if err := w.Base.Initialize(ctx); err != nil {
		return err
	}

	status, err := w.APIClient().EmailVerificationStatus(ctx, w.TokenAccessor())
	if err != nil {
		return w.Fail(err)
	}

	w.mu.Lock()
	w.email = status.Email
	w.verified = status.Verified
	w.mu.Unlock()

	if status.Verified {
		w.Succeed()
		return nil
	}

	if !w.config.DisablePolling {
		w.mu.Lock()
		w.stopPolling = w.StartTicker(w.config.PollInterval, w.pollOnce)
		w.mu.Unlock()
	}
	w.StartTicker(time.Second, w.tickCooldown)
	return nil
}

// Mode returns the presentation wrapper in use.
func (w *Widget) Mode() Mode { return w.config.Mode }

// Email returns the address awaiting verification.
func (w *Widget) Email() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.email
}

// Verified reports whether the provider has confirmed the address.
func (w *Widget) Verified() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.verified
}

// CooldownRemaining returns the seconds until Resend is allowed again.
// Zero means a resend is available.
func (w *Widget) CooldownRemaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cooldown
}

// ResendCount returns how many verification emails this widget instance has
// requested.
func (w *Widget) ResendCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resendCount
}

// InlineNote returns the short status message shown under the prompt.
func (w *Widget) InlineNote() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inlineNote
}

// Resend asks the provider for a fresh verification email and arms the
// cooldown. A call during the cooldown is dropped: no network request, and
// the remaining time is left untouched.
func (w *Widget) Resend(ctx context.Context) error {
	if !w.Alive() {
		return widgets.ErrDestroyed
	}

	w.mu.Lock()
	if w.verified || w.cooldown > 0 {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	if err := w.APIClient().ResendVerificationEmail(ctx, w.TokenAccessor()); err != nil {
		if autherrors.IsCode(err, autherrors.CodeNetworkError) {
			// Leave the affordance available for an immediate retry
			w.setInlineNote("Couldn't reach the server. Check your connection and try again.")
			return nil
		}
		return w.Fail(err)
	}

	w.mu.Lock()
	w.resendCount++
	w.cooldown = w.config.ResendCooldownSeconds
	w.inlineNote = "Verification email sent."
	w.mu.Unlock()
	return nil
}

// Refresh checks the verification status immediately, outside the polling
// cadence. Hosts wire this to an "I've verified" button.
func (w *Widget) Refresh(ctx context.Context) error {
	if !w.Alive() {
		return widgets.ErrDestroyed
	}
	return w.checkStatus(ctx)
}

func (w *Widget) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Transient poll failures are tolerated; the next tick tries again
	if err := w.checkStatus(ctx); err != nil {
		logger := w.Logger()
		logger.Warn().Err(err).Msg("email verification poll failed")
	}
}

func (w *Widget) checkStatus(ctx context.Context) error {
	status, err := w.APIClient().EmailVerificationStatus(ctx, w.TokenAccessor())
	if err != nil {
		return errors.Wrap(err, "[checkStatus] EmailVerificationStatus")
	}
	if !status.Verified {
		return nil
	}

	w.mu.Lock()
	if w.verified {
		w.mu.Unlock()
		return nil
	}
	w.verified = true
	w.inlineNote = ""
	stop := w.stopPolling
	w.stopPolling = nil
	w.mu.Unlock()

	// Verification is permanent: polling never restarts
	if stop != nil {
		stop()
	}
	w.Succeed()
	w.Emit(events.Event{Type: events.TypeEmailVerified, WidgetID: w.ID()})
	if !w.config.DisableAutoHide {
		w.AfterFunc(w.config.AutoHideDelay, w.Hide)
	}
	return nil
}

func (w *Widget) tickCooldown() {
	w.mu.Lock()
	if w.cooldown > 0 {
		w.cooldown--
	}
	w.mu.Unlock()
}

func (w *Widget) setInlineNote(note string) {
	w.mu.Lock()
	w.inlineNote = note
	w.mu.Unlock()
}
