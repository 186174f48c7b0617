// Package security implements the security-dashboard widget: a read-only
// aggregator that scores the account's recovery posture and suggests the
// next improvement.
package security

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/events"
	"github.com/quillauth/embedkit/widgets"
)

// Weights assigns each posture factor its contribution to the score. The
// score saturates at 100 and never goes below 0.
type Weights struct {
	EmailVerified  int
	PhraseActive   int
	PhraseVerified int
	PasswordRecent int
}

// DefaultWeights is the stock scoring policy.
var DefaultWeights = Weights{
	EmailVerified:  30,
	PhraseActive:   30,
	PhraseVerified: 20,
	PasswordRecent: 20,
}

// Config holds the widget-specific settings.
type Config struct {
	// Weights overrides the scoring policy. Zero value means
	// DefaultWeights.
	Weights Weights

	// PasswordMaxAge is how recently the password must have changed to earn
	// the PasswordRecent weight. Default 180 days.
	PasswordMaxAge time.Duration
}

func (c *Config) applyDefaults() {
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights
	}
	if c.PasswordMaxAge <= 0 {
		c.PasswordMaxAge = 180 * 24 * time.Hour
	}
}

// Widget is the security dashboard. It has no steps; Refresh re-fetches the
// posture in place.
type Widget struct {
	*widgets.Base
	config  Config
	nowTime func() time.Time

	mu     sync.Mutex
	status *api.SecurityStatus
	score  int
}

// Option configures optional Widget behaviour.
type Option func(*Widget)

// WithNowTime overrides the clock used for password-recency checks.
func WithNowTime(now func() time.Time) Option {
	return func(w *Widget) {
		w.nowTime = now
	}
}

// New constructs the widget. Nothing is fetched until Initialize.
func New(apiClient *api.Client, config Config, opts widgets.Options, options ...Option) (*Widget, error) {
	config.applyDefaults()

	base, err := widgets.NewBase("security", apiClient, opts)
	if err != nil {
		return nil, errors.Wrap(err, "[security.New] NewBase")
	}

	w := &Widget{
		Base:    base,
		config:  config,
		nowTime: time.Now,
	}
	for _, option := range options {
		option(w)
	}
	base.SetRenderer(w)
	return w, nil
}

// Initialize validates the client and fetches the first posture snapshot.
func (w *Widget) Initialize(ctx context.Context) error {
	if err := w.Base.Initialize(ctx); err != nil {
		return err
	}
	if err := w.fetch(ctx); err != nil {
		return w.Fail(err)
	}
	return nil
}

// Refresh re-fetches the posture and recomputes the score in place. The
// widget instance, its boundary and its bus subscriptions all survive.
func (w *Widget) Refresh(ctx context.Context) error {
	if !w.Alive() {
		return widgets.ErrDestroyed
	}

	w.SetLoading()
	if err := w.fetch(ctx); err != nil {
		return w.Fail(err)
	}
	w.SetReady()
	w.Emit(events.Event{Type: events.TypeStatusRefreshed, WidgetID: w.ID(), Data: map[string]any{"score": w.Score()}})
	return nil
}

// Score returns the current posture score, always within [0,100].
func (w *Widget) Score() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.score
}

// Status returns the latest posture snapshot, or nil before Initialize.
func (w *Widget) Status() *api.SecurityStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == nil {
		return nil
	}
	status := *w.status
	return &status
}

// Recommendation names the highest-value factor still missing, or "" when
// every factor is satisfied.
func (w *Widget) Recommendation() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status == nil {
		return ""
	}
	switch {
	case !w.status.EmailVerified:
		return "Verify your email address."
	case !w.status.PhraseActive:
		return "Set up a recovery phrase."
	case !w.status.PhraseVerified:
		return "Verify your recovery phrase."
	case !w.passwordRecent(w.status):
		return "Change your password."
	}
	return ""
}

func (w *Widget) fetch(ctx context.Context) error {
	status, err := w.APIClient().FetchSecurityStatus(ctx, w.TokenAccessor())
	if err != nil {
		return errors.Wrap(err, "[fetch] FetchSecurityStatus")
	}

	w.mu.Lock()
	w.status = status
	w.score = w.computeScore(status)
	w.mu.Unlock()
	return nil
}

// computeScore sums the weights of the satisfied factors, clamped to
// [0,100]. Adding a satisfied factor can never lower the score.
func (w *Widget) computeScore(status *api.SecurityStatus) int {
	score := 0
	if status.EmailVerified {
		score += w.config.Weights.EmailVerified
	}
	if status.PhraseActive {
		score += w.config.Weights.PhraseActive
	}
	if status.PhraseVerified {
		score += w.config.Weights.PhraseVerified
	}
	if w.passwordRecent(status) {
		score += w.config.Weights.PasswordRecent
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func (w *Widget) passwordRecent(status *api.SecurityStatus) bool {
	if status.PasswordChangedAt == nil {
		return false
	}
	return w.nowTime().Sub(*status.PasswordChangedAt) <= w.config.PasswordMaxAge
}
