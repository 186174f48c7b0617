// Package widgets implements the embeddable widget lifecycle: a finite
// state machine, isolated rendering, a per-instance event bus, and the
// authenticated-fetch helper every interactive flow is built on.
package widgets

import (
	"context"
	"html/template"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/events"
	"github.com/quillauth/embedkit/render"
	"github.com/quillauth/embedkit/theme"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LifecycleState is the generic widget lifecycle. ready, loading and error
// may cycle during repeated user actions; destroyed is terminal.
type LifecycleState string

const (
	StateInitializing LifecycleState = "initializing"
	StateReady        LifecycleState = "ready"
	StateLoading      LifecycleState = "loading"
	StateError        LifecycleState = "error"
	StateSuccess      LifecycleState = "success"
	StateDestroyed    LifecycleState = "destroyed"
)

// ErrDestroyed is returned for any method call on a destroyed widget.
// Calling into a destroyed widget is a caller error, not a silent no-op.
var ErrDestroyed = errors.New("widget has been destroyed")

// Options is the configuration shared by every widget type. Widget-specific
// settings live in each widget's own Config struct.
type Options struct {
	// Origin is the embedding page origin, validated against the client id
	// before anything else happens
	Origin string

	// Theme takes priority over Branding; with neither set the Light
	// preset applies
	Theme    *theme.Theme
	Branding *theme.Branding

	// Capabilities of the host environment; decides the isolation strategy
	Capabilities render.Capabilities

	// TokenAccessor resolves the current access token for authenticated
	// calls; wire auth.Engine.TokenAccessor() or a host-supplied closure
	TokenAccessor api.TokenAccessor

	// OnError, when set, receives every normalized widget error after it
	// has been emitted on the bus
	OnError func(*autherrors.Error)

	Logger *zerolog.Logger
}

// Renderer builds a widget's inner markup from its current state. Each
// concrete widget implements this against its own step machine.
type Renderer interface {
	Content() (template.HTML, error)
}

// Base carries the lifecycle shared by all widgets. Concrete widgets embed
// a *Base and layer their step machine on top.
type Base struct {
	id         string
	widgetType string
	apiClient  *api.Client
	origin     string
	accessor   api.TokenAccessor
	theme      theme.Theme
	boundary   render.Boundary
	bus        *events.Bus
	onError    func(*autherrors.Error)
	logger     zerolog.Logger
	renderer   Renderer

	mu        sync.Mutex
	state     LifecycleState
	visible   bool
	destroyed bool
	stops     []func()
}

// NewBase constructs the shared lifecycle core. Theme resolution happens
// exactly once here: explicit theme > branding > default.
func NewBase(widgetType string, apiClient *api.Client, opts Options) (*Base, error) {
	if widgetType == "" {
		return nil, errors.New("[NewBase] widgetType is required")
	}
	if apiClient == nil {
		return nil, errors.New("[NewBase] api client is required")
	}

	id := uuid.New().String()
	resolvedTheme := theme.Resolve(opts.Theme, opts.Branding)

	boundary, err := render.NewBoundary(opts.Capabilities, "ek-"+widgetType+"-"+id[:8], resolvedTheme)
	if err != nil {
		return nil, errors.Wrap(err, "[NewBase] render.NewBoundary")
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Base{
		id:         id,
		widgetType: widgetType,
		apiClient:  apiClient,
		origin:     opts.Origin,
		accessor:   opts.TokenAccessor,
		theme:      resolvedTheme,
		boundary:   boundary,
		bus:        events.NewBus(),
		onError:    opts.OnError,
		logger:     logger.With().Str("widget", widgetType).Logger(),
		state:      StateInitializing,
		visible:    true,
	}, nil
}

// SetRenderer wires the concrete widget's renderer. Must be called before
// Render; each widget constructor does this.
func (b *Base) SetRenderer(renderer Renderer) {
	b.renderer = renderer
}

func (b *Base) ID() string                { return b.id }
func (b *Base) Type() string              { return b.widgetType }
func (b *Base) Theme() theme.Theme        { return b.theme }
func (b *Base) Bus() *events.Bus          { return b.bus }
func (b *Base) Boundary() render.Boundary { return b.boundary }
func (b *Base) Logger() zerolog.Logger    { return b.logger }

// State returns the current lifecycle state.
func (b *Base) State() LifecycleState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Visible reports the visibility flag.
func (b *Base) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

// Alive reports whether the widget has not been destroyed. Timer callbacks
// consult this before touching state.
func (b *Base) Alive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.destroyed
}

// Initialize validates the client identifier against the embedding origin
// before anything else. Success moves the widget to ready; any failure
// moves it to error and reports through the bus and host callback.
func (b *Base) Initialize(ctx context.Context) error {
	if !b.Alive() {
		return ErrDestroyed
	}
	b.setState(StateInitializing)

	if err := b.apiClient.ValidateClient(ctx, b.origin); err != nil {
		return b.Fail(err)
	}

	b.setState(StateReady)
	b.Emit(events.Event{Type: events.TypeReady, WidgetID: b.id})
	return nil
}

// Render rebuilds the boundary contents from current state. Synchronous and
// idempotent; repeated calls never leak timers because timers are armed by
// actions, not by rendering.
func (b *Base) Render() (template.HTML, error) {
	if !b.Alive() {
		return "", ErrDestroyed
	}
	if b.renderer == nil {
		return "", errors.New("[Base.Render] no renderer set")
	}

	content, err := b.renderer.Content()
	if err != nil {
		return "", errors.Wrap(err, "[Base.Render] renderer")
	}
	return b.boundary.Mount(content)
}

// Show makes the widget visible; no-op when already visible.
func (b *Base) Show() {
	b.mu.Lock()
	if b.destroyed || b.visible {
		b.mu.Unlock()
		return
	}
	b.visible = true
	b.mu.Unlock()
	b.Emit(events.Event{Type: events.TypeShow, WidgetID: b.id})
}

// Hide makes the widget invisible; no-op when already hidden.
func (b *Base) Hide() {
	b.mu.Lock()
	if b.destroyed || !b.visible {
		b.mu.Unlock()
		return
	}
	b.visible = false
	b.mu.Unlock()
	b.Emit(events.Event{Type: events.TypeHide, WidgetID: b.id})
}

// Destroy is terminal: emits destroy, releases every registered timer,
// detaches all bus handlers and clears the render subtree. Further calls
// return ErrDestroyed.
func (b *Base) Destroy() error {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return ErrDestroyed
	}
	b.destroyed = true
	b.state = StateDestroyed
	stops := b.stops
	b.stops = nil
	b.mu.Unlock()

	b.bus.Emit(events.Event{Type: events.TypeDestroy, WidgetID: b.id})
	for _, stop := range stops {
		stop()
	}
	b.bus.Close()
	b.boundary.Clear()
	b.logger.Debug().Str("id", b.id).Msg("widget destroyed")
	return nil
}

// AuthenticatedRequest performs a provider API call with the widget's token
// accessor, failing with not_authenticated when no token is available.
func (b *Base) AuthenticatedRequest(ctx context.Context, method, path string, body, out any) error {
	if !b.Alive() {
		return ErrDestroyed
	}
	return b.apiClient.Authenticated(ctx, b.accessor, method, path, body, out)
}

// APIClient exposes the underlying provider client for typed endpoint
// wrappers.
func (b *Base) APIClient() *api.Client {
	return b.apiClient
}

// TokenAccessor returns the widget's token accessor.
func (b *Base) TokenAccessor() api.TokenAccessor {
	return b.accessor
}

// Fail normalizes err, moves the widget to the error lifecycle state, and
// reports once via the bus and the optional host callback. Validation
// errors never come through here; they re-render inline instead.
func (b *Base) Fail(err error) error {
	authErr := autherrors.Normalize(err)
	b.setState(StateError)
	b.logger.Warn().Str("code", string(authErr.Code)).Msg("widget error")
	b.Emit(events.Event{Type: events.TypeError, WidgetID: b.id, Err: authErr})
	if b.onError != nil {
		b.onError(authErr)
	}
	return authErr
}

// Succeed moves the widget to the success lifecycle state.
func (b *Base) Succeed() {
	b.setState(StateSuccess)
	b.Emit(events.Event{Type: events.TypeSuccess, WidgetID: b.id})
}

// SetLoading marks an async action in flight.
func (b *Base) SetLoading() { b.setState(StateLoading) }

// SetReady returns the widget to its interactive state.
func (b *Base) SetReady() { b.setState(StateReady) }

// Emit publishes an event on the widget's bus. Destroyed widgets drop
// emissions via the closed bus.
func (b *Base) Emit(event events.Event) {
	if event.WidgetID == "" {
		event.WidgetID = b.id
	}
	b.bus.Emit(event)
}

// EmitStepChange publishes a step_change event.
func (b *Base) EmitStepChange(step string) {
	b.Emit(events.Event{Type: events.TypeStepChange, WidgetID: b.id, Step: step})
}

func (b *Base) setState(state LifecycleState) {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.state = state
	b.mu.Unlock()
}
