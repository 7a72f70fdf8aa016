package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const (
	Header           = "X-Session-Id"
	defaultNamespace = "sf"
	maxIDLength      = 128
)

var (
	ErrManagerClosed = pkgerrors.New(pkgerrors.CodeStateConflict, "session manager closed")
	errSessionClosed = pkgerrors.New(pkgerrors.CodeStateConflict, "session already closed")
)

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// CartKey is the durable key of a session's cart blob.
func CartKey(namespace, sessionID string) string {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return fmt.Sprintf("%s:cart:%s", namespace, sessionID)
}

// ValidID reports whether a client-supplied session id is usable as a key.
func ValidID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxIDLength {
		return false
	}
	return !strings.ContainsAny(id, " \t\r\n:")
}

// Options wires the shared dependencies of every session.
type Options struct {
	Namespace    string
	Durable      cart.Durable
	Submitter    checkout.OrderSubmitter
	Logger       *logger.Logger
	CartOpts     []cart.Option
	CheckoutOpts []checkout.Option

	// IdleTTL is how long an untouched session stays in memory. Zero keeps
	// sessions until Drop or Close.
	IdleTTL time.Duration
	Now     func() time.Time
}

// Manager owns one Session per session id. Sessions are created on first use
// and their carts loaded from the durable backend. Idle sessions are evicted by
// Sweep; the next Get reloads the cart from the durable blob.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
	logger   *logger.Logger
	now      func() time.Time
	closed   bool
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Submitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order submitter is required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   logg,
		now:      now,
	}, nil
}

// Get returns the session for id, creating and loading it when needed.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid session id").WithDetails(map[string]any{
			"header": Header,
		})
	}
	id = strings.TrimSpace(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	if sess, ok := m.sessions[id]; ok {
		sess.lastSeen = m.now()
		return sess, nil
	}

	sess := m.newSession(id)
	sess.Cart.Load(m.logger.WithSessionID(ctx, id))
	sess.lastSeen = m.now()
	m.sessions[id] = sess
	m.logger.Debug(m.logger.WithSessionID(ctx, id), "session.created")
	return sess, nil
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Drop closes and forgets one session. Its durable cart is left in place.
func (m *Manager) Drop(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.Close()
}

// Sweep evicts sessions untouched for longer than the idle TTL and returns how
// many were dropped. A session with an order in flight or a success waiting to
// clear its cart is kept until that settles.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	cutoff := m.now().Add(-m.opts.IdleTTL)
	var idle []*Session
	for id, sess := range m.sessions {
		if sess.lastSeen.After(cutoff) || sess.Checkout.Busy() {
			continue
		}
		idle = append(idle, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, sess := range idle {
		if err := sess.Close(); err != nil {
			m.logger.WarnErr(m.logger.WithSessionID(ctx, sess.ID), "session close failed", err)
		}
	}
	if len(idle) > 0 {
		m.logger.Debug(m.logger.WithField(ctx, "evicted", len(idle)), "session.swept")
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if m.opts.IdleTTL <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Close tears down every session, cancelling their scheduled transitions.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var err error
	for id, sess := range sessions {
		if closeErr := sess.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("session %s: %w", id, closeErr))
		}
	}
	return err
}

func (m *Manager) newSession(id string) *Session {
	cartOpts := append([]cart.Option{cart.WithLogger(m.logger)}, m.opts.CartOpts...)
	checkoutOpts := append([]checkout.Option{checkout.WithLogger(m.logger)}, m.opts.CheckoutOpts...)

	store := cart.NewStore(m.opts.Durable, CartKey(m.opts.Namespace, id), cartOpts...)
	return &Session{
		ID:       id,
		Cart:     store,
		Checkout: checkout.New(store, m.opts.Submitter, checkoutOpts...),
		viewOpts: checkoutOpts,
		views:    make(map[string]*checkout.ProductView),
	}
}

// Session is the cart, checkout and product page state of one shopper.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Checkout

	mu       sync.Mutex
	views    map[string]*checkout.ProductView
	viewOpts []checkout.Option
	closed   bool

	// guarded by Manager.mu
	lastSeen time.Time
}

// View returns the product page state for product, creating it on first visit.
// An existing view picks up the newer product data and keeps its selection.
func (s *Session) View(product catalog.Product) (*checkout.ProductView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errSessionClosed
	}
	if view, ok := s.views[product.ID]; ok {
		view.Refresh(product)
		return view, nil
	}
	view := checkout.NewProductView(product, s.Cart, s.viewOpts...)
	s.views[product.ID] = view
	return view, nil
}

// Close cancels the pending timers of the checkout and of every product view.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	s.closed = true
	s.Checkout.Close()
	for _, view := range s.views {
		view.Close()
	}
	return nil
}
