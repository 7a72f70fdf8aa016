package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const (
	OpAdd      = "add"
	OpRemove   = "remove"
	OpIncrease = "increase"
	OpDecrease = "decrease"
	OpClear    = "clear"

	persistRead  = "read"
	persistWrite = "write"
)

// Durable is the string key-value backend the cart is written through to.
type Durable interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}

// Recorder receives cart activity counters.
type Recorder interface {
	IncCartMutation(op string)
	IncPersistenceFailure(op string)
}

// Snapshot is a consistent read of the cart and its derived values.
type Snapshot struct {
	Items          []LineItem      `json:"items"`
	Count          int             `json:"count"`
	Total          decimal.Decimal `json:"total"`
	CurrencySymbol string          `json:"currencySymbol"`
	CurrencyLabel  string          `json:"currencyLabel"`
	IsOpen         bool            `json:"isOpen"`
}

// Store owns the line items of one browsing session. Every mutation rewrites
// the whole cart to the durable backend before the lock is released, so the
// stored blob always matches the latest in-memory state. Write failures are
// logged and counted; the in-memory cart stays authoritative.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	isOpen  bool
	durable Durable
	key     string
	now     func() time.Time
	logger  *logger.Logger
	metrics Recorder
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) {
		if logg != nil {
			s.logger = logg
		}
	}
}

func WithMetrics(rec Recorder) Option {
	return func(s *Store) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// NewStore builds an empty cart persisted under key. A nil durable backend
// keeps the cart in memory only.
func NewStore(durable Durable, key string, opts ...Option) *Store {
	s := &Store{
		items:   []LineItem{},
		durable: durable,
		key:     key,
		now:     time.Now,
		logger:  logger.Nop(),
		metrics: nopRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load replaces the cart contents with the durable blob. Absent or unreadable
// data yields an empty cart.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []LineItem{}
	if s.durable == nil {
		return
	}

	raw, ok, err := s.durable.Read(ctx, s.key)
	if err != nil {
		s.metrics.IncPersistenceFailure(persistRead)
		s.logger.WarnErr(ctx, "cart read failed, starting empty", err)
		return
	}
	if !ok {
		return
	}

	items, err := Decode(raw)
	if err != nil {
		s.metrics.IncPersistenceFailure(persistRead)
		s.logger.WarnErr(ctx, "stored cart unreadable, starting empty", err)
		return
	}
	s.items = items
}

// AddItem adds one unit of product under the given selection and returns the
// resulting line item. An existing line keeps its original snapshot.
func (s *Store) AddItem(ctx context.Context, product catalog.Product, selected catalog.SelectedAttributes) LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ComputeCartItemKey(product.ID, selected)
	idx := s.indexOf(key)
	if idx >= 0 {
		s.items[idx].Quantity++
	} else {
		s.items = append(s.items, LineItem{
			Key:                key,
			Product:            product.Clone(),
			SelectedAttributes: selected.Clone(),
			Quantity:           1,
			AddedAt:            s.now().UTC().Truncate(time.Millisecond),
		})
		idx = len(s.items) - 1
	}

	s.commit(ctx, OpAdd)
	return s.items[idx].clone()
}

// RemoveItem drops the line with the given key; unknown keys are ignored.
func (s *Store) RemoveItem(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(key)
	if idx < 0 {
		return
	}
	s.removeAt(idx)
	s.commit(ctx, OpRemove)
}

// IncreaseQuantity adds one unit to the line; unknown keys are ignored.
func (s *Store) IncreaseQuantity(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(key)
	if idx < 0 {
		return
	}
	s.items[idx].Quantity++
	s.commit(ctx, OpIncrease)
}

// DecreaseQuantity removes one unit; the line disappears when it reaches zero.
func (s *Store) DecreaseQuantity(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(key)
	if idx < 0 {
		return
	}
	s.items[idx].Quantity--
	if s.items[idx].Quantity <= 0 {
		s.removeAt(idx)
	}
	s.commit(ctx, OpDecrease)
}

// Clear empties the cart. The overlay flag is left alone.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []LineItem{}
	s.commit(ctx, OpClear)
}

func (s *Store) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = !s.isOpen
	return s.isOpen
}

func (s *Store) Open() {
	s.mu.Lock()
	s.isOpen = true
	s.mu.Unlock()
}

func (s *Store) Close() {
	s.mu.Lock()
	s.isOpen = false
	s.mu.Unlock()
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Count is the sum of all quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.items)
}

// Total sums the snapshot first-price amounts times quantity.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.items)
}

func (s *Store) CurrencySymbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	symbol, _ := currency(s.items)
	return symbol
}

func (s *Store) CurrencyLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, label := currency(s.items)
	return label
}

// Snapshot reads items and every derived value under a single lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol, label := currency(s.items)
	return Snapshot{
		Items:          cloneItems(s.items),
		Count:          count(s.items),
		Total:          total(s.items),
		CurrencySymbol: symbol,
		CurrencyLabel:  label,
		IsOpen:         s.isOpen,
	}
}

func (s *Store) indexOf(key string) int {
	for i, item := range s.items {
		if item.Key == key {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(idx int) {
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
}

// commit must be called with s.mu held.
func (s *Store) commit(ctx context.Context, op string) {
	s.metrics.IncCartMutation(op)
	if s.durable == nil {
		return
	}

	payload, err := Encode(s.items)
	if err != nil {
		s.metrics.IncPersistenceFailure(persistWrite)
		s.logger.WarnErr(ctx, "cart encode failed", err)
		return
	}
	if err := s.durable.Write(ctx, s.key, payload); err != nil {
		s.metrics.IncPersistenceFailure(persistWrite)
		s.logger.WarnErr(s.logger.WithField(ctx, "op", op), "cart write-through failed", err)
	}
}

func count(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

func total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

func currency(items []LineItem) (symbol, label string) {
	symbol, label = catalog.DefaultCurrencySymbol, catalog.DefaultCurrencyLabel
	if len(items) == 0 {
		return symbol, label
	}
	price, ok := items[0].UnitPrice()
	if !ok {
		return symbol, label
	}
	if price.CurrencySymbol != "" {
		symbol = price.CurrencySymbol
	}
	if price.CurrencyLabel != "" {
		label = price.CurrencyLabel
	}
	return symbol, label
}

type nopRecorder struct{}

func (nopRecorder) IncCartMutation(string)       {}
func (nopRecorder) IncPersistenceFailure(string) {}
