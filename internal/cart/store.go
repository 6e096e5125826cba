package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/thedivyam/noon-sde3/internal/notifications"
	"github.com/thedivyam/noon-sde3/internal/pricing"
	"github.com/thedivyam/noon-sde3/pkg/enums"
	"github.com/thedivyam/noon-sde3/pkg/kv"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/metrics"
	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

const (
	DefaultStorageKey  = "@noon_cart"
	DefaultMaxQuantity = 5
)

// Options tunes a Store; zero values fall back to the defaults. A nil TaxRate
// means pricing.DefaultTaxRate; an explicit zero rate is kept.
type Options struct {
	StorageKey  string
	MaxQuantity int
	TaxRate     *decimal.Decimal
}

// Store owns the in-memory cart. Mutations are serialised and read-after-write
// consistent; persistence happens asynchronously and never fails a mutation.
type Store struct {
	storage  kv.Store
	notifier notifications.Notifier
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics

	key         string
	maxQuantity int
	taxRate     decimal.Decimal

	mu      sync.RWMutex
	items   map[string]Line
	loading bool

	persist *persister
}

// NewStore builds an empty cart in the loading state and starts its background
// writer. Call Initialize to rehydrate and Close to stop.
func NewStore(storage kv.Store, notifier notifications.Notifier, logg *logger.Logger, m *metrics.StorefrontMetrics, opts Options) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = DefaultMaxQuantity
	}
	taxRate := pricing.DefaultTaxRate
	if opts.TaxRate != nil {
		taxRate = *opts.TaxRate
	}

	s := &Store{
		storage:     storage,
		notifier:    notifier,
		logg:        logg,
		metrics:     m,
		key:         opts.StorageKey,
		maxQuantity: opts.MaxQuantity,
		taxRate:     taxRate,
		items:       make(map[string]Line),
		loading:     true,
	}
	s.persist = newPersister(storage, s.key, s.persistFailed)
	return s
}

// Initialize replaces the cart with the persisted snapshot. A missing, unreadable
// or corrupt snapshot leaves the cart empty; failures are logged, never returned.
// Loading() is false once Initialize returns. Lines added while loading survive
// only when nothing was restored, and are then persisted.
func (s *Store) Initialize(ctx context.Context) {
	ctx = s.logg.WithStorageKey(ctx, s.key)
	items := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if items != nil {
		s.items = items
		return
	}
	if len(s.items) > 0 {
		s.persistLocked(ctx)
	}
}

func (s *Store) load(ctx context.Context) map[string]Line {
	raw, err := s.storage.Get(ctx, s.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.logg.Debug(ctx, "no persisted cart")
		return nil
	case err != nil:
		s.logg.Error(ctx, "failed to load cart", err)
		return nil
	}

	items, adjusted, err := decodeSnapshot(raw, s.maxQuantity)
	if err != nil {
		s.logg.Error(ctx, "persisted cart is corrupt; starting empty", err)
		return nil
	}
	if adjusted > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "adjusted_lines", adjusted), "persisted cart had out of range quantities")
	}
	s.logg.Info(s.logg.WithField(ctx, "lines", len(items)), "cart restored")
	return items
}

// Loading reports whether the initial rehydration is still running.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Add increments the line for item by one, up to the maximum quantity. At the
// ceiling nothing changes and the result is OutcomeCapped.
func (s *Store) Add(ctx context.Context, item swapi.Starship) AddResult {
	ctx = s.logg.WithItem(ctx, item.Name)

	s.mu.Lock()
	current := s.items[item.Name]
	if current.Quantity >= s.maxQuantity {
		s.mu.Unlock()
		s.record(OutcomeCapped)
		s.notify(ctx, enums.ToastKindInfo, "Maximum quantity reached",
			fmt.Sprintf("%s - Maximum %d items allowed", item.Name, s.maxQuantity))
		return AddResult{Outcome: OutcomeCapped, Line: current}
	}

	line := Line{Starship: item, Quantity: current.Quantity + 1}
	s.items[item.Name] = line
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.record(OutcomeAdded)
	s.notify(ctx, enums.ToastKindSuccess, "Added to cart", fmt.Sprintf("%s (%d)", item.Name, line.Quantity))
	return AddResult{Outcome: OutcomeAdded, Line: line}
}

// Remove decrements the named line, deleting it when it reaches zero. Removing
// an absent item changes nothing.
func (s *Store) Remove(ctx context.Context, name string) RemoveResult {
	ctx = s.logg.WithItem(ctx, name)

	s.mu.Lock()
	current, ok := s.items[name]
	if !ok {
		s.mu.Unlock()
		s.record(OutcomeAbsent)
		return RemoveResult{Outcome: OutcomeAbsent, Name: name}
	}

	remaining := current.Quantity - 1
	if remaining <= 0 {
		delete(s.items, name)
	} else {
		current.Quantity = remaining
		s.items[name] = current
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	if remaining <= 0 {
		s.record(OutcomeRemoved)
		s.notify(ctx, enums.ToastKindInfo, "Removed from cart", name)
		return RemoveResult{Outcome: OutcomeRemoved, Name: name}
	}
	s.record(OutcomeDecremented)
	s.notify(ctx, enums.ToastKindInfo, "Quantity updated", fmt.Sprintf("%s (%d)", name, remaining))
	return RemoveResult{Outcome: OutcomeDecremented, Name: name, Quantity: remaining}
}

// Clear empties the cart. notify=false suppresses the toast, used when another
// confirmation has already informed the user.
func (s *Store) Clear(ctx context.Context, notify bool) {
	s.mu.Lock()
	s.clearLocked(ctx)
	s.mu.Unlock()

	s.record(OutcomeCleared)
	if notify {
		s.notify(ctx, enums.ToastKindSuccess, "Cart cleared", "All items have been removed")
	}
}

// Drain atomically returns the lines (ordered by name) and clears the cart
// without a toast. An empty cart is returned as an empty slice and left untouched.
func (s *Store) Drain(ctx context.Context) []Line {
	s.mu.Lock()
	lines := s.sortedLocked()
	if len(lines) > 0 {
		s.clearLocked(ctx)
	}
	s.mu.Unlock()

	if len(lines) > 0 {
		s.record(OutcomeCleared)
	}
	return lines
}

func (s *Store) clearLocked(ctx context.Context) {
	s.items = make(map[string]Line)
	s.persistLocked(ctx)
}

// TotalItemCount sums the quantities of every line.
func (s *Store) TotalItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, line := range s.items {
		total += line.Quantity
	}
	return total
}

// Line returns the line for name.
func (s *Store) Line(name string) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	line, ok := s.items[name]
	return line, ok
}

// Lines returns the lines ordered by name.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Snapshot copies the cart mapping.
func (s *Store) Snapshot() map[string]Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Line, len(s.items))
	for name, line := range s.items {
		out[name] = line
	}
	return out
}

// Summary derives subtotal, tax and total with the configured tax rate.
func (s *Store) Summary() pricing.OrderSummary {
	return s.SummaryOf(s.Lines())
}

// SummaryOf prices lines with the configured tax rate.
func (s *Store) SummaryOf(lines []Line) pricing.OrderSummary {
	priced := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		priced = append(priced, line.priced())
	}
	return pricing.Summarize(priced, s.taxRate)
}

// MaxQuantity is the per-line ceiling.
func (s *Store) MaxQuantity() int {
	return s.maxQuantity
}

// Flush blocks until every scheduled write has been attempted.
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.flush(ctx)
}

// Close flushes pending writes and stops the background writer. The storage
// backend is owned by the caller and stays open.
func (s *Store) Close(ctx context.Context) error {
	return multierr.Append(s.persist.flush(ctx), s.persist.close(ctx))
}

func (s *Store) sortedLocked() []Line {
	lines := make([]Line, 0, len(s.items))
	for _, line := range s.items {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })
	return lines
}

// persistLocked schedules the current cart. Writes are skipped while loading so
// the persisted cart is not clobbered before it has been read.
func (s *Store) persistLocked(ctx context.Context) {
	if s.loading {
		s.logg.Debug(ctx, "cart still loading; skipping persistence")
		return
	}
	snapshot, err := json.Marshal(s.items)
	if err != nil {
		s.persistFailed(fmt.Errorf("encoding cart: %w", err))
		return
	}
	s.persist.schedule(string(snapshot))
}

func (s *Store) persistFailed(err error) {
	ctx := s.logg.WithStorageKey(context.Background(), s.key)
	s.logg.Error(ctx, "failed to persist cart", err)
	s.metrics.IncStorageFailure(s.key)
}

func (s *Store) record(outcome Outcome) {
	s.metrics.IncCartMutation(string(outcome))
}

func (s *Store) notify(ctx context.Context, kind enums.ToastKind, text1, text2 string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notifications.NewToast(kind, text1, text2))
}

func decodeSnapshot(raw string, maxQuantity int) (map[string]Line, int, error) {
	var decoded map[string]Line
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, 0, err
	}

	items := make(map[string]Line, len(decoded))
	adjusted := 0
	for name, line := range decoded {
		if name == "" {
			adjusted++
			continue
		}
		line.Name = name
		switch {
		case line.Quantity < 1:
			adjusted++
			continue
		case line.Quantity > maxQuantity:
			line.Quantity = maxQuantity
			adjusted++
		}
		items[name] = line
	}
	return items, adjusted, nil
}
