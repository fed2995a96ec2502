package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/receiptly/dashboard/internal/upstream"
)

const orderKeyPrefix = "dashboard:order:"

// OrderStore keeps the user's widget order. Reorders apply locally right
// away; the upstream write is debounced so a burst of drag operations
// settles into a single save.
type OrderStore struct {
	api    *upstream.Client
	rdb    *redis.Client
	logger *slog.Logger
	settle time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string][]WidgetID
}

// NewOrderStore wires the order store. settle is how long after the last
// reorder the upstream save fires; zero saves immediately.
func NewOrderStore(api *upstream.Client, rdb *redis.Client, logger *slog.Logger, settle time.Duration) *OrderStore {
	return &OrderStore{
		api:     api,
		rdb:     rdb,
		logger:  logger,
		settle:  settle,
		pending: make(map[string][]WidgetID),
	}
}

// Load resolves the user's order: local cache first, then upstream, then
// the factory default. Any failure falls back to the default order.
func (s *OrderStore) Load(ctx context.Context, q upstream.Query) []WidgetID {
	if order, ok := s.loadLocal(ctx, q.UserID); ok {
		return order
	}
	ids, err := s.api.WidgetOrder(ctx, q)
	if err != nil {
		s.logger.Warn("widget order fetch failed", slog.String("error", err.Error()))
		return DefaultOrder()
	}
	order := make([]WidgetID, 0, len(ids))
	for _, id := range ids {
		order = append(order, WidgetID(id))
	}
	order = reconcile(order)
	s.saveLocal(ctx, q.UserID, order)
	return order
}

// Apply validates and stores a new order. The local copy updates
// immediately; the upstream persist is scheduled after the settle delay.
func (s *OrderStore) Apply(ctx context.Context, q upstream.Query, order []WidgetID) error {
	if err := ValidateOrder(order); err != nil {
		return err
	}
	s.saveLocal(ctx, q.UserID, order)

	s.mu.Lock()
	s.pending[q.UserID] = append([]WidgetID(nil), order...)
	if s.settle <= 0 {
		s.mu.Unlock()
		s.Flush(context.WithoutCancel(ctx))
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.settle, func() {
		s.Flush(context.Background())
	})
	s.mu.Unlock()
	return nil
}

// Flush persists every pending order upstream. Failures are logged; the
// local copy already holds the user's choice.
func (s *OrderStore) Flush(ctx context.Context) {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string][]WidgetID)
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	for userID, order := range pending {
		ids := make([]string, len(order))
		for i, id := range order {
			ids[i] = string(id)
		}
		if err := s.api.SaveWidgetOrder(ctx, upstream.Query{UserID: userID}, ids); err != nil {
			s.logger.Warn("widget order save failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}
}

func (s *OrderStore) loadLocal(ctx context.Context, userID string) ([]WidgetID, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, orderKeyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("widget order read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}
	var order []WidgetID
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, false
	}
	return reconcile(order), true
}

func (s *OrderStore) saveLocal(ctx context.Context, userID string, order []WidgetID) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(order)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, orderKeyPrefix+userID, raw, 0).Err(); err != nil {
		s.logger.Warn("widget order write failed", slog.String("error", err.Error()))
	}
}

// reconcile drops unknown widgets from a stored order and appends catalog
// widgets the order predates, so saved orders survive catalog changes.
func reconcile(order []WidgetID) []WidgetID {
	out := make([]WidgetID, 0, len(defaultOrder))
	seen := make(map[WidgetID]bool, len(defaultOrder))
	for _, id := range order {
		if KnownWidget(id) && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range defaultOrder {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
