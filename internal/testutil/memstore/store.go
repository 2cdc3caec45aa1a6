// Package memstore is an in-memory transactional store for service tests.
// RunInTransaction snapshots all state and restores it when fn fails, which
// gives the same all-or-nothing behaviour as a database transaction.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/tx"
	"procura/internal/domain"
	"procura/internal/domain/audit"
	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/documents/receiving"
	"procura/internal/domain/documents/srequest"
	"procura/internal/domain/events"
	"procura/internal/domain/ledger"
)

var _ tx.Manager = (*Store)(nil)

// AuditRecord is a captured audit entry.
type AuditRecord struct {
	EntityType string
	EntityID   id.ID
	Action     audit.Action
}

type state struct {
	items      map[id.ID]*item.Item
	receivings map[id.ID]*receiving.Receiving
	requests   map[id.ID]*srequest.ServiceRequest
	movements  []*ledger.Movement
	events     []events.DomainEvent
	audits     []AuditRecord
}

func newState() state {
	return state{
		items:      map[id.ID]*item.Item{},
		receivings: map[id.ID]*receiving.Receiving{},
		requests:   map[id.ID]*srequest.ServiceRequest{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = cloneItem(v)
	}
	for k, v := range s.receivings {
		c.receivings[k] = v.Clone()
	}
	for k, v := range s.requests {
		c.requests[k] = v.Clone()
	}
	c.movements = append(c.movements, s.movements...)
	c.events = append(c.events, s.events...)
	c.audits = append(c.audits, s.audits...)
	return c
}

// Store holds every table the services touch.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state

	failures map[string]error
	commits  int
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState(), failures: map[string]error{}}
}

type txKey struct{}

// RunInTransaction implements tx.Manager. Transactions are serialized.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

// FailOnce makes the next call of op return err. Ops: "receiving.update",
// "srequest.update", "journal.record", "outbox.publish".
func (s *Store) FailOnce(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) takeFailure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

// Commits returns the number of committed top-level transactions.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// SeedItem inserts an item directly.
func (s *Store) SeedItem(name string, qty int64) *item.Item {
	it := item.NewItem(name)
	it.Qty = qty
	it.FillDefaults()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.items[it.ID] = cloneItem(it)
	return it
}

// ItemByName returns the item with the normalized form of name.
func (s *Store) ItemByName(name string) (*item.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.findByKey(item.NormalizeName(name))
	if it == nil {
		return nil, false
	}
	return cloneItem(it), true
}

// Qty returns the on-hand qty of name, or -1 when absent.
func (s *Store) Qty(name string) int64 {
	if it, ok := s.ItemByName(name); ok {
		return it.Qty
	}
	return -1
}

// ItemCount returns the number of catalog rows.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.items)
}

// Movements returns a copy of the journal.
func (s *Store) Movements() []*ledger.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ledger.Movement(nil), s.st.movements...)
}

// Events returns a copy of queued outbox events.
func (s *Store) Events() []events.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.DomainEvent(nil), s.st.events...)
}

// Audits returns a copy of captured audit entries.
func (s *Store) Audits() []AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditRecord(nil), s.st.audits...)
}

func (s *Store) findByKey(key string) *item.Item {
	for _, it := range s.st.items {
		if it.NormalizedName == key {
			return it
		}
	}
	return nil
}

func cloneItem(it *item.Item) *item.Item {
	c := *it
	return &c
}

func page[T any](all []T, filter domain.ListFilter) domain.ListResult[T] {
	res := domain.ListResult[T]{TotalCount: int64(len(all)), Limit: filter.Limit, Offset: filter.Offset}
	start := filter.Offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	res.Items = all[start:end]
	return res
}

// --- Items ---

// ItemRepo implements item.Repository and ledger.Store.
type ItemRepo struct{ s *Store }

var (
	_ item.Repository = (*ItemRepo)(nil)
	_ ledger.Store    = (*ItemRepo)(nil)
)

// Items returns the item repository view.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findByKey(it.NormalizedName) != nil {
		return apperror.NewDuplicate("item", "name", it.Name)
	}
	r.s.st.items[it.ID] = cloneItem(it)
	return nil
}

func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.items[it.ID]; !ok {
		return apperror.NewNotFound("items", it.ID.String())
	}
	if other := r.s.findByKey(it.NormalizedName); other != nil && other.ID != it.ID {
		return apperror.NewDuplicate("item", "name", it.Name)
	}
	if it.Qty < 0 {
		return fmt.Errorf("items_qty_check violated")
	}
	r.s.st.items[it.ID] = cloneItem(it)
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.st.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("items", itemID.String())
	}
	return cloneItem(it), nil
}

func (r *ItemRepo) GetForUpdate(ctx context.Context, itemID id.ID) (*item.Item, error) {
	return r.GetByID(ctx, itemID)
}

func (r *ItemRepo) Delete(ctx context.Context, itemID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.items[itemID]; !ok {
		return apperror.NewNotFound("items", itemID.String())
	}
	delete(r.s.st.items, itemID)
	return nil
}

func (r *ItemRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := item.NormalizeName(filter.Search)
	var all []*item.Item
	for _, it := range r.s.st.items {
		if search != "" && !strings.Contains(it.NormalizedName, search) {
			continue
		}
		all = append(all, cloneItem(it))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].NormalizedName < all[j].NormalizedName })
	return page(all, filter), nil
}

func (r *ItemRepo) LockByKeys(ctx context.Context, keys []string) error {
	return nil
}

func (r *ItemRepo) GetByKeyForUpdate(ctx context.Context, key string) (*item.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it := r.s.findByKey(key)
	if it == nil {
		return nil, apperror.NewNotFound("items", key)
	}
	return cloneItem(it), nil
}

func (r *ItemRepo) UpsertAdd(ctx context.Context, candidate *item.Item) (*item.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if it := r.s.findByKey(candidate.NormalizedName); it != nil {
		it.Qty += candidate.Qty
		it.UpdatedBy = candidate.UpdatedBy
		it.UpdatedAt = time.Now().UTC()
		return cloneItem(it), nil
	}
	r.s.st.items[candidate.ID] = cloneItem(candidate)
	return cloneItem(candidate), nil
}

func (r *ItemRepo) AddQty(ctx context.Context, itemID id.ID, delta int64, actor string) (*item.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.st.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("items", itemID.String())
	}
	if it.Qty+delta < 0 {
		return nil, fmt.Errorf("items_qty_check violated")
	}
	it.Qty += delta
	it.UpdatedBy = actor
	return cloneItem(it), nil
}

func (r *ItemRepo) DecreaseFloored(ctx context.Context, key string, n int64, actor string) (*item.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it := r.s.findByKey(key)
	if it == nil {
		return nil, nil
	}
	it.Qty = max(it.Qty-n, 0)
	it.UpdatedBy = actor
	return cloneItem(it), nil
}

// --- Journal, outbox, audit ---

// Journal implements ledger.Journal.
type Journal struct{ s *Store }

// Journal returns the movement journal view.
func (s *Store) Journal() *Journal { return &Journal{s: s} }

func (j *Journal) Record(ctx context.Context, m *ledger.Movement) error {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	if err := j.s.takeFailure("journal.record"); err != nil {
		return err
	}
	c := *m
	j.s.st.movements = append(j.s.st.movements, &c)
	return nil
}

func (j *Journal) ListByItem(ctx context.Context, itemID id.ID, limit int) ([]*ledger.Movement, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	var out []*ledger.Movement
	for i := len(j.s.st.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if m := j.s.st.movements[i]; m.ItemID == itemID {
			out = append(out, m)
		}
	}
	return out, nil
}

// Outbox implements events.Publisher.
type Outbox struct{ s *Store }

// Outbox returns the event publisher view.
func (s *Store) Outbox() *Outbox { return &Outbox{s: s} }

func (o *Outbox) Publish(ctx context.Context, event events.DomainEvent) error {
	if ctx.Value(txKey{}) == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	if err := o.s.takeFailure("outbox.publish"); err != nil {
		return err
	}
	o.s.st.events = append(o.s.st.events, event)
	return nil
}

// Recorder implements audit.Recorder.
type Recorder struct{ s *Store }

// Recorder returns the audit recorder view.
func (s *Store) Recorder() *Recorder { return &Recorder{s: s} }

func (a *Recorder) Record(ctx context.Context, entityType string, entityID id.ID, action audit.Action, before, after any) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.st.audits = append(a.s.st.audits, AuditRecord{EntityType: entityType, EntityID: entityID, Action: action})
	return nil
}
