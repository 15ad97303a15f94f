// Package apptest provee dobles en memoria de los puertos de la aplicación
// para tests de casos de uso: repositorios sobre mapas, un TxRunner con
// semántica real de rollback (snapshot/restore) y spies de telemetría y
// eventos.
package apptest

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Store estado en memoria compartido por los repositorios fake.
type Store struct {
	Customers      map[string]*entity.Customer
	PaymentMethods map[string]*entity.PaymentMethod
	SkuPartners    []*entity.SkuPartner
	Stock          map[string]*entity.Stock // clave "skuPartnerID|sourceID"
	Reservations   map[string]*entity.Reservation
	Orders         map[string]*entity.Order
	OrderItems     map[string]*entity.OrderItem
	States         map[string]*entity.State  // por nombre
	Statuses       map[string]*entity.Status // por "nombre|stateID"
}

// NewStore crea un estado vacío.
func NewStore() *Store {
	return &Store{
		Customers:      map[string]*entity.Customer{},
		PaymentMethods: map[string]*entity.PaymentMethod{},
		Stock:          map[string]*entity.Stock{},
		Reservations:   map[string]*entity.Reservation{},
		Orders:         map[string]*entity.Order{},
		OrderItems:     map[string]*entity.OrderItem{},
		States:         map[string]*entity.State{},
		Statuses:       map[string]*entity.Status{},
	}
}

func stockKey(skuPartnerID, sourceID string) string { return skuPartnerID + "|" + sourceID }

// SeedStock agrega una fila de stock.
func (s *Store) SeedStock(skuPartnerID, sourceID string, quantity, sealable int64) {
	s.Stock[stockKey(skuPartnerID, sourceID)] = &entity.Stock{
		SkuPartnerID:  skuPartnerID,
		SourceID:      sourceID,
		StockQuantity: quantity,
		Sealable:      sealable,
		UpdatedAt:     time.Now(),
	}
}

// StockAt devuelve la fila de stock o nil.
func (s *Store) StockAt(skuPartnerID, sourceID string) *entity.Stock {
	return s.Stock[stockKey(skuPartnerID, sourceID)]
}

// Repos construye los repositorios fake atados a este estado.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Customers:      &customerRepo{s},
		PaymentMethods: &paymentMethodRepo{s},
		SkuPartners:    &skuPartnerRepo{s},
		Stock:          &stockRepo{s},
		Reservations:   &reservationRepo{s},
		Orders:         &orderRepo{s},
		States:         &stateRepo{s},
		Statuses:       &statusRepo{s},
	}
}

func (s *Store) clone() *Store {
	c := NewStore()
	for k, v := range s.Customers {
		cp := *v
		c.Customers[k] = &cp
	}
	for k, v := range s.PaymentMethods {
		cp := *v
		c.PaymentMethods[k] = &cp
	}
	for _, v := range s.SkuPartners {
		cp := *v
		c.SkuPartners = append(c.SkuPartners, &cp)
	}
	for k, v := range s.Stock {
		cp := *v
		c.Stock[k] = &cp
	}
	for k, v := range s.Reservations {
		c.Reservations[k] = cloneReservation(v)
	}
	for k, v := range s.Orders {
		cp := *v
		cp.Items = nil
		c.Orders[k] = &cp
	}
	for k, v := range s.OrderItems {
		cp := *v
		c.OrderItems[k] = &cp
	}
	for k, v := range s.States {
		cp := *v
		c.States[k] = &cp
	}
	for k, v := range s.Statuses {
		cp := *v
		c.Statuses[k] = &cp
	}
	return c
}

func (s *Store) restore(from *Store) { *s = *from }

func cloneReservation(r *entity.Reservation) *entity.Reservation {
	cp := *r
	cp.Items = nil
	for _, item := range r.Items {
		ic := *item
		cp.Items = append(cp.Items, &ic)
	}
	return &cp
}

// TxRunner ejecuta fn contra el Store; ante un error restaura el snapshot
// previo, imitando el rollback de una transacción real.
type TxRunner struct {
	mu    sync.Mutex
	Store *Store
}

// NewTxRunner construye el runner sobre el estado dado.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{Store: store}
}

// Run implementa ports.TxRunner.
func (t *TxRunner) Run(_ context.Context, fn func(ports.Repos) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	backup := t.Store.clone()
	if err := fn(t.Store.Repos()); err != nil {
		t.Store.restore(backup)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios fake
// ──────────────────────────────────────────────────────────────────────────────

type customerRepo struct{ s *Store }

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	if c, ok := r.s.Customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

type paymentMethodRepo struct{ s *Store }

func (r *paymentMethodRepo) GetByID(_ context.Context, id string) (*entity.PaymentMethod, error) {
	if pm, ok := r.s.PaymentMethods[id]; ok {
		cp := *pm
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

type skuPartnerRepo struct{ s *Store }

func (r *skuPartnerRepo) GetByProductAndPartner(_ context.Context, productID, partnerID string) (*entity.SkuPartner, error) {
	for _, sp := range r.s.SkuPartners {
		if sp.ProductID == productID && sp.PartnerID == partnerID {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *skuPartnerRepo) GetBySkuAndProduct(_ context.Context, sku, productID string) (*entity.SkuPartner, error) {
	for _, sp := range r.s.SkuPartners {
		if sp.SkuProduct == sku && sp.ProductID == productID {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stockRepo struct{ s *Store }

func (r *stockRepo) Get(_ context.Context, skuPartnerID, sourceID string) (*entity.Stock, error) {
	if st, ok := r.s.Stock[stockKey(skuPartnerID, sourceID)]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stockRepo) GetForUpdate(ctx context.Context, skuPartnerID, sourceID string) (*entity.Stock, error) {
	return r.Get(ctx, skuPartnerID, sourceID)
}

func (r *stockRepo) AdjustQuantity(_ context.Context, skuPartnerID, sourceID string, delta int64) (*entity.Stock, error) {
	st, ok := r.s.Stock[stockKey(skuPartnerID, sourceID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	st.StockQuantity += delta
	st.UpdatedAt = time.Now()
	cp := *st
	return &cp, nil
}

func (r *stockRepo) DecrementSealable(_ context.Context, skuPartnerID, sourceID string, qty int64) error {
	st, ok := r.s.Stock[stockKey(skuPartnerID, sourceID)]
	if !ok {
		return domain.ErrNotFound
	}
	if st.Sealable < qty {
		return &domain.StockError{
			Code:         domain.CodeStockInsufficient,
			SkuPartnerID: skuPartnerID,
			SourceID:     sourceID,
			Available:    st.Sealable,
			Required:     qty,
		}
	}
	st.Sealable -= qty
	st.UpdatedAt = time.Now()
	return nil
}

type reservationRepo struct{ s *Store }

// Create inserta solo la cabecera, igual que el repositorio real; las
// líneas entran una a una vía CreateItem.
func (r *reservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	cp := *res
	cp.Items = nil
	r.s.Reservations[res.ID] = &cp
	return nil
}

func (r *reservationRepo) CreateItem(_ context.Context, item *entity.ReservationItem) error {
	res, ok := r.s.Reservations[item.ReservationID]
	if !ok {
		return domain.ErrNotFound
	}
	ic := *item
	res.Items = append(res.Items, &ic)
	return nil
}

func (r *reservationRepo) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	if res, ok := r.s.Reservations[id]; ok {
		return cloneReservation(res), nil
	}
	return nil, domain.ErrNotFound
}

func (r *reservationRepo) Update(_ context.Context, res *entity.Reservation) error {
	stored, ok := r.s.Reservations[res.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.IsActive = res.IsActive
	stored.Comment = res.Comment
	stored.UpdatedAt = res.UpdatedAt
	return nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	cp := *o
	cp.Items = nil
	r.s.Orders[o.ID] = &cp
	return nil
}

func (r *orderRepo) CreateItem(_ context.Context, item *entity.OrderItem) error {
	if _, ok := r.s.Orders[item.OrderID]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	r.s.OrderItems[item.ID] = &cp
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	if o, ok := r.s.Orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *orderRepo) GetItem(_ context.Context, id string) (*entity.OrderItem, error) {
	if item, ok := r.s.OrderItems[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *orderRepo) ListItems(_ context.Context, orderID string) ([]*entity.OrderItem, error) {
	var items []*entity.OrderItem
	for _, item := range r.s.OrderItems {
		if item.OrderID == orderID {
			cp := *item
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *orderRepo) UpdateItem(_ context.Context, item *entity.OrderItem) error {
	if _, ok := r.s.OrderItems[item.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	r.s.OrderItems[item.ID] = &cp
	return nil
}

func (r *orderRepo) UpdateAggregates(_ context.Context, orderID string, shipped, refunded, canceled decimal.Decimal) error {
	o, ok := r.s.Orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.AmountShipped = shipped
	o.AmountRefunded = refunded
	o.AmountCanceled = canceled
	o.UpdatedAt = time.Now()
	return nil
}

type stateRepo struct{ s *Store }

func (r *stateRepo) GetOrCreate(_ context.Context, name string) (*entity.State, error) {
	if st, ok := r.s.States[name]; ok {
		cp := *st
		return &cp, nil
	}
	st := &entity.State{ID: "state-" + name, Name: name}
	r.s.States[name] = st
	cp := *st
	return &cp, nil
}

type statusRepo struct{ s *Store }

func (r *statusRepo) GetOrCreate(_ context.Context, name, stateID string) (*entity.Status, error) {
	key := name + "|" + stateID
	if st, ok := r.s.Statuses[key]; ok {
		cp := *st
		return &cp, nil
	}
	st := &entity.Status{ID: "status-" + key, Name: name, StateID: stateID}
	r.s.Statuses[key] = st
	cp := *st
	return &cp, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Spies
// ──────────────────────────────────────────────────────────────────────────────

// RecorderSpy acumula la telemetría emitida.
type RecorderSpy struct {
	mu         sync.Mutex
	Operations map[string]int   // "operation/result" → conteo
	Gauges     map[string]int64 // "skuPartner|source" → última existencia
	Observed   int
}

// NewRecorderSpy construye el spy.
func NewRecorderSpy() *RecorderSpy {
	return &RecorderSpy{Operations: map[string]int{}, Gauges: map[string]int64{}}
}

func (r *RecorderSpy) IncOperation(operation, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Operations[operation+"/"+result]++
}

func (r *RecorderSpy) SetStockQuantity(skuPartnerID, sourceID string, qty int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Gauges[stockKey(skuPartnerID, sourceID)] = qty
}

func (r *RecorderSpy) ObserveStockUpdate(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Observed++
}

// PublishedEvent evento capturado por el spy de publicación.
type PublishedEvent struct {
	Type    string
	Payload any
}

// SnapshotsSpy caché de snapshots en memoria con conteo de escrituras.
type SnapshotsSpy struct {
	mu   sync.Mutex
	data map[string]int64
	Sets int
}

// NewSnapshotsSpy construye el spy vacío.
func NewSnapshotsSpy() *SnapshotsSpy {
	return &SnapshotsSpy{data: map[string]int64{}}
}

func (s *SnapshotsSpy) Set(_ context.Context, skuPartnerID, sourceID string, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[stockKey(skuPartnerID, sourceID)] = qty
	s.Sets++
}

func (s *SnapshotsSpy) Get(_ context.Context, skuPartnerID, sourceID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, ok := s.data[stockKey(skuPartnerID, sourceID)]
	return qty, ok
}

// PublisherSpy acumula los eventos publicados.
type PublisherSpy struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

func (p *PublisherSpy) Publish(_ context.Context, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, PublishedEvent{Type: eventType, Payload: payload})
}
