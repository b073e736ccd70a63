package service

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/pkg/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memProducts is an in-memory ProductRepository.
type memProducts struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*model.Product
	movements []model.StockMovement
	failSave  error
}

func newMemProducts(products ...model.Product) *memProducts {
	r := &memProducts{products: map[uuid.UUID]*model.Product{}}
	for i := range products {
		p := products[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.Recalculate()
		r.products[p.ID] = &p
	}
	return r
}

func clone(p *model.Product) *model.Product {
	c := *p
	c.Images = append([]model.ProductImage(nil), p.Images...)
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

func (r *memProducts) conflict(p *model.Product) bool {
	for id, other := range r.products {
		if id == p.ID {
			continue
		}
		if strings.EqualFold(other.Code, p.Code) {
			return true
		}
		if p.Barcode != nil && other.Barcode != nil && *p.Barcode == *other.Barcode {
			return true
		}
	}
	return false
}

func (r *memProducts) record(m *model.StockMovement) {
	if m != nil {
		m.CreatedAt = time.Now()
		r.movements = append(r.movements, *m)
	}
}

func (r *memProducts) Create(p *model.Product, movement *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave != nil {
		return r.failSave
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if r.conflict(p) {
		return gorm.ErrDuplicatedKey
	}
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	p.Recalculate()
	r.products[p.ID] = clone(p)
	if movement != nil {
		movement.ProductID = p.ID
	}
	r.record(movement)
	return nil
}

func (r *memProducts) FindByID(id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return clone(p), nil
}

func (r *memProducts) FindByCode(code string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if strings.EqualFold(p.Code, code) {
			return clone(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProducts) FindByBarcode(barcode string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return clone(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProducts) FindActive() ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Product{}
	for _, p := range r.products {
		if p.IsActive() {
			out = append(out, *clone(p))
		}
	}
	return out, nil
}

func (r *memProducts) Update(p *model.Product, movement *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave != nil {
		return r.failSave
	}
	if r.conflict(p) {
		return gorm.ErrDuplicatedKey
	}
	p.UpdatedAt = time.Now()
	p.Recalculate()
	stored := clone(p)
	stored.Images = r.products[p.ID].Images
	r.products[p.ID] = stored
	r.record(movement)
	return nil
}

func (r *memProducts) AdjustStock(id uuid.UUID, mutate func(p *model.Product) (*model.StockMovement, error)) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	updated := clone(p)
	movement, err := mutate(updated)
	if err != nil {
		return nil, err
	}
	updated.Recalculate()
	r.products[id] = clone(updated)
	r.record(movement)
	// the locked read in the real repository does not load the gallery
	updated.Images = nil
	return updated, nil
}

func (r *memProducts) SaveImages(p *model.Product, removed []model.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave != nil {
		return r.failSave
	}
	r.products[p.ID].Images = append([]model.ProductImage(nil), p.Images...)
	return nil
}

var _ repository.ProductRepository = (*memProducts)(nil)

type memMovements struct {
	series   []repository.StockMovementData
	calls    int
	products *memProducts
	limit    int
}

func (m *memMovements) GetStockMovement(start, end time.Time) ([]repository.StockMovementData, error) {
	m.calls++
	return m.series, nil
}

// FindByProduct reads the movements recorded by products, newest first.
func (m *memMovements) FindByProduct(id uuid.UUID, limit int) ([]model.StockMovement, error) {
	m.limit = limit
	var out []model.StockMovement
	if m.products == nil {
		return out, nil
	}
	for i := len(m.products.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if mv := m.products.movements[i]; mv.ProductID == id {
			out = append(out, mv)
		}
	}
	return out, nil
}

type memUsers struct {
	users map[uuid.UUID]*model.User
	// onCreate runs before a user is stored; a non-nil error aborts the insert.
	onCreate func(u *model.User) error
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[uuid.UUID]*model.User{}}
}

func (r *memUsers) find(match func(*model.User) bool) (*model.User, error) {
	for _, u := range r.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUsers) FindByEmail(email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *memUsers) FindByUsername(username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *memUsers) FindByID(id uuid.UUID) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *memUsers) FindAll() ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b model.User) int { return strings.Compare(a.Username, b.Username) })
	return out, nil
}

func (r *memUsers) Create(u *model.User) error {
	if r.onCreate != nil {
		if err := r.onCreate(u); err != nil {
			return err
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *memUsers) Update(u *model.User) error {
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *memUsers) UpdatePassword(id uuid.UUID, hashed string) error {
	r.users[id].Password = hashed
	return nil
}

type event struct {
	Type  string
	Actor string
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Publish(eventType, actor string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{eventType, actor})
}

// countingCache is an in-process cache that records flushes.
type countingCache struct {
	items   map[string]any
	flushes int
	hits    int
}

func newCountingCache() *countingCache {
	return &countingCache{items: map[string]any{}}
}

func (c *countingCache) Get(_ context.Context, key string, dest any) (bool, error) {
	v, ok := c.items[key]
	if !ok {
		return false, nil
	}
	c.hits++
	switch d := dest.(type) {
	case *Dashboard:
		*d = *(v.(*Dashboard))
	default:
		return false, nil
	}
	return true, nil
}

func (c *countingCache) Set(_ context.Context, key string, value any) error {
	c.items[key] = value
	return nil
}

func (c *countingCache) Flush(context.Context) error {
	c.flushes++
	c.items = map[string]any{}
	return nil
}

// memStore keeps uploads in memory and can fail on the nth save.
type memStore struct {
	objects map[string][]byte
	saves   int
	failOn  int
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Save(name string, r io.Reader) (*storage.Object, error) {
	s.saves++
	if s.failOn > 0 && s.saves == s.failOn {
		return nil, storage.ErrUnsupportedType
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	key := uuid.NewString() + "-" + name
	s.objects[key] = data
	return &storage.Object{Key: key, URL: "/uploads/" + key, Size: int64(len(data))}, nil
}

func (s *memStore) Delete(key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
