package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"

	"github.com/google/uuid"
)

// The memory repositories back STORE_DRIVER=memory and the test suites.
// They hand out copies, so callers only change stored state through Update.

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]entity.User
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[uuid.UUID]entity.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return ErrDuplicateKey
	}
	if r.emailTaken(user.Email, user.ID) {
		return ErrDuplicateKey
	}
	now := time.Now()
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return ErrDuplicateKey
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepository) List(_ context.Context, limit, offset int) ([]entity.User, error) {
	r.mu.RLock()
	users := make([]entity.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].RegisteredAt.After(users[j].RegisteredAt)
	})
	return page(users, limit, offset), nil
}

func (r *memoryUserRepository) emailTaken(email string, owner uuid.UUID) bool {
	for id, user := range r.users {
		if id != owner && user.Email == email {
			return true
		}
	}
	return false
}

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]entity.Product
}

func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{products: make(map[uuid.UUID]entity.Product)}
}

func (r *memoryProductRepository) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; ok {
		return ErrDuplicateKey
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (r *memoryProductRepository) Update(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return ErrNotFound
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryProductRepository) List(_ context.Context) ([]entity.Product, error) {
	r.mu.RLock()
	products := make([]entity.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	r.mu.RUnlock()

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

type memorySecurityLogRepository struct {
	mu   sync.Mutex
	logs []entity.SecurityLog
}

func NewMemorySecurityLogRepository() SecurityLogRepository {
	return &memorySecurityLogRepository{}
}

func (r *memorySecurityLogRepository) Log(_ context.Context, log *entity.SecurityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memorySecurityLogRepository) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]entity.SecurityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var logs []entity.SecurityLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].UserID != nil && *r.logs[i].UserID == userID {
			logs = append(logs, r.logs[i])
		}
	}
	return page(logs, limit, 0), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
