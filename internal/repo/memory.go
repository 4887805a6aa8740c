package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps users and calculations in process memory.
// It backs the service when no DATABASE_URL is configured.
type MemoryRepository struct {
	mu     sync.Mutex
	users  []memUser
	calcs  []Calculation
	nextID int
	now    func() time.Time
}

type memUser struct {
	id                     int
	login, email, password string
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) id() int {
	r.nextID++
	return r.nextID
}

func (r *MemoryRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.login == login || u.email == email {
			return 0, fmt.Errorf("user %q: %w", login, ErrDuplicate)
		}
	}
	u := memUser{id: r.id(), login: login, email: email, password: password}
	r.users = append(r.users, u)
	return u.id, nil
}

func (r *MemoryRepository) GetByLogin(ctx context.Context, login string) (int, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.login == login {
			return u.id, u.password, nil
		}
	}
	return 0, "", nil
}

func (r *MemoryRepository) SaveCalculation(ctx context.Context, c Calculation) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	c.CreatedAt = r.now()
	r.calcs = append(r.calcs, c)
	return c.ID, nil
}

func (r *MemoryRepository) ListCalculations(ctx context.Context, userID int) ([]Calculation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Calculation
	for _, c := range r.calcs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) GetCalculation(ctx context.Context, userID, id int) (Calculation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calcs {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return Calculation{}, ErrNotFound
}
