package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo keeps sessions in process memory. It is the default store for
// development and tests. List preserves creation order.
type MemoryRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	order    []uuid.UUID
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (r *MemoryRepo) Create(ctx context.Context, sess *Session) error {
	now := time.Now().UTC()
	sess.ID = uuid.New()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	stored, err := clone(sess)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = stored
	r.order = append(r.order, sess.ID)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	stored, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return clone(stored)
}

func (r *MemoryRepo) Update(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()

	stored, err := clone(sess)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sess.ID]; !ok {
		return ErrNotFound
	}
	r.sessions[sess.ID] = stored
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]*Session, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.order)
	if offset >= total {
		return []*Session{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]*Session, 0, end-offset)
	for _, id := range r.order[offset:end] {
		cp, err := clone(r.sessions[id])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, cp)
	}
	return out, total, nil
}
