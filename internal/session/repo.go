package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no session exists under the given id.
var ErrNotFound = errors.New("session not found")

// Repository persists sessions as a unit. Implementations assign the id and
// timestamps on Create and refresh UpdatedAt on Update.
type Repository interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Session, int, error)
}
