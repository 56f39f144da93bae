package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mdx/mdx/internal/chart"
	"github.com/mdx/mdx/internal/platform/privacy"
)

// PGRepo persists sessions in Postgres with the chart stored as JSONB.
// When an encryptor is configured the intake identity fields are encrypted
// at rest; everything else in the chart is clinical content keyed only by
// the session id.
type PGRepo struct {
	pool *pgxpool.Pool
	enc  *privacy.FieldEncryptor
}

// NewPGRepo returns a Postgres-backed repository. enc may be nil, in which
// case identity fields are stored in the clear.
func NewPGRepo(pool *pgxpool.Pool, enc *privacy.FieldEncryptor) *PGRepo {
	return &PGRepo{pool: pool, enc: enc}
}

const sessionCols = `id, clinician, chart, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, sess *Session) error {
	now := time.Now().UTC()
	sess.ID = uuid.New()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	raw, err := r.chartJSON(sess)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO sessions (id, clinician, chart, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)`,
		sess.ID, sess.Clinician, raw, sess.CreatedAt, sess.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = $1`, id))
}

func (r *PGRepo) Update(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()

	raw, err := r.chartJSON(sess)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET clinician=$2, chart=$3, updated_at=$4
		WHERE id = $1`,
		sess.ID, sess.Clinician, raw, sess.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]*Session, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionCols+` FROM sessions ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		sess, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// chartJSON marshals the chart for storage, encrypting the intake identity
// fields first when an encryptor is configured. The caller's chart is left
// untouched.
func (r *PGRepo) chartJSON(sess *Session) ([]byte, error) {
	c := sess.Chart
	if r.enc != nil {
		cp, err := clone(sess)
		if err != nil {
			return nil, err
		}
		if err := encryptIntake(&cp.Chart.Intake, r.enc); err != nil {
			return nil, err
		}
		c = cp.Chart
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return raw, nil
}

func (r *PGRepo) scanRow(row pgx.Row) (*Session, error) {
	var sess Session
	var raw []byte
	err := row.Scan(&sess.ID, &sess.Clinician, &raw, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var c chart.Chart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if r.enc != nil {
		if err := decryptIntake(&c.Intake, r.enc); err != nil {
			return nil, err
		}
	}
	sess.Chart = &c
	return &sess, nil
}

// encryptIntake and decryptIntake are shared by the Postgres and Redis
// stores. Empty fields pass through so charts written before intake stay
// readable.

func encryptIntake(in *chart.Intake, enc *privacy.FieldEncryptor) error {
	if in.PatientName != "" {
		ct, err := enc.Encrypt(in.PatientName)
		if err != nil {
			return fmt.Errorf("encrypt patient name: %w", err)
		}
		in.PatientName = ct
	}
	if in.DateOfBirth != "" {
		ct, err := enc.Encrypt(in.DateOfBirth)
		if err != nil {
			return fmt.Errorf("encrypt date of birth: %w", err)
		}
		in.DateOfBirth = ct
	}
	return nil
}

func decryptIntake(in *chart.Intake, enc *privacy.FieldEncryptor) error {
	if in.PatientName != "" {
		pt, err := enc.Decrypt(in.PatientName)
		if err != nil {
			return fmt.Errorf("decrypt patient name: %w", err)
		}
		in.PatientName = pt
	}
	if in.DateOfBirth != "" {
		pt, err := enc.Decrypt(in.DateOfBirth)
		if err != nil {
			return fmt.Errorf("decrypt date of birth: %w", err)
		}
		in.DateOfBirth = pt
	}
	return nil
}
