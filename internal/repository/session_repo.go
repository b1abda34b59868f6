package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/models"
)

// sessionRepo is the concrete implementation of SessionRepository
type sessionRepo struct {
	db *database.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *database.DB) SessionRepository {
	return &sessionRepo{db: db}
}

// Get retrieves a session by id, expired or not
func (r *sessionRepo) Get(ctx context.Context, sid string) (*models.Session, error) {
	var session models.Session
	var data []byte

	err := r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind("SELECT sid, sess, expire FROM sessions WHERE sid = $1"), sid,
	).Scan(&session.SID, &data, &session.Expire)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &session.Data); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sid, err)
	}
	return &session, nil
}

// Put creates or replaces a session
func (r *sessionRepo) Put(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (sid, sess, expire) VALUES ($1, $2, $3)
		ON CONFLICT (sid) DO UPDATE SET sess = EXCLUDED.sess, expire = EXCLUDED.expire
	`
	_, err = r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		session.SID, string(data), session.Expire.UTC().Truncate(time.Microsecond),
	)
	return err
}

// Delete removes a session
func (r *sessionRepo) Delete(ctx context.Context, sid string) (bool, error) {
	return rowsAffected(r.db.ExecContext(ctx, r.db.Dialect.Rebind("DELETE FROM sessions WHERE sid = $1"), sid))
}

// PurgeExpired deletes sessions that expired at or before at
func (r *sessionRepo) PurgeExpired(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind("DELETE FROM sessions WHERE expire <= $1"), at.UTC().Truncate(time.Microsecond))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
