package repository

import (
	"context"
	"database/sql"

	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/models"
)

const userColumns = `id, email, first_name, last_name, profile_image_url, username, role, created_at, updated_at`

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Upsert inserts a user or refreshes the identity fields of an existing one.
// The role of an existing user is never touched.
func (r *userRepo) Upsert(ctx context.Context, user *models.UpsertUser) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url, username, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_image_url = EXCLUDED.profile_image_url,
			updated_at = EXCLUDED.updated_at
	`
	ts := now()
	_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		user.ID, user.Email, user.FirstName, user.LastName, user.ProfileImageURL, user.Username,
		models.RoleReader, ts, ts,
	)
	if err != nil {
		return nil, translate(r.db, err)
	}
	return r.GetByID(ctx, user.ID)
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves a user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByUsername retrieves a user by username
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *userRepo) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role. It reports whether the user exists.
func (r *userRepo) SetRole(ctx context.Context, id string, role models.Role) (bool, error) {
	query := `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`
	return rowsAffected(r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), role, now(), id))
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var email, firstName, lastName, image, username sql.NullString

	err := row.Scan(
		&user.ID, &email, &firstName, &lastName, &image, &username,
		&user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Email = nullString(email)
	user.FirstName = nullString(firstName)
	user.LastName = nullString(lastName)
	user.ProfileImageURL = nullString(image)
	user.Username = nullString(username)
	return &user, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
