package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/japanime/backend/internal/models"
	"github.com/lib/pq"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// ErrConflict is returned when an insert violates the username or email unique index.
var ErrConflict = errors.New("username or email already exists")

const uniqueViolation = "23505"

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = "id, username, email, password_hash, age, profile_photo, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Age,
		&user.ProfilePhoto,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, age *int) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, age)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	row := r.DB.QueryRowContext(ctx, query, username, email, passwordHash, age)

	user, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrConflict
		}
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}

// ==========================
// Get By Identifier (username or email)
// ==========================
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $1
	`
	return scanUser(r.DB.QueryRowContext(ctx, query, identifier))
}

// ==========================
// Uniqueness pre-check
// ==========================
// ExistsByUsernameOrEmail reports whether any user already holds the given
// username or email. The check-then-insert pair is not atomic; a concurrent
// duplicate insert is still caught by the unique index in Create.
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE username = $1 OR email = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ==========================
// Update User (partial)
// ==========================

// UserPatch carries the fields of a partial profile update. Nil pointers are
// untouched. Age is applied only when AgeSet is true; a nil Age then writes
// NULL, clearing the column.
type UserPatch struct {
	Username     *string
	Email        *string
	Age          *int
	AgeSet       bool
	PasswordHash *string
}

func (p UserPatch) isEmpty() bool {
	return p.Username == nil && p.Email == nil && !p.AgeSet && p.PasswordHash == nil
}

// Update applies the non-nil patch fields and returns the updated user.
// An empty patch is a read: the current row is returned unchanged.
func (r *UserRepo) Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	if patch.isEmpty() {
		return r.GetByID(ctx, id)
	}

	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.AgeSet {
		add("age", patch.Age)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(set, ", "), len(args), userColumns)

	return scanUser(r.DB.QueryRowContext(ctx, query, args...))
}

// ==========================
// Set Profile Photo
// ==========================
// SetProfilePhoto stores the photo URL for a user; nil clears it.
func (r *UserRepo) SetProfilePhoto(ctx context.Context, id int64, url *string) (*models.User, error) {
	query := `
		UPDATE users
		SET profile_photo = $1
		WHERE id = $2
		RETURNING ` + userColumns

	return scanUser(r.DB.QueryRowContext(ctx, query, url, id))
}

// ==========================
// List Photo URLs
// ==========================
// ListPhotoURLs returns every non-null profile_photo value. Used by the orphan sweep.
func (r *UserRepo) ListPhotoURLs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT profile_photo FROM users WHERE profile_photo IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
