package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"deliveryOps/models"
)

// linkedUsersQuery selects every user registered through Cognito. It takes no
// parameters so it runs unchanged on SQLite and PostgreSQL.
const linkedUsersQuery = `SELECT email, role, cognito_sub FROM users WHERE cognito_sub IS NOT NULL`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FetchLinkedUsers returns (email, role, cognito_sub) for users with a Cognito subject.
func (r *UserRepository) FetchLinkedUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, linkedUsersQuery+` ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Email, &u.Role, &u.CognitoSub); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a user without a Cognito subject. SQLite only, like the other
// fixture helpers below.
// Role defaults to CUSTOMER when empty.
func (r *UserRepository) Create(ctx context.Context, email, role string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if role == "" {
		role = models.RoleCustomer
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO users (email, role) VALUES (?, ?)`, email, role)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Email: email, Role: role}, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var (
		u   models.User
		sub sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, email, role, cognito_sub FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.Role, &sub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.CognitoSub = sub.String
	return &u, nil
}

// LinkSubject records the Cognito subject for the given email.
func (r *UserRepository) LinkSubject(ctx context.Context, email, sub string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE users SET cognito_sub = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`, sub, email)
	return err
}

func (r *UserRepository) UpdateRoleByEmail(ctx context.Context, email, role string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`, role, email)
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}
