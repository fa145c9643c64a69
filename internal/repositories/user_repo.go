package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"notipayBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) error {
	const q = `
        INSERT INTO users (id, username, email, phone, hashed_password, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, q,
		user.ID, user.Username, user.Email, user.Phone,
		user.HashedPassword, user.Role, user.CreatedAt)
	return err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	const q = `SELECT id, username, email, phone, hashed_password, role,
        COALESCE(fcm_token, ''), created_at FROM users WHERE id = $1`
	return r.scanUser(r.DB.QueryRowContext(ctx, q, id))
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	const q = `SELECT id, username, email, phone, hashed_password, role,
        COALESCE(fcm_token, ''), created_at FROM users WHERE username = $1`
	return r.scanUser(r.DB.QueryRowContext(ctx, q, username))
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	const q = `SELECT id, username, email, phone, hashed_password, role,
        COALESCE(fcm_token, ''), created_at FROM users ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Phone,
			&u.HashedPassword, &u.Role, &u.FCMToken, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	const q = `UPDATE users SET fcm_token = $1 WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, q, token, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SaveSession(ctx context.Context, session models.Session) error {
	const q = `
        INSERT INTO sessions (user_id, refresh_token, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET
            refresh_token = EXCLUDED.refresh_token,
            expires_at = EXCLUDED.expires_at`
	_, err := r.DB.ExecContext(ctx, q, session.UserID, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	const q = `SELECT user_id, refresh_token, expires_at FROM sessions WHERE refresh_token = $1`
	var s models.Session
	err := r.DB.QueryRowContext(ctx, q, refreshToken).Scan(&s.UserID, &s.RefreshToken, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, models.ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	return err
}

func (r *UserRepository) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone,
		&u.HashedPassword, &u.Role, &u.FCMToken, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}
