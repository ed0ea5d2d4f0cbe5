package db

import (
	"context"
	"time"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
}

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) (User, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password, display_name, avatar_url, created_at`,
		p.ID, p.Email, p.Password, p.DisplayName)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, avatar_url, created_at
		FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, avatar_url, created_at
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

type UpdateUserProfileParams struct {
	ID          string
	DisplayName string
	AvatarURL   string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, p UpdateUserProfileParams) (User, error) {
	row := q.pool.QueryRow(ctx, `
		UPDATE users SET display_name = $2, avatar_url = $3
		WHERE id = $1
		RETURNING id, email, password, display_name, avatar_url, created_at`,
		p.ID, p.DisplayName, p.AvatarURL)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.AvatarURL, &u.CreatedAt)
	return u, err
}
