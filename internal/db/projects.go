package db

import (
	"context"
	"encoding/json"
	"time"
)

type Project struct {
	ID        string
	UserID    string
	Name      string
	Data      json.RawMessage
	UpdatedAt time.Time
}

type UpsertProjectParams struct {
	ID     string
	UserID string
	Name   string
	Data   json.RawMessage
}

// UpsertProject inserts a project or, when the user already has one with
// the same name, replaces its data in place keeping the original id.
func (q *Queries) UpsertProject(ctx context.Context, p UpsertProjectParams) (Project, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO projects (id, user_id, name, data, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, name)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		RETURNING id, user_id, name, data, updated_at`,
		p.ID, p.UserID, p.Name, p.Data)
	return scanProject(row)
}

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, user_id, name, data, updated_at
		FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (q *Queries) ListProjectsForUser(ctx context.Context, userID string) ([]Project, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT id, user_id, name, data, updated_at
		FROM projects WHERE user_id = $1
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func scanProject(row rowScanner) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Data, &p.UpdatedAt)
	return p, err
}
