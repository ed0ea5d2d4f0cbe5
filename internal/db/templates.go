package db

import (
	"context"
	"encoding/json"
	"time"
)

type Template struct {
	ID         string
	OwnerID    string
	Name       string
	Elements   json.RawMessage
	CanvasSize json.RawMessage
	CanvasBg   string
	Thumbnail  string
	IsPublic   bool
	CreatedAt  time.Time

	// Joined from users for gallery listings.
	OwnerName   string
	OwnerAvatar string
}

const templateColumns = `
	t.id, t.owner_id, t.name, t.elements, t.canvas_size, t.canvas_bg,
	t.thumbnail, t.is_public, t.created_at, u.display_name, u.avatar_url`

type CreateTemplateParams struct {
	ID         string
	OwnerID    string
	Name       string
	Elements   json.RawMessage
	CanvasSize json.RawMessage
	CanvasBg   string
	Thumbnail  string
	IsPublic   bool
}

func (q *Queries) CreateTemplate(ctx context.Context, p CreateTemplateParams) (Template, error) {
	row := q.pool.QueryRow(ctx, `
		WITH t AS (
			INSERT INTO templates (id, owner_id, name, elements, canvas_size, canvas_bg, thumbnail, is_public)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		)
		SELECT `+templateColumns+` FROM t JOIN users u ON u.id = t.owner_id`,
		p.ID, p.OwnerID, p.Name, p.Elements, p.CanvasSize, p.CanvasBg, p.Thumbnail, p.IsPublic)
	return scanTemplate(row)
}

func (q *Queries) GetTemplate(ctx context.Context, id string) (Template, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT `+templateColumns+`
		FROM templates t JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1`, id)
	return scanTemplate(row)
}

type ListTemplatesParams struct {
	OwnerID string
	Limit   int32
	Offset  int32
}

func (q *Queries) ListTemplatesByOwner(ctx context.Context, p ListTemplatesParams) ([]Template, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT `+templateColumns+`
		FROM templates t JOIN users u ON u.id = t.owner_id
		WHERE t.owner_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3`, p.OwnerID, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

type ListPublicTemplatesParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListPublicTemplates(ctx context.Context, p ListPublicTemplatesParams) ([]Template, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT `+templateColumns+`
		FROM templates t JOIN users u ON u.id = t.owner_id
		WHERE t.is_public
		ORDER BY t.created_at DESC
		LIMIT $1 OFFSET $2`, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

func (q *Queries) CountPublicTemplates(ctx context.Context) (int64, error) {
	var n int64
	err := q.pool.QueryRow(ctx, `SELECT count(*) FROM templates WHERE is_public`).Scan(&n)
	return n, err
}

type UpdateTemplateParams struct {
	ID         string
	Name       string
	Elements   json.RawMessage
	CanvasSize json.RawMessage
	CanvasBg   string
	Thumbnail  string
	IsPublic   bool
}

func (q *Queries) UpdateTemplate(ctx context.Context, p UpdateTemplateParams) (Template, error) {
	row := q.pool.QueryRow(ctx, `
		WITH t AS (
			UPDATE templates
			SET name = $2, elements = $3, canvas_size = $4, canvas_bg = $5,
			    thumbnail = $6, is_public = $7
			WHERE id = $1
			RETURNING *
		)
		SELECT `+templateColumns+` FROM t JOIN users u ON u.id = t.owner_id`,
		p.ID, p.Name, p.Elements, p.CanvasSize, p.CanvasBg, p.Thumbnail, p.IsPublic)
	return scanTemplate(row)
}

func (q *Queries) DeleteTemplate(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	return err
}

func scanTemplate(row rowScanner) (Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Elements, &t.CanvasSize,
		&t.CanvasBg, &t.Thumbnail, &t.IsPublic, &t.CreatedAt,
		&t.OwnerName, &t.OwnerAvatar)
	return t, err
}

type templateRows interface {
	rowScanner
	Next() bool
	Err() error
}

func collectTemplates(rows templateRows) ([]Template, error) {
	out := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
