package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/racan/racan/backend-go/internal/db"
	"github.com/racan/racan/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("template not found")
	ErrForbidden = errors.New("forbidden")
)

type Service struct {
	queries *db.Queries
}

func NewService(queries *db.Queries) *Service {
	return &Service{queries: queries}
}

type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Elements    json.RawMessage `json:"elements"`
	CanvasSize  json.RawMessage `json:"canvasSize"`
	CanvasBg    string          `json:"canvasBg"`
	Thumbnail   string          `json:"thumbnail"`
	IsPublic    bool            `json:"isPublic"`
	OwnerName   string          `json:"ownerName"`
	OwnerAvatar string          `json:"ownerAvatar"`
	CreatedAt   string          `json:"createdAt"`
}

type SaveInput struct {
	Name       string          `json:"name"`
	Elements   json.RawMessage `json:"elements"`
	CanvasSize json.RawMessage `json:"canvasSize"`
	CanvasBg   string          `json:"canvasBg"`
	Thumbnail  string          `json:"thumbnail"`
	IsPublic   bool            `json:"isPublic"`
}

func (in *SaveInput) normalize() {
	if len(in.Elements) == 0 {
		in.Elements = json.RawMessage("[]")
	}
	if len(in.CanvasSize) == 0 {
		in.CanvasSize = json.RawMessage("{}")
	}
	if in.CanvasBg == "" {
		in.CanvasBg = "#ffffff"
	}
}

func (s *Service) Create(ctx context.Context, ownerID string, in SaveInput) (*Template, error) {
	in.normalize()
	dbTpl, err := s.queries.CreateTemplate(ctx, db.CreateTemplateParams{
		ID:         typeid.NewTemplateID(),
		OwnerID:    ownerID,
		Name:       in.Name,
		Elements:   in.Elements,
		CanvasSize: in.CanvasSize,
		CanvasBg:   in.CanvasBg,
		Thumbnail:  in.Thumbnail,
		IsPublic:   in.IsPublic,
	})
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return toTemplate(dbTpl), nil
}

func (s *Service) Get(ctx context.Context, templateID, userID string) (*Template, error) {
	dbTpl, err := s.queries.GetTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if !dbTpl.IsPublic && dbTpl.OwnerID != userID {
		return nil, ErrForbidden
	}
	return toTemplate(dbTpl), nil
}

func (s *Service) ListMine(ctx context.Context, ownerID string, page, limit int) ([]Template, error) {
	dbTpls, err := s.queries.ListTemplatesByOwner(ctx, db.ListTemplatesParams{
		OwnerID: ownerID,
		Limit:   int32(limit),
		Offset:  int32((page - 1) * limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return toTemplates(dbTpls), nil
}

type PublicPage struct {
	Templates []Template `json:"templates"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}

func (s *Service) ListPublic(ctx context.Context, page, limit int) (*PublicPage, error) {
	dbTpls, err := s.queries.ListPublicTemplates(ctx, db.ListPublicTemplatesParams{
		Limit:  int32(limit),
		Offset: int32((page - 1) * limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list public templates: %w", err)
	}
	total, err := s.queries.CountPublicTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("count public templates: %w", err)
	}
	return &PublicPage{
		Templates: toTemplates(dbTpls),
		Total:     total,
		Page:      page,
		Limit:     limit,
	}, nil
}

func (s *Service) Update(ctx context.Context, templateID, userID string, in SaveInput) (*Template, error) {
	if err := s.checkOwner(ctx, templateID, userID); err != nil {
		return nil, err
	}
	in.normalize()
	dbTpl, err := s.queries.UpdateTemplate(ctx, db.UpdateTemplateParams{
		ID:         templateID,
		Name:       in.Name,
		Elements:   in.Elements,
		CanvasSize: in.CanvasSize,
		CanvasBg:   in.CanvasBg,
		Thumbnail:  in.Thumbnail,
		IsPublic:   in.IsPublic,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update template: %w", err)
	}
	return toTemplate(dbTpl), nil
}

func (s *Service) Delete(ctx context.Context, templateID, userID string) error {
	if err := s.checkOwner(ctx, templateID, userID); err != nil {
		return err
	}
	return s.queries.DeleteTemplate(ctx, templateID)
}

func (s *Service) checkOwner(ctx context.Context, templateID, userID string) error {
	dbTpl, err := s.queries.GetTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get template: %w", err)
	}
	if dbTpl.OwnerID != userID {
		return ErrForbidden
	}
	return nil
}

func toTemplate(t db.Template) *Template {
	return &Template{
		ID:          t.ID,
		Name:        t.Name,
		Elements:    t.Elements,
		CanvasSize:  t.CanvasSize,
		CanvasBg:    t.CanvasBg,
		Thumbnail:   t.Thumbnail,
		IsPublic:    t.IsPublic,
		OwnerName:   t.OwnerName,
		OwnerAvatar: t.OwnerAvatar,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toTemplates(dbTpls []db.Template) []Template {
	out := make([]Template, len(dbTpls))
	for i, t := range dbTpls {
		out[i] = *toTemplate(t)
	}
	return out
}
