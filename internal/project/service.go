package project

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
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("forbidden")
)

type Service struct {
	queries *db.Queries
}

func NewService(queries *db.Queries) *Service {
	return &Service{queries: queries}
}

type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt string          `json:"updatedAt"`
}

// Save stores a project document. A user keeps at most one project per
// name: saving an existing name overwrites its data.
func (s *Service) Save(ctx context.Context, userID, name string, data json.RawMessage) (*Project, error) {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	dbProj, err := s.queries.UpsertProject(ctx, db.UpsertProjectParams{
		ID:     typeid.NewProjectID(),
		UserID: userID,
		Name:   name,
		Data:   data,
	})
	if err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return toProject(dbProj), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	dbProj, err := s.queries.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	if dbProj.UserID != userID {
		return nil, ErrForbidden
	}
	return toProject(dbProj), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	dbProjects, err := s.queries.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(dbProjects))
	for i, p := range dbProjects {
		projects[i] = *toProject(p)
	}
	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	dbProj, err := s.queries.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get project: %w", err)
	}
	if dbProj.UserID != userID {
		return ErrForbidden
	}
	return s.queries.DeleteProject(ctx, projectID)
}

func toProject(p db.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		Data:      p.Data,
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
