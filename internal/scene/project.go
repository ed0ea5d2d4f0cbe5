package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// The .racan project file format.

const ProjectFileVersion = 1

var ErrInvalidProject = errors.New("scene: invalid project file")

// ProjectMeta describes the saved project.
type ProjectMeta struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// CanvasSize is the persisted frame dimensions.
type CanvasSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ProjectFile is the on-disk shape of a saved project.
type ProjectFile struct {
	Meta          ProjectMeta `json:"meta"`
	Elements      []Element   `json:"elements"`
	CanvasSize    CanvasSize  `json:"canvasSize"`
	CanvasBg      string      `json:"canvasBg"`
	CanvasBgImage string      `json:"canvasBgImage,omitempty"`
}

// EncodeProject serializes the scene as a project file.
func EncodeProject(name string, s *Scene, now time.Time) ([]byte, error) {
	pf := ProjectFile{
		Meta: ProjectMeta{
			Name:      name,
			UpdatedAt: now.UTC(),
			Version:   ProjectFileVersion,
		},
		Elements:      s.Elements,
		CanvasSize:    CanvasSize{Width: s.Frame.Width, Height: s.Frame.Height},
		CanvasBg:      s.Frame.Background,
		CanvasBgImage: s.Frame.BackgroundImage,
	}
	if pf.Elements == nil {
		pf.Elements = []Element{}
	}
	return json.MarshalIndent(pf, "", "  ")
}

// DecodeProject parses and validates a project file. Structural problems
// (missing or non-array elements, missing or non-positive canvas size, any
// undecodable element) return ErrInvalidProject so callers can keep their
// current scene untouched.
func DecodeProject(data []byte) (*ProjectFile, error) {
	var probe struct {
		Meta       ProjectMeta     `json:"meta"`
		Elements   json.RawMessage `json:"elements"`
		CanvasSize *CanvasSize     `json:"canvasSize"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	trimmed := bytes.TrimSpace(probe.Elements)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: elements must be an array", ErrInvalidProject)
	}
	if probe.CanvasSize == nil || probe.CanvasSize.Width <= 0 || probe.CanvasSize.Height <= 0 {
		return nil, fmt.Errorf("%w: missing or invalid canvasSize", ErrInvalidProject)
	}

	var pf ProjectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	if pf.Elements == nil {
		pf.Elements = []Element{}
	}
	return &pf, nil
}

// Load replaces the scene's contents with the project file's.
func (s *Scene) Load(pf *ProjectFile) {
	s.Replace(pf.Elements)
	s.Frame = Frame{
		Width:           pf.CanvasSize.Width,
		Height:          pf.CanvasSize.Height,
		Background:      pf.CanvasBg,
		BackgroundImage: pf.CanvasBgImage,
	}
}
