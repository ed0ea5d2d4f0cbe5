package scene

import (
	"github.com/jinzhu/copier"

	"github.com/racan/racan/backend-go/internal/typeid"
)

// Frame is the canvas: its size, background color and optional cover-fit
// background image.
type Frame struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Background      string  `json:"background"`
	BackgroundImage string  `json:"backgroundImage,omitempty"`
}

// Scene is the ordered element list plus the frame. Order is paint order:
// index 0 paints first (bottom).
type Scene struct {
	Elements []Element `json:"elements"`
	Frame    Frame     `json:"frame"`
}

// New returns an empty scene with the given canvas size and a white
// background.
func New(width, height float64) *Scene {
	return &Scene{
		Frame: Frame{Width: width, Height: height, Background: "#ffffff"},
	}
}

// DuplicateOffset is applied to both axes when duplicating or pasting.
const DuplicateOffset = 20.0

// Direction names the two reorder targets.
type Direction int

const (
	ToFront Direction = iota
	ToBack
)

func (s *Scene) index(id string) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Element returns a pointer to the element with the given id, or nil.
// The pointer is invalidated by any structural mutation.
func (s *Scene) Element(id string) *Element {
	if i := s.index(id); i >= 0 {
		return &s.Elements[i]
	}
	return nil
}

// AddElement appends an element on top of the stack, assigning an id when
// the caller left it empty, and returns the id.
func (s *Scene) AddElement(el Element) string {
	if el.ID == "" {
		el.ID = typeid.NewElementID()
	}
	s.Elements = append(s.Elements, el)
	return el.ID
}

// UpdateElement applies mutate to the element and then normalizes negative
// dimensions into flips. Unknown ids are a no-op.
func (s *Scene) UpdateElement(id string, mutate func(*Element)) bool {
	el := s.Element(id)
	if el == nil {
		return false
	}
	mutate(el)
	normalize(el)
	return true
}

// UpdateElementTransient applies mutate without normalization. Used for
// in-flight gesture updates where negative sizes are legal intermediate
// state.
func (s *Scene) UpdateElementTransient(id string, mutate func(*Element)) bool {
	el := s.Element(id)
	if el == nil {
		return false
	}
	mutate(el)
	return true
}

// normalize folds negative width/height into position shifts and scale-sign
// flips, so committed elements always have positive dimensions.
func normalize(el *Element) {
	if el.Width < 0 {
		el.X += el.Width
		el.Width = -el.Width
		el.ScaleX = -el.ScaleX
	}
	if el.Height < 0 {
		el.Y += el.Height
		el.Height = -el.Height
		el.ScaleY = -el.ScaleY
	}
}

// DeleteElement removes the element. Unknown ids are a no-op.
func (s *Scene) DeleteElement(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.Elements = append(s.Elements[:i], s.Elements[i+1:]...)
	return true
}

// DuplicateElement deep-copies the element, gives it a fresh id, offsets it
// and places it on top. Returns the new id.
func (s *Scene) DuplicateElement(id string) (string, bool) {
	el := s.Element(id)
	if el == nil {
		return "", false
	}
	dup := CloneElement(*el)
	dup.ID = typeid.NewElementID()
	dup.X += DuplicateOffset
	dup.Y += DuplicateOffset
	s.Elements = append(s.Elements, dup)
	return dup.ID, true
}

// Reorder moves the element to the top or bottom of the paint order.
func (s *Scene) Reorder(id string, dir Direction) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	el := s.Elements[i]
	s.Elements = append(s.Elements[:i], s.Elements[i+1:]...)
	if dir == ToFront {
		s.Elements = append(s.Elements, el)
	} else {
		s.Elements = append([]Element{el}, s.Elements...)
	}
	return true
}

// Clone returns a deep copy of the scene. Payload pointers are never shared
// between the copy and the original.
func (s *Scene) Clone() *Scene {
	out := &Scene{}
	// copier only errors on type mismatches, which cannot happen here.
	_ = copier.CopyWithOption(out, s, copier.Option{DeepCopy: true})
	if s.Elements != nil && out.Elements == nil {
		out.Elements = []Element{}
	}
	return out
}

// CloneElement deep-copies a single element.
func CloneElement(el Element) Element {
	var out Element
	_ = copier.CopyWithOption(&out, &el, copier.Option{DeepCopy: true})
	return out
}

// CloneElements deep-copies an element slice.
func CloneElements(els []Element) []Element {
	if els == nil {
		return nil
	}
	out := make([]Element, len(els))
	for i := range els {
		out[i] = CloneElement(els[i])
	}
	return out
}

// Replace swaps in a snapshot of elements, deep-copied so later edits never
// leak back into the snapshot owner.
func (s *Scene) Replace(els []Element) {
	s.Elements = CloneElements(els)
	if s.Elements == nil {
		s.Elements = []Element{}
	}
}
