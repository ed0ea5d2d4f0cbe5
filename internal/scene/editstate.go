package scene

import "errors"

// Image editing is non-destructive: the original source is held while a
// preview is showing, so cancelling always restores it exactly.

var ErrNoEditSession = errors.New("scene: no image edit session in progress")

type editPhase int

const (
	editClean editPhase = iota
	editPreviewing
	editMasking
)

type editState struct {
	phase    editPhase
	original string
	maskBase string
}

// Editing reports whether the image has an uncommitted preview or mask.
func (img *Image) Editing() bool {
	return img.edit.phase != editClean
}

// BeginPreview starts a preview session, remembering the current source.
// Starting again while already previewing keeps the first original.
func (img *Image) BeginPreview() {
	if img.edit.phase == editClean {
		img.edit = editState{phase: editPreviewing, original: img.Src}
	}
}

// Preview swaps the displayed source while a session is open.
func (img *Image) Preview(src string) error {
	if img.edit.phase == editClean {
		return ErrNoEditSession
	}
	img.Src = src
	return nil
}

// BeginMask starts a masking session on top of the given base source.
func (img *Image) BeginMask(base string) {
	if img.edit.phase == editClean {
		img.edit = editState{phase: editMasking, original: img.Src}
	} else {
		img.edit.phase = editMasking
	}
	img.edit.maskBase = base
}

// Apply commits whatever is currently displayed and closes the session.
func (img *Image) Apply() error {
	if img.edit.phase == editClean {
		return ErrNoEditSession
	}
	img.edit = editState{}
	return nil
}

// Cancel restores the pre-session source and closes the session.
func (img *Image) Cancel() error {
	if img.edit.phase == editClean {
		return ErrNoEditSession
	}
	img.Src = img.edit.original
	img.edit = editState{}
	return nil
}

// MaskBase returns the base source of an active masking session.
func (img *Image) MaskBase() (string, bool) {
	if img.edit.phase != editMasking {
		return "", false
	}
	return img.edit.maskBase, true
}
