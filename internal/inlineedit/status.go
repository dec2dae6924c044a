package inlineedit

import "fmt"

// Status is the commit state of a Field.
type Status int

const (
	// StatusIdle means nothing is pending and there is nothing to show.
	StatusIdle Status = iota
	// StatusEditing means the draft differs from the committed value.
	StatusEditing
	// StatusSaving means a commit is in flight.
	StatusSaving
	// StatusSaved means the last commit succeeded.
	StatusSaved
	// StatusError means the last commit failed.
	StatusError
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusEditing:
		return "Editing"
	case StatusSaving:
		return "Saving"
	case StatusSaved:
		return "Saved"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Tone is the color family a status is drawn in. Renderers map it to a
// concrete color.
type Tone int

const (
	ToneNone Tone = iota
	ToneWarning
	ToneMuted
	ToneSuccess
	ToneError
)

// Affordance is what a renderer shows next to the field for a status.
type Affordance struct {
	Glyph string // empty for Idle
	Tone  Tone
	Label string // short accessible label, e.g. for help lines
}

// Affordance returns the display affordance for the status.
func (s Status) Affordance() Affordance {
	switch s {
	case StatusEditing:
		return Affordance{Glyph: "✚", Tone: ToneWarning, Label: "unsaved"}
	case StatusSaving:
		return Affordance{Glyph: "↻", Tone: ToneMuted, Label: "saving"}
	case StatusSaved:
		return Affordance{Glyph: "✓", Tone: ToneSuccess, Label: "saved"}
	case StatusError:
		return Affordance{Glyph: "✗", Tone: ToneError, Label: "failed"}
	default:
		return Affordance{}
	}
}
