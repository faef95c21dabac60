package poll

import "strings"

// MinOptions is the smallest option set a poll may be created with.
const MinOptions = 2

// DraftOptions is the ordered list of option texts being assembled before
// a poll is submitted. Operations return a new collection instead of
// mutating in place, so callers never alias intermediate states.
type DraftOptions []string

// NewDraft starts a draft with the minimum two empty rows.
func NewDraft() DraftOptions {
	return DraftOptions{"", ""}
}

// InsertAt returns a copy with text inserted at index i. Out-of-range
// indexes clamp to the nearest end.
func (d DraftOptions) InsertAt(i int, text string) DraftOptions {
	if i < 0 {
		i = 0
	}
	if i > len(d) {
		i = len(d)
	}
	out := make(DraftOptions, 0, len(d)+1)
	out = append(out, d[:i]...)
	out = append(out, text)
	out = append(out, d[i:]...)
	return out
}

// RemoveAt returns a copy with the row at index i removed. The draft
// never shrinks below MinOptions; removals that would are ignored.
func (d DraftOptions) RemoveAt(i int) DraftOptions {
	if i < 0 || i >= len(d) || len(d) <= MinOptions {
		return d.clone()
	}
	out := make(DraftOptions, 0, len(d)-1)
	out = append(out, d[:i]...)
	out = append(out, d[i+1:]...)
	return out
}

// Set returns a copy with the row at index i replaced by text.
func (d DraftOptions) Set(i int, text string) DraftOptions {
	out := d.clone()
	if i >= 0 && i < len(out) {
		out[i] = text
	}
	return out
}

// Trimmed returns the non-empty rows with surrounding whitespace removed.
func (d DraftOptions) Trimmed() []string {
	out := make([]string, 0, len(d))
	for _, text := range d {
		if t := strings.TrimSpace(text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks the draft before any store write: every row must be
// non-empty and at least MinOptions rows must remain after trimming.
func (d DraftOptions) Validate() error {
	trimmed := d.Trimmed()
	if len(trimmed) != len(d) {
		return NewValidationError("please fill in all options")
	}
	if len(trimmed) < MinOptions {
		return NewValidationError("a poll needs at least %d options", MinOptions)
	}
	return nil
}

func (d DraftOptions) clone() DraftOptions {
	out := make(DraftOptions, len(d))
	copy(out, d)
	return out
}
