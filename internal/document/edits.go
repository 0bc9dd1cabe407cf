package document

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrOverlappingEdits is returned when two edits touch the same bytes.
	ErrOverlappingEdits = errors.New("overlapping edits")
	// ErrEditMismatch is returned when an edit's OldText guard does not match.
	ErrEditMismatch = errors.New("existing text does not match expected content")
	// ErrEditRange is returned for edits outside the text.
	ErrEditRange = errors.New("edit range out of bounds")
)

// TextEdit replaces text[Start:End] with NewText. A non-empty OldText must
// equal the replaced bytes.
type TextEdit struct {
	Start   int
	End     int
	NewText string
	OldText string
}

// Insert creates a zero-width edit at off.
func Insert(off int, text string) TextEdit {
	return TextEdit{Start: off, End: off, NewText: text}
}

// Delete removes [start, end).
func Delete(start, end int) TextEdit {
	return TextEdit{Start: start, End: end}
}

// ApplyEdits applies a set of non-overlapping edits computed against text
// and returns the new text. Insertions at the same offset keep their order.
func ApplyEdits(text []byte, edits []TextEdit) ([]byte, error) {
	type indexed struct {
		TextEdit
		order int
	}
	sorted := make([]indexed, len(edits))
	for i, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > len(text) {
			return nil, fmt.Errorf("%w: [%d, %d) in %d bytes", ErrEditRange, e.Start, e.End, len(text))
		}
		if e.OldText != "" && string(text[e.Start:e.End]) != e.OldText {
			return nil, fmt.Errorf("%w at [%d, %d)", ErrEditMismatch, e.Start, e.End)
		}
		sorted[i] = indexed{TextEdit: e, order: i}
	}
	// применяем с конца, чтобы смещения ещё не применённых правок не менялись
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start > sorted[j].Start
		}
		if sorted[i].End != sorted[j].End {
			return sorted[i].End > sorted[j].End
		}
		return sorted[i].order > sorted[j].order
	})
	for i := 1; i < len(sorted); i++ {
		if spansConflict(sorted[i-1].TextEdit, sorted[i].TextEdit) {
			return nil, fmt.Errorf("%w: [%d, %d) and [%d, %d)", ErrOverlappingEdits,
				sorted[i].Start, sorted[i].End, sorted[i-1].Start, sorted[i-1].End)
		}
	}

	out := append([]byte(nil), text...)
	for _, e := range sorted {
		suffix := append([]byte(nil), out[e.End:]...)
		out = append(append(out[:e.Start], e.NewText...), suffix...)
	}
	return out, nil
}

// spansConflict reports whether two edits' ranges overlap.
// Ranges are half-open. Two zero-length edits never conflict; a zero-length
// edit conflicts with a range that strictly contains its position.
func spansConflict(a, b TextEdit) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start < a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}
