package markup

import (
	"fmt"
	"image"
	"slices"
)

// History records applied commands and drives undo and redo.
type History struct {
	applied []Command
	undone  []Command
	limit   int
}

// NewHistory returns a history keeping at most limit applied commands.
// A limit of zero or less keeps every command.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Apply applies cmd to d and records it. A command that fails is not
// recorded and leaves the undone stack intact.
func (h *History) Apply(d *Document, cmd Command) error {
	if err := cmd.Apply(d); err != nil {
		return err
	}
	h.applied = append(h.applied, cmd)
	h.undone = h.undone[:0]
	if h.limit > 0 && len(h.applied) > h.limit {
		n := len(h.applied) - h.limit
		clear(h.applied[:n])
		h.applied = h.applied[n:]
	}
	return nil
}

// Undo reverts the most recent command. It reports whether an undo occurred.
func (h *History) Undo(d *Document) (bool, error) {
	if len(h.applied) == 0 {
		return false, nil
	}
	cmd := h.applied[len(h.applied)-1]
	if err := cmd.Inverse().Apply(d); err != nil {
		return false, fmt.Errorf("undo: %w", err)
	}
	h.applied = h.applied[:len(h.applied)-1]
	h.undone = append(h.undone, cmd)
	return true, nil
}

// Redo reapplies the most recently undone command.
func (h *History) Redo(d *Document) (bool, error) {
	if len(h.undone) == 0 {
		return false, nil
	}
	cmd := h.undone[len(h.undone)-1]
	if err := cmd.Apply(d); err != nil {
		return false, fmt.Errorf("redo: %w", err)
	}
	h.undone = h.undone[:len(h.undone)-1]
	h.applied = append(h.applied, cmd)
	return true, nil
}

// CanUndo reports whether there is a command to undo.
func (h *History) CanUndo() bool { return len(h.applied) > 0 }

// CanRedo reports whether there is a command to redo.
func (h *History) CanRedo() bool { return len(h.undone) > 0 }

// Len returns the number of applied commands.
func (h *History) Len() int { return len(h.applied) }

// Applied returns the applied commands, oldest first.
func (h *History) Applied() []Command {
	return slices.Clone(h.applied)
}

// Replay rebuilds a document by applying the recorded commands to a fresh
// document over bg. For an unbounded history the result is identical to
// the live document.
func (h *History) Replay(bg *image.NRGBA) (*Document, error) {
	d := NewDocument(bg)
	for i, cmd := range h.applied {
		if err := cmd.Apply(d); err != nil {
			return nil, fmt.Errorf("replay step %d: %w", i, err)
		}
	}
	return d, nil
}
