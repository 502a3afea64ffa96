package markup

import (
	"fmt"

	"github.com/esimov/markup/geom"
)

// Command is an atomic, reversible edit of a Document. Commands are plain
// data: Inverse is only meaningful after the command has been applied.
type Command interface {
	Apply(d *Document) error
	Inverse() Command
}

// AddObject inserts Object at Index, or on top when Index is negative.
// A zero Object.ID receives a fresh identifier on the first Apply and keeps
// it for every later redo.
type AddObject struct {
	Object Object
	Index  int
}

// NewAddObject returns a command adding obj on top of the paint order.
func NewAddObject(obj Object) *AddObject {
	return &AddObject{Object: obj, Index: -1}
}

func (c *AddObject) Apply(d *Document) error {
	if c.Index < 0 {
		c.Index = d.Len()
	}
	id, err := d.insert(c.Object, c.Index)
	if err != nil {
		return fmt.Errorf("add %s: %w", c.Object.Kind, err)
	}
	c.Object.ID = id
	return nil
}

func (c *AddObject) Inverse() Command {
	return &RemoveObject{ID: c.Object.ID, Object: c.Object.Clone(), Index: c.Index}
}

// RemoveObject deletes an object. Apply records the removed object and its
// position so the inverse can restore it.
type RemoveObject struct {
	ID     ID
	Object Object
	Index  int
}

func (c *RemoveObject) Apply(d *Document) error {
	i := d.IndexOf(c.ID)
	if i < 0 {
		return fmt.Errorf("remove object %d: %w", c.ID, ErrNotFound)
	}
	obj, _ := d.Get(c.ID)
	if err := d.Remove(c.ID); err != nil {
		return err
	}
	c.Object, c.Index = obj, i
	return nil
}

func (c *RemoveObject) Inverse() Command {
	return &AddObject{Object: c.Object.Clone(), Index: c.Index}
}

// ModifyObject replaces the state of an object.
type ModifyObject struct {
	ID       ID
	Old, New Object
}

func (c *ModifyObject) Apply(d *Document) error {
	obj := c.New
	obj.ID = c.ID
	if err := d.Replace(c.ID, obj); err != nil {
		return fmt.Errorf("modify: %w", err)
	}
	return nil
}

func (c *ModifyObject) Inverse() Command {
	return &ModifyObject{ID: c.ID, Old: c.New.Clone(), New: c.Old.Clone()}
}

// ReorderObject moves an object in the paint order.
type ReorderObject struct {
	ID       ID
	From, To int
}

func (c *ReorderObject) Apply(d *Document) error {
	from := d.IndexOf(c.ID)
	if err := d.Reorder(c.ID, c.To); err != nil {
		return err
	}
	c.From = from
	return nil
}

func (c *ReorderObject) Inverse() Command {
	return &ReorderObject{ID: c.ID, From: c.To, To: c.From}
}

// SetCrop replaces the crop rectangle. Apply records the previous crop and
// the clamped rectangle actually stored.
type SetCrop struct {
	Old, New *geom.Rect
}

func (c *SetCrop) Apply(d *Document) error {
	old := d.Crop()
	if err := d.SetCrop(c.New); err != nil {
		return err
	}
	c.Old, c.New = old, d.Crop()
	return nil
}

func (c *SetCrop) Inverse() Command {
	return &SetCrop{Old: copyRect(c.New), New: copyRect(c.Old)}
}

// Batch applies several commands as one undoable step. Apply is all or
// nothing: when a command fails the ones already applied are reverted.
type Batch struct {
	Commands []Command
}

func (c *Batch) Apply(d *Document) error {
	for i, cmd := range c.Commands {
		if err := cmd.Apply(d); err != nil {
			for j := i - 1; j >= 0; j-- {
				// The prefix was applied to this very document, so its inverse can not fail.
				_ = c.Commands[j].Inverse().Apply(d)
			}
			return fmt.Errorf("batch step %d: %w", i, err)
		}
	}
	return nil
}

func (c *Batch) Inverse() Command {
	inv := make([]Command, len(c.Commands))
	for i, cmd := range c.Commands {
		inv[len(c.Commands)-1-i] = cmd.Inverse()
	}
	return &Batch{Commands: inv}
}

func copyRect(r *geom.Rect) *geom.Rect {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
