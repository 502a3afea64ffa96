package markup

import (
	"fmt"
	"image"
	"iter"
	"slices"

	"github.com/esimov/markup/geom"
)

// Document owns the background image and the ordered annotation objects.
// Insertion order is paint order: later objects are painted on top.
// A Document is not safe for concurrent use; take a Clone to hand a
// snapshot to another goroutine.
type Document struct {
	background *image.NRGBA
	objects    []Object
	crop       *geom.Rect
	nextID     ID
}

// NewDocument returns an empty document over the given background.
// The background must not be modified afterwards.
func NewDocument(bg *image.NRGBA) *Document {
	return &Document{background: bg, nextID: 1}
}

// Background returns the background image.
func (d *Document) Background() *image.NRGBA {
	return d.background
}

// Bounds returns the background extent in canvas space.
func (d *Document) Bounds() geom.Rect {
	if d.background == nil {
		return geom.Rect{}
	}
	return geomBounds(d.background.Bounds())
}

// Len returns the number of objects.
func (d *Document) Len() int {
	return len(d.objects)
}

// Add appends obj on top of the paint order under a fresh identifier,
// which is returned. The object's own ID field is ignored.
func (d *Document) Add(obj Object) ID {
	obj.ID = d.nextID
	d.nextID++
	d.objects = append(d.objects, obj.Clone())
	return obj.ID
}

// insert places obj at index keeping its identifier. A zero identifier is
// assigned a fresh one. Index -1 or len appends.
func (d *Document) insert(obj Object, index int) (ID, error) {
	if index < 0 {
		index = len(d.objects)
	}
	if index > len(d.objects) {
		return 0, fmt.Errorf("insert at %d: %w", index, ErrIndexOutOfRange)
	}
	if obj.ID == 0 {
		obj.ID = d.nextID
	} else if d.IndexOf(obj.ID) >= 0 {
		return 0, fmt.Errorf("insert object %d: %w", obj.ID, ErrDuplicateID)
	}
	if obj.ID >= d.nextID {
		d.nextID = obj.ID + 1
	}
	d.objects = slices.Insert(d.objects, index, obj.Clone())
	return obj.ID, nil
}

// IndexOf returns the paint order position of id, or -1.
func (d *Document) IndexOf(id ID) int {
	return slices.IndexFunc(d.objects, func(o Object) bool { return o.ID == id })
}

// Remove deletes the object with the given identifier. The remaining
// objects keep their order and identifiers.
func (d *Document) Remove(id ID) error {
	i := d.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("remove object %d: %w", id, ErrNotFound)
	}
	d.objects = slices.Delete(d.objects, i, i+1)
	return nil
}

// Get returns a copy of the object with the given identifier.
func (d *Document) Get(id ID) (Object, error) {
	i := d.IndexOf(id)
	if i < 0 {
		return Object{}, fmt.Errorf("get object %d: %w", id, ErrNotFound)
	}
	return d.objects[i].Clone(), nil
}

// Update calls fn with a mutable reference to the object. The identifier
// can not be changed through fn.
func (d *Document) Update(id ID, fn func(*Object)) error {
	i := d.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("update object %d: %w", id, ErrNotFound)
	}
	fn(&d.objects[i])
	d.objects[i].ID = id
	return nil
}

// Replace swaps the stored object with obj, keeping the identifier.
func (d *Document) Replace(id ID, obj Object) error {
	return d.Update(id, func(o *Object) { *o = obj.Clone() })
}

// Reorder moves the object to index, shifting the others.
func (d *Document) Reorder(id ID, index int) error {
	i := d.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("reorder object %d: %w", id, ErrNotFound)
	}
	if index < 0 || index >= len(d.objects) {
		return fmt.Errorf("reorder object %d to %d: %w", id, index, ErrIndexOutOfRange)
	}
	obj := d.objects[i]
	d.objects = slices.Delete(d.objects, i, i+1)
	d.objects = slices.Insert(d.objects, index, obj)
	return nil
}

// SetCrop sets the export rectangle, clamped to the background bounds.
// A nil rect removes the crop. A rect without area, before or after
// clamping, is rejected with ErrDegenerateRegion and the prior crop is kept.
func (d *Document) SetCrop(r *geom.Rect) error {
	if r == nil {
		d.crop = nil
		return nil
	}
	c := r.Canon()
	if c.Empty() {
		return fmt.Errorf("crop %v: %w", c, ErrDegenerateRegion)
	}
	c = c.Intersect(d.Bounds())
	if c.Empty() {
		return fmt.Errorf("crop %v outside the image: %w", *r, ErrDegenerateRegion)
	}
	d.crop = &c
	return nil
}

// Crop returns a copy of the crop rectangle, or nil if there is none.
func (d *Document) Crop() *geom.Rect {
	if d.crop == nil {
		return nil
	}
	c := *d.crop
	return &c
}

// ExportBounds returns the crop rectangle or the full background extent.
func (d *Document) ExportBounds() geom.Rect {
	if d.crop != nil {
		return *d.crop
	}
	return d.Bounds()
}

// Objects returns the objects in paint order. The slice is a copy but the
// objects share geometry with the document and must be treated as read only.
func (d *Document) Objects() []Object {
	return slices.Clone(d.objects)
}

// All iterates the objects in paint order.
func (d *Document) All() iter.Seq2[int, Object] {
	return func(yield func(int, Object) bool) {
		for i, o := range d.objects {
			if !yield(i, o) {
				return
			}
		}
	}
}

// Clone returns a deep snapshot of the document. The background image is
// shared since it is never mutated.
func (d *Document) Clone() *Document {
	c := &Document{
		background: d.background,
		objects:    make([]Object, len(d.objects)),
		crop:       d.Crop(),
		nextID:     d.nextID,
	}
	for i, o := range d.objects {
		c.objects[i] = o.Clone()
	}
	return c
}

// nextMarker returns the number the next marker should carry.
func (d *Document) nextMarker() int {
	n := 0
	for _, o := range d.objects {
		if b, ok := o.Shape.(Badge); ok && b.Number > n {
			n = b.Number
		}
	}
	return n + 1
}
