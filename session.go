package markup

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/esimov/markup/geom"
	"golang.org/x/text/unicode/norm"
)

// State is the interaction sub-state of a Session.
type State int

const (
	Idle State = iota
	Drawing
	Dragging
	ResizingHandle
	EditingText
	PanningView
)

func (s State) String() string {
	switch s {
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	case ResizingHandle:
		return "resizing"
	case EditingText:
		return "editing-text"
	case PanningView:
		return "panning"
	}
	return "idle"
}

// Preview is the transient state the compositor paints over the document.
type Preview struct {
	// Object is the object under construction or modification, if any.
	Object *Object
	// Replaces is the committed object hidden while Object stands in for it.
	Replaces ID
	// Selection is the selected object, zero when nothing is selected.
	Selection ID
	// Cursor is the caret offset, in runes, of the label being edited or -1.
	Cursor int
	// Crop reports that Object is the crop rectangle being edited.
	Crop bool
}

// Session turns input events into commands for the active tool. Live
// edits only ever touch a private copy of the object, the document is
// changed by applying the returned commands.
type Session struct {
	cfg     Config
	doc     *Document
	view    *geom.Transform
	measure TextMeasurer

	tool      Tool
	style     Style
	state     State
	selection ID
	space     bool

	draft  Object
	origin Object
	target ID
	handle Handle
	start  geom.Point
	last   geom.Point
	cursor int
	crop   bool
}

// NewSession returns a session reading doc and driving view. The session
// never mutates doc.
func NewSession(doc *Document, view *geom.Transform, cfg Config, m TextMeasurer) *Session {
	if m == nil {
		m = EstimateMeasurer
	}
	return &Session{
		cfg:     cfg,
		doc:     doc,
		view:    view,
		measure: m,
		tool:    cfg.InitialTool,
		style:   cfg.Style,
		cursor:  -1,
	}
}

// Tool returns the active tool.
func (s *Session) Tool() Tool { return s.tool }

// State returns the interaction sub-state.
func (s *Session) State() State { return s.state }

// Style returns the style applied to new objects.
func (s *Session) Style() Style { return s.style }

// Selection returns the selected object or zero.
func (s *Session) Selection() ID {
	s.sync()
	return s.selection
}

// Select changes the selection. Zero clears it.
func (s *Session) Select(id ID) {
	s.selection = id
	s.sync()
}

// Busy reports whether the session has a gesture, a text edit or a
// selection that an Escape key press would act on.
func (s *Session) Busy() bool {
	s.sync()
	return s.state != Idle || s.selection != 0
}

// Preview returns the transient state to paint.
func (s *Session) Preview() Preview {
	s.sync()
	p := Preview{Selection: s.selection, Cursor: -1}
	switch s.state {
	case Drawing, Dragging, ResizingHandle, EditingText:
		o := s.draft.Clone()
		p.Object = &o
		p.Replaces = s.target
		p.Crop = s.crop
		if s.state == EditingText {
			p.Cursor = s.cursor
		}
	}
	return p
}

// Cancel drops the gesture in progress without issuing a command.
func (s *Session) Cancel() {
	s.reset()
}

// SetTool switches the active tool. A text edit in progress is committed
// and returned, any other gesture is cancelled.
func (s *Session) SetTool(t Tool) Command {
	var cmd Command
	if s.state == EditingText {
		cmd = s.commitText()
	}
	s.reset()
	if t == ToolCrop {
		s.selection = 0
	}
	s.tool = t
	return cmd
}

// SetStyle changes the style of new objects. When an object is selected
// and idle, the returned command restyles it.
func (s *Session) SetStyle(st Style) Command {
	s.style = st
	if s.state == EditingText {
		s.draft.Style = s.styleFor(s.draft.Kind)
		return nil
	}
	if s.state != Idle || s.Selection() == 0 {
		return nil
	}
	obj, err := s.doc.Get(s.selection)
	if err != nil {
		return nil
	}
	next := obj.Clone()
	next.Style = s.styleFor(obj.Kind)
	if next.Equal(obj) {
		return nil
	}
	return &ModifyObject{ID: obj.ID, Old: obj, New: next}
}

// HandleInput consumes one event and returns the command it produced, or nil.
func (s *Session) HandleInput(ev Event) Command {
	s.sync()
	switch ev.Type {
	case PointerDown:
		return s.pointerDown(ev)
	case PointerMove:
		s.pointerMove(ev)
	case PointerUp:
		return s.pointerUp(ev)
	case Scroll:
		s.zoom(ev)
	case KeyPress:
		return s.keyPress(ev)
	case KeyRelease:
		if ev.Key == KeySpace {
			s.space = false
		}
	case TextInput:
		if s.state == EditingText {
			s.insert(ev.Text)
		}
	case FocusLost:
		s.space = false
		if s.state == EditingText {
			return s.commitText()
		}
		s.reset()
	}
	return nil
}

func (s *Session) pointerDown(ev Event) Command {
	p := s.view.ToCanvas(ev.Pos)
	if s.state == EditingText {
		if s.draft.Shape.Bounds().Inset(-s.tolerance()).Contains(p) {
			return nil
		}
		return s.commitText()
	}
	if s.state != Idle {
		return nil
	}
	if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && s.space) {
		s.state = PanningView
		s.last = ev.Pos
		return nil
	}
	if ev.Button != ButtonPrimary {
		return nil
	}
	s.start = p
	tol := s.tolerance()

	if s.tool == ToolCrop {
		s.beginCrop(p)
		return nil
	}
	if s.selection != 0 {
		obj, err := s.doc.Get(s.selection)
		if err == nil {
			h := HandleAt(obj, p, s.handleTolerance())
			switch {
			case s.tool == ToolText && obj.Kind == Text && h != HandleFontSize && (h == HandleMove || obj.Hit(p, tol)):
				s.editText(obj)
				return nil
			case h != HandleNone:
				s.beginEdit(obj, h, ResizingHandle)
				return nil
			case obj.Hit(p, tol):
				s.beginEdit(obj, HandleMove, Dragging)
				return nil
			}
		}
	}

	switch s.tool {
	case ToolPointer:
		s.selection = 0
		if id, ok := HitTest(s.doc, p, tol); ok {
			obj, _ := s.doc.Get(id)
			s.selection = id
			s.beginEdit(obj, HandleMove, Dragging)
		}
		return nil
	case ToolText:
		if id, ok := HitTest(s.doc, p, tol); ok {
			if obj, _ := s.doc.Get(id); obj.Kind == Text {
				s.editText(obj)
				return nil
			}
		}
		s.selection = 0
		s.newText(p)
		return nil
	}
	s.selection = 0
	s.beginDraw(p)
	return nil
}

func (s *Session) pointerMove(ev Event) {
	switch s.state {
	case PanningView:
		s.view.Translate(ev.Pos.Sub(s.last))
		s.last = ev.Pos
	case Drawing:
		s.extend(s.view.ToCanvas(ev.Pos), ev.Mods)
	case Dragging, ResizingHandle:
		s.draft = DragHandle(s.origin, s.handle, s.start, s.view.ToCanvas(ev.Pos), s.measure)
	}
}

func (s *Session) pointerUp(ev Event) Command {
	var cmd Command
	switch s.state {
	case PanningView:
	case Drawing:
		s.extend(s.view.ToCanvas(ev.Pos), ev.Mods)
		if path, ok := s.draft.Shape.(Path); ok {
			p := s.view.ToCanvas(ev.Pos)
			if n := len(path.Points); n > 0 && !path.Points[n-1].Eq(p) {
				path.Points = append(path.Points, p)
				s.draft.Shape = path
			}
		}
		cmd = s.commitDraft()
	case Dragging, ResizingHandle:
		s.pointerMove(ev)
		cmd = s.commitEdit()
	default:
		return nil
	}
	s.reset()
	return cmd
}

func (s *Session) keyPress(ev Event) Command {
	if s.state == EditingText {
		return s.editKey(ev)
	}
	switch ev.Key {
	case KeySpace:
		s.space = true
	case KeyEscape:
		if s.state != Idle {
			s.reset()
		} else {
			s.selection = 0
		}
	case KeyDelete, KeyBackspace:
		if s.state == Idle && s.selection != 0 {
			cmd := &RemoveObject{ID: s.selection}
			s.selection = 0
			return cmd
		}
	}
	return nil
}

func (s *Session) zoom(ev Event) {
	if ev.Delta == 0 {
		return
	}
	if err := s.view.ScaleBy(math.Pow(s.cfg.ZoomStep, -ev.Delta), ev.Pos); err != nil {
		Logger().Debug("zoom ignored", "delta", ev.Delta, "err", err)
	}
}

func (s *Session) beginEdit(obj Object, h Handle, st State) {
	s.target = obj.ID
	s.origin = obj
	s.draft = obj.Clone()
	s.handle = h
	s.state = st
}

func (s *Session) beginCrop(p geom.Point) {
	s.crop = true
	if c := s.doc.Crop(); c != nil {
		box := Object{Kind: Crop, Shape: Box{Rect: *c}}
		if h := HandleAt(box, p, s.handleTolerance()); h != HandleNone {
			s.beginEdit(box, h, ResizingHandle)
			return
		}
		if c.Contains(p) {
			s.beginEdit(box, HandleMove, Dragging)
			return
		}
	}
	s.draft = Object{Kind: Crop, Shape: Box{Rect: geom.Rect{Min: p, Max: p}}}
	s.target = 0
	s.state = Drawing
}

func (s *Session) beginDraw(p geom.Point) {
	kind, ok := s.tool.Kind()
	if !ok {
		return
	}
	obj := Object{Kind: kind, Style: s.styleFor(kind)}
	switch kind {
	case Arrow, Line:
		obj.Shape = Segment{Start: p, End: p}
	case Rectangle, Highlight:
		obj.Shape = Box{Rect: geom.Rect{Min: p, Max: p}, Radius: s.cfg.CornerRoundness * s.cfg.AnnotationSize}
	case Ellipse, Blur, Pixelate:
		obj.Shape = Box{Rect: geom.Rect{Min: p, Max: p}}
	case Freehand:
		obj.Shape = Path{Points: []geom.Point{p}}
	case Marker:
		obj.Shape = Badge{Center: p, Number: s.doc.nextMarker(), Radius: s.cfg.MarkerRadius * s.cfg.AnnotationSize}
	default:
		return
	}
	s.draft = obj
	s.target = 0
	s.state = Drawing
}

// extend moves the free end of the draft to p. Shift constrains lines to
// multiples of 45 degrees and boxes to squares.
func (s *Session) extend(p geom.Point, mods Modifiers) {
	switch sh := s.draft.Shape.(type) {
	case Segment:
		if mods.Contain(ModShift) {
			p = snapAngle(sh.Start, p)
		}
		sh.End = p
		s.draft.Shape = sh
	case Box:
		if mods.Contain(ModShift) {
			d := p.Sub(s.start)
			side := math.Max(math.Abs(d.X), math.Abs(d.Y))
			p = s.start.Add(geom.Pt(math.Copysign(side, d.X), math.Copysign(side, d.Y)))
		}
		sh.Rect = geom.RectFromPoints(s.start, p)
		s.draft.Shape = sh
	case Path:
		if n := len(sh.Points); n == 0 || sh.Points[n-1].Dist(p) >= s.cfg.FreehandMinDistance {
			sh.Points = append(sh.Points, p)
			s.draft.Shape = sh
		}
	case Badge:
		sh.Center = p
		s.draft.Shape = sh
	}
}

func snapAngle(from, to geom.Point) geom.Point {
	d := to.Sub(from)
	step := math.Pi / 4
	a := math.Round(math.Atan2(d.Y, d.X)/step) * step
	l := d.Len()
	return from.Add(geom.Pt(l*math.Cos(a), l*math.Sin(a)))
}

func (s *Session) commitDraft() Command {
	if s.crop {
		r := s.draft.Shape.Bounds()
		if !s.extentOK(r) {
			return nil
		}
		return &SetCrop{Old: s.doc.Crop(), New: &r}
	}
	if !s.committable(s.draft) {
		return nil
	}
	return NewAddObject(s.draft)
}

func (s *Session) commitEdit() Command {
	if s.crop {
		r := s.draft.Shape.Bounds()
		if r == s.origin.Shape.Bounds() || !s.extentOK(r) {
			return nil
		}
		return &SetCrop{Old: s.doc.Crop(), New: &r}
	}
	if s.draft.Equal(s.origin) || !s.committable(s.draft) {
		return nil
	}
	return &ModifyObject{ID: s.target, Old: s.origin, New: s.draft}
}

// committable reports whether the geometry is large enough to keep.
func (s *Session) committable(o Object) bool {
	switch sh := o.Shape.(type) {
	case Segment:
		return sh.Start.Dist(sh.End) >= s.cfg.MinExtent
	case Box:
		return s.extentOK(sh.Rect.Canon())
	case Path:
		return len(sh.Points) >= 2
	case Label:
		return strings.TrimSpace(sh.Content) != ""
	case Badge:
		return true
	}
	return false
}

func (s *Session) extentOK(r geom.Rect) bool {
	return r.Dx() >= s.cfg.MinExtent && r.Dy() >= s.cfg.MinExtent
}

func (s *Session) newText(p geom.Point) {
	size := s.cfg.FontSize * s.cfg.AnnotationSize
	s.draft = Object{
		Kind:  Text,
		Style: s.styleFor(Text),
		Shape: Label{Anchor: p, Size: size}.Measure(s.measure),
	}
	s.origin = Object{}
	s.target = 0
	s.cursor = 0
	s.state = EditingText
}

func (s *Session) editText(obj Object) {
	s.beginEdit(obj, HandleNone, EditingText)
	s.selection = obj.ID
	s.cursor = utf8.RuneCountInString(obj.Shape.(Label).Content)
}

func (s *Session) editKey(ev Event) Command {
	l := s.draft.Shape.(Label)
	runes := []rune(l.Content)
	switch ev.Key {
	case KeyEscape:
		s.reset()
		return nil
	case KeyEnter:
		if ev.Mods.Contain(ModShift) {
			s.insert("\n")
			return nil
		}
		return s.commitText()
	case KeyBackspace:
		if s.cursor > 0 {
			runes = slices.Delete(runes, s.cursor-1, s.cursor)
			s.cursor--
		}
	case KeyDelete:
		if s.cursor < len(runes) {
			runes = slices.Delete(runes, s.cursor, s.cursor+1)
		}
	case KeyLeft:
		s.cursor = max(0, s.cursor-1)
	case KeyRight:
		s.cursor = min(len(runes), s.cursor+1)
	case KeyHome:
		for s.cursor > 0 && runes[s.cursor-1] != '\n' {
			s.cursor--
		}
	case KeyEnd:
		for s.cursor < len(runes) && runes[s.cursor] != '\n' {
			s.cursor++
		}
	case KeySpace:
		// Delivered as TextInput as well.
	}
	l.Content = string(runes)
	s.draft.Shape = l.Measure(s.measure)
	return nil
}

func (s *Session) insert(text string) {
	l := s.draft.Shape.(Label)
	runes := []rune(l.Content)
	s.cursor = min(max(s.cursor, 0), len(runes))
	head := []rune(norm.NFC.String(string(runes[:s.cursor]) + text))
	runes = []rune(norm.NFC.String(string(head) + string(runes[s.cursor:])))
	s.cursor = min(len(head), len(runes))
	l.Content = string(runes)
	s.draft.Shape = l.Measure(s.measure)
}

// commitText ends the text edit. Empty text is discarded, unchanged text
// issues nothing.
func (s *Session) commitText() Command {
	defer s.reset()
	l := s.draft.Shape.(Label)
	l.Content = norm.NFC.String(l.Content)
	s.draft.Shape = l.Measure(s.measure)
	if !s.committable(s.draft) {
		return nil
	}
	if s.target == 0 {
		return NewAddObject(s.draft)
	}
	if s.draft.Equal(s.origin) {
		return nil
	}
	return &ModifyObject{ID: s.target, Old: s.origin, New: s.draft}
}

func (s *Session) styleFor(kind Kind) Style {
	st := s.style.Scaled(s.cfg.AnnotationSize)
	switch kind {
	case Highlight:
		st.Filled = true
		if st.Opacity >= 1 {
			st.Opacity = 0.5
		}
	case Marker:
		st.Filled = true
	case Text, Blur, Pixelate:
		st.Filled = false
	}
	return st
}

func (s *Session) reset() {
	s.state = Idle
	s.draft = Object{}
	s.origin = Object{}
	s.target = 0
	s.handle = HandleNone
	s.cursor = -1
	s.crop = false
}

// sync drops a selection whose object has left the document.
func (s *Session) sync() {
	if s.selection != 0 && s.doc.IndexOf(s.selection) < 0 {
		s.selection = 0
	}
}

func (s *Session) tolerance() float64 {
	return s.view.CanvasLength(s.cfg.HitTolerance)
}

func (s *Session) handleTolerance() float64 {
	return s.view.CanvasLength(math.Max(s.cfg.HandleSize, s.cfg.HitTolerance))
}
