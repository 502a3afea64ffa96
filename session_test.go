package markup

import (
	"testing"

	"github.com/esimov/markup/geom"
	"github.com/stretchr/testify/assert"
)

func newTestSession(t *testing.T, tool Tool) (*Session, *Document, *History, *geom.Transform) {
	t.Helper()
	d := NewDocument(newBackground())
	view, err := geom.NewTransform(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.InitialTool = tool
	return NewSession(d, &view, cfg, EstimateMeasurer), d, NewHistory(0), &view
}

func down(x, y float64) Event { return Event{Type: PointerDown, Pos: geom.Pt(x, y)} }
func move(x, y float64) Event { return Event{Type: PointerMove, Pos: geom.Pt(x, y)} }
func up(x, y float64) Event   { return Event{Type: PointerUp, Pos: geom.Pt(x, y)} }
func key(k Key) Event         { return Event{Type: KeyPress, Key: k} }

// drive feeds the events to the session and applies every command it yields.
func drive(t *testing.T, s *Session, d *Document, h *History, evs ...Event) []Command {
	t.Helper()
	var cmds []Command
	for _, ev := range evs {
		if cmd := s.HandleInput(ev); cmd != nil {
			if err := h.Apply(d, cmd); err != nil {
				t.Fatalf("apply %T: %v", cmd, err)
			}
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func TestSession_CommitThreshold(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolRectangle)
	cmds := drive(t, s, d, h, down(0, 0), move(0.3, 0.3), up(0.5, 0.5))
	assert.Empty(cmds)
	assert.Equal(0, d.Len())
	assert.Equal(Idle, s.State())

	cmds = drive(t, s, d, h, down(0, 0), move(5, 5), up(10, 10))
	assert.Len(cmds, 1)
	assert.IsType(&AddObject{}, cmds[0])
	assert.Equal(1, d.Len())
	assert.Equal(geom.RectXYWH(0, 0, 10, 10), d.Objects()[0].Shape.(Box).Rect)
}

func TestSession_DrawingOnlyTouchesPreview(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolEllipse)
	drive(t, s, d, h, down(10, 10), move(40, 30))

	assert.Equal(Drawing, s.State())
	assert.Equal(0, d.Len())
	p := s.Preview()
	assert.NotNil(p.Object)
	assert.Equal(Ellipse, p.Object.Kind)
	assert.Equal(geom.RectXYWH(10, 10, 30, 20), p.Object.Shape.(Box).Rect)
}

func TestSession_SingleCommandGesture(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolPointer)
	id := d.Add(rectObject(Rectangle, 10, 10, 60, 60))
	before, _ := d.Get(id)

	drive(t, s, d, h, down(30, 10), up(30, 10))
	assert.Equal(id, s.Selection())
	assert.Equal(0, h.Len())

	evs := []Event{down(60, 60)}
	for i := 1; i <= 50; i++ {
		evs = append(evs, move(60+float64(i), 60+float64(i)/2))
	}
	evs = append(evs, up(110, 85))
	cmds := drive(t, s, d, h, evs...)

	assert.Len(cmds, 1)
	assert.Equal(1, h.Len())
	mod, ok := cmds[0].(*ModifyObject)
	assert.True(ok)
	assert.Equal(id, mod.ID)
	assert.True(mod.Old.Equal(before))

	after, _ := d.Get(id)
	assert.Equal(geom.RectXYWH(10, 10, 100, 75), after.Shape.(Box).Rect)
}

func TestSession_DragMovesObject(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolPointer)
	obj := rectObject(Rectangle, 10, 10, 60, 60)
	obj.Style.Filled = true
	id := d.Add(obj)

	cmds := drive(t, s, d, h, down(30, 30), move(35, 40), move(40, 50), up(40, 50))
	assert.Len(cmds, 1)
	got, _ := d.Get(id)
	assert.Equal(geom.RectXYWH(20, 30, 50, 50), got.Shape.(Box).Rect)

	// a click without movement issues nothing
	cmds = drive(t, s, d, h, down(40, 50), up(40, 50))
	assert.Empty(cmds)
}

func TestSession_EscapeCancels(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolArrow)
	cmds := drive(t, s, d, h, down(10, 10), move(50, 50), key(KeyEscape), up(50, 50))
	assert.Empty(cmds)
	assert.Equal(0, d.Len())
	assert.Equal(Idle, s.State())
	assert.Nil(s.Preview().Object)

	// escape mid drag restores the pre-gesture geometry
	id := d.Add(Object{Kind: Line, Style: Style{Width: 2}, Shape: Segment{Start: geom.Pt(100, 50), End: geom.Pt(150, 50)}})
	s.Select(id)
	cmds = drive(t, s, d, h, down(150, 50), move(190, 90), key(KeyEscape), up(190, 90))
	assert.Empty(cmds)
	got, _ := d.Get(id)
	assert.Equal(geom.Pt(150, 50), got.Shape.(Segment).End)
}

func TestSession_ToolSwitchCancels(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolRectangle)
	drive(t, s, d, h, down(0, 0), move(40, 40))
	assert.Nil(s.SetTool(ToolEllipse))
	assert.Equal(Idle, s.State())
	assert.Empty(drive(t, s, d, h, up(40, 40)))
	assert.Equal(0, d.Len())
}

func TestSession_UnmatchedPointerUp(t *testing.T) {
	s, d, h, _ := newTestSession(t, ToolRectangle)
	assert.Empty(t, drive(t, s, d, h, up(10, 10), move(20, 20), up(30, 30)))
}

func TestSession_Freehand(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolFreehand)
	assert.Empty(drive(t, s, d, h, down(5, 5), up(5, 5)))

	evs := []Event{down(0, 0)}
	for i := 1; i <= 20; i++ {
		evs = append(evs, move(float64(i)*0.5, 0))
	}
	evs = append(evs, up(10, 0))
	cmds := drive(t, s, d, h, evs...)
	assert.Len(cmds, 1)

	pts := d.Objects()[0].Shape.(Path).Points
	assert.Equal(geom.Pt(0, 0), pts[0])
	assert.Equal(geom.Pt(10, 0), pts[len(pts)-1])
	for i := 1; i < len(pts)-1; i++ {
		assert.GreaterOrEqual(pts[i].Dist(pts[i-1]), DefaultConfig().FreehandMinDistance)
	}
	assert.Less(len(pts), 21)
}

func TestSession_TextComposesAtCaret(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolText)
	drive(t, s, d, h, down(20, 20), up(20, 20))
	drive(t, s, d, h,
		Event{Type: TextInput, Text: "ab"},
		key(KeyLeft),
		Event{Type: TextInput, Text: "\u0301"},
	)
	assert.Equal(1, s.Preview().Cursor)
	assert.Equal("\u00e1b", s.Preview().Object.Shape.(Label).Content)

	drive(t, s, d, h, Event{Type: TextInput, Text: "c"})
	assert.Equal(2, s.Preview().Cursor)
	assert.Equal("\u00e1cb", s.Preview().Object.Shape.(Label).Content)
}

func TestSession_TextEditing(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolText)
	drive(t, s, d, h, down(20, 20), up(20, 20))
	assert.Equal(EditingText, s.State())

	drive(t, s, d, h,
		Event{Type: TextInput, Text: "Hellp"},
		key(KeyBackspace),
		Event{Type: TextInput, Text: "o"},
		Event{Type: KeyPress, Key: KeyEnter, Mods: ModShift},
		Event{Type: TextInput, Text: "e\u0301"},
	)
	assert.Equal(0, d.Len())
	assert.Equal(7, s.Preview().Cursor)

	cmds := drive(t, s, d, h, key(KeyEnter))
	assert.Len(cmds, 1)
	assert.Equal(Idle, s.State())
	lbl := d.Objects()[0].Shape.(Label)
	assert.Equal("Hello\né", lbl.Content)
	assert.Equal(geom.Pt(20, 20), lbl.Anchor)
	assert.InDelta(2*1.2*lbl.Size, lbl.Extent.H, 1e-9)

	// empty text is discarded
	drive(t, s, d, h, down(150, 80), up(150, 80))
	assert.Equal(EditingText, s.State())
	assert.Empty(drive(t, s, d, h, key(KeyEnter)))
	assert.Equal(1, d.Len())

	// editing an existing label yields a modification, unchanged text nothing
	drive(t, s, d, h, down(25, 25), up(25, 25))
	assert.Equal(EditingText, s.State())
	assert.Empty(drive(t, s, d, h, Event{Type: FocusLost}))

	drive(t, s, d, h, down(25, 25), up(25, 25), Event{Type: TextInput, Text: "!"})
	cmds = drive(t, s, d, h, down(190, 90))
	assert.Len(cmds, 1)
	assert.IsType(&ModifyObject{}, cmds[0])
	assert.Equal("Hello\né!", d.Objects()[0].Shape.(Label).Content)

	// escape discards the edit
	drive(t, s, d, h, down(25, 25), up(25, 25), Event{Type: TextInput, Text: "??"}, key(KeyEscape))
	assert.Equal("Hello\né!", d.Objects()[0].Shape.(Label).Content)
}

func TestSession_ToolSwitchCommitsText(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolText)
	drive(t, s, d, h, down(20, 20), Event{Type: TextInput, Text: "note"})
	cmd := s.SetTool(ToolArrow)
	assert.IsType(&AddObject{}, cmd)
	assert.Equal(ToolArrow, s.Tool())
	assert.NoError(h.Apply(d, cmd))
	assert.Equal(1, d.Len())
}

func TestSession_Crop(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolCrop)
	drive(t, s, d, h, down(-10, 20), move(50, 50))
	p := s.Preview()
	assert.True(p.Crop)
	assert.Nil(d.Crop())

	cmds := drive(t, s, d, h, up(120, 300))
	assert.Len(cmds, 1)
	assert.IsType(&SetCrop{}, cmds[0])
	assert.Equal(&geom.Rect{Min: geom.Pt(0, 20), Max: geom.Pt(120, bgHeight)}, d.Crop())

	// dragging the existing crop moves it
	cmds = drive(t, s, d, h, down(60, 60), move(70, 60), up(70, 60))
	assert.Len(cmds, 1)
	assert.Equal(&geom.Rect{Min: geom.Pt(10, 20), Max: geom.Pt(130, bgHeight)}, d.Crop())

	// a degenerate crop is silently dropped
	s.SetTool(ToolCrop)
	assert.NoError(h.Apply(d, &SetCrop{}))
	assert.Empty(drive(t, s, d, h, down(5, 5), up(5.5, 50)))
	assert.Nil(d.Crop())
}

func TestSession_PanAndZoom(t *testing.T) {
	assert := assert.New(t)

	s, d, h, view := newTestSession(t, ToolRectangle)
	cmds := drive(t, s, d, h,
		Event{Type: PointerDown, Pos: geom.Pt(10, 10), Button: ButtonMiddle},
		move(40, 30),
		Event{Type: PointerUp, Pos: geom.Pt(40, 30), Button: ButtonMiddle},
	)
	assert.Empty(cmds)
	assert.Equal(geom.Pt(30, 20), view.Offset)
	assert.Equal(0, d.Len())

	drive(t, s, d, h, key(KeySpace), down(0, 0), move(-30, -20), up(-30, -20),
		Event{Type: KeyRelease, Key: KeySpace})
	assert.Equal(geom.Pt(0, 0), view.Offset)
	assert.Equal(0, h.Len())

	drive(t, s, d, h, Event{Type: Scroll, Pos: geom.Pt(50, 50), Delta: -1})
	assert.InDelta(1.25, view.Zoom, 1e-9)
	assert.True(view.ToCanvas(geom.Pt(50, 50)).Eq(geom.Pt(50, 50)))

	// geometry drawn while zoomed stays in canvas units
	cmds = drive(t, s, d, h, down(50, 50), up(75, 75))
	assert.Len(cmds, 1)
	assert.Equal(geom.RectXYWH(50, 50, 20, 20), d.Objects()[0].Shape.(Box).Rect)
}

func TestSession_MarkersAreNumbered(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolMarker)
	drive(t, s, d, h, down(10, 10), up(10, 10), down(50, 50), up(50, 50))
	assert.Equal(2, d.Len())
	assert.Equal(2, d.Objects()[1].Shape.(Badge).Number)

	_, _ = h.Undo(d)
	drive(t, s, d, h, down(70, 70), up(70, 70))
	assert.Equal(2, d.Objects()[1].Shape.(Badge).Number)
}

func TestSession_DeleteSelection(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolPointer)
	id := d.Add(rectObject(Highlight, 0, 0, 40, 40))
	drive(t, s, d, h, down(20, 20), up(20, 20))
	assert.Equal(id, s.Selection())

	cmds := drive(t, s, d, h, key(KeyDelete))
	assert.Len(cmds, 1)
	assert.Equal(0, d.Len())
	assert.Equal(ID(0), s.Selection())
}

func TestSession_SetStyleRestylesSelection(t *testing.T) {
	assert := assert.New(t)

	s, d, h, _ := newTestSession(t, ToolPointer)
	id := d.Add(rectObject(Highlight, 0, 0, 40, 40))
	drive(t, s, d, h, down(20, 20), up(20, 20))

	st := s.Style()
	st.Width = 9
	cmd := s.SetStyle(st)
	assert.IsType(&ModifyObject{}, cmd)
	assert.NoError(h.Apply(d, cmd))
	got, _ := d.Get(id)
	assert.Equal(9.0, got.Style.Width)
}
