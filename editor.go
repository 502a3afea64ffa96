package markup

import (
	"fmt"
	"image"
	"strings"

	"github.com/esimov/markup/geom"
)

// Result reports what the host should do after an event.
type Result struct {
	// Action is the host action requested by an unused Escape or Enter,
	// or by a shortcut.
	Action Action
	// Changed reports that the document was modified.
	Changed bool
}

// toolKeys maps single key shortcuts to tools.
var toolKeys = map[Key]Tool{
	"P": ToolPointer,
	"C": ToolCrop,
	"L": ToolLine,
	"A": ToolArrow,
	"R": ToolRectangle,
	"E": ToolEllipse,
	"T": ToolText,
	"M": ToolMarker,
	"B": ToolBlur,
	"X": ToolPixelate,
	"H": ToolHighlight,
	"F": ToolFreehand,
}

// Editor ties a Document, its History, the interactive Session and the view
// transform together. It is the single owner of the document and must be
// driven from one goroutine.
type Editor struct {
	cfg     Config
	doc     *Document
	history *History
	session *Session
	view    geom.Transform
}

// NewEditor returns an editor over the background image.
func NewEditor(bg *image.NRGBA, cfg Config, m TextMeasurer) (*Editor, error) {
	if bg == nil || bg.Bounds().Empty() {
		return nil, fmt.Errorf("empty background image: %w", ErrDegenerateRegion)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	view, err := geom.NewTransform(1, 1)
	if err != nil {
		return nil, err
	}
	if view, err = view.WithLimits(cfg.MinZoom, cfg.MaxZoom); err != nil {
		return nil, err
	}
	e := &Editor{
		cfg:     cfg,
		doc:     NewDocument(bg),
		history: NewHistory(cfg.HistoryLimit),
		view:    view,
	}
	e.session = NewSession(e.doc, &e.view, cfg, m)
	return e, nil
}

// Document returns the live document. Callers must not mutate it directly.
func (e *Editor) Document() *Document { return e.doc }

// History returns the command history.
func (e *Editor) History() *History { return e.history }

// Session returns the interactive session.
func (e *Editor) Session() *Session { return e.session }

// View returns the current view transform.
func (e *Editor) View() geom.Transform { return e.view }

// SetView replaces the view transform after validating it.
func (e *Editor) SetView(t geom.Transform) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.view = t
	return nil
}

// FitView zooms the view so the background fits the viewport, given in
// device pixels at the device pixel ratio dpr.
func (e *Editor) FitView(viewport geom.Size, dpr float64) error {
	t := e.view
	t.DPR = dpr
	if err := t.Fit(e.doc.Bounds().Size(), viewport); err != nil {
		return err
	}
	e.view = t
	return nil
}

// Snapshot returns a deep copy of the document for rendering or export on
// another goroutine.
func (e *Editor) Snapshot() *Document {
	return e.doc.Clone()
}

// Preview returns the session's transient state.
func (e *Editor) Preview() Preview {
	return e.session.Preview()
}

// Handle routes an input event. Editor shortcuts are handled first, then
// the event goes to the session. Escape and Enter map to the configured
// actions only when the session did not use them.
func (e *Editor) Handle(ev Event) Result {
	if ev.Type == KeyPress {
		if res, ok := e.shortcut(ev); ok {
			return res
		}
	}
	return e.Apply(e.session.HandleInput(ev))
}

func (e *Editor) shortcut(ev Event) (Result, bool) {
	editing := e.session.State() == EditingText
	key := Key(strings.ToUpper(string(ev.Key)))
	if ev.Mods.Contain(ModCtrl) {
		switch {
		case key == "Z" && ev.Mods.Contain(ModShift), key == "Y":
			return Result{Changed: e.Redo()}, true
		case key == "Z":
			return Result{Changed: e.Undo()}, true
		case key == "S":
			return e.finish(ActionSave), true
		case key == "C" && !editing:
			return e.finish(ActionCopy), true
		}
		return Result{}, false
	}
	switch {
	case ev.Key == KeyEscape && !e.session.Busy():
		return Result{Action: e.cfg.EscapeAction}, true
	case ev.Key == KeyEnter && e.session.State() == Idle:
		return e.finish(e.cfg.EnterAction), true
	case !editing && e.session.State() == Idle && ev.Mods == 0:
		if t, ok := toolKeys[key]; ok {
			return e.SetTool(t), true
		}
	}
	return Result{}, false
}

// finish commits a pending text edit before handing the action to the host,
// so the exported image contains it.
func (e *Editor) finish(a Action) Result {
	res := Result{Action: a}
	if e.session.State() == EditingText {
		res.Changed = e.Apply(e.session.SetTool(e.session.Tool())).Changed
	}
	return res
}

// Apply records a command produced outside of Handle. Contract violations
// panic in debug mode and are logged and dropped otherwise.
func (e *Editor) Apply(cmd Command) Result {
	if cmd == nil {
		return Result{}
	}
	if err := e.history.Apply(e.doc, cmd); err != nil {
		e.violation(err)
		return Result{}
	}
	return Result{Changed: true}
}

// Undo reverts the last command. An active gesture is cancelled instead.
func (e *Editor) Undo() bool {
	if e.session.State() != Idle {
		e.session.Cancel()
		return false
	}
	ok, err := e.history.Undo(e.doc)
	if err != nil {
		e.violation(err)
	}
	return ok
}

// Redo reapplies the last undone command.
func (e *Editor) Redo() bool {
	if e.session.State() != Idle {
		return false
	}
	ok, err := e.history.Redo(e.doc)
	if err != nil {
		e.violation(err)
	}
	return ok
}

// SetTool changes the active tool, committing a pending text edit.
func (e *Editor) SetTool(t Tool) Result {
	return e.Apply(e.session.SetTool(t))
}

// SetStyle changes the drawing style and restyles the selected object.
func (e *Editor) SetStyle(st Style) Result {
	return e.Apply(e.session.SetStyle(st))
}

// PickColor switches the drawing colour to the palette entry i and
// recolours the selected object.
func (e *Editor) PickColor(i int) (Result, error) {
	if i < 0 || i >= len(e.cfg.Palette) {
		return Result{}, fmt.Errorf("palette index %d out of range [0, %d)", i, len(e.cfg.Palette))
	}
	return e.SetStyle(e.session.Style().WithColor(e.cfg.Palette[i])), nil
}

// Reset removes every annotation and the crop as one undoable step.
func (e *Editor) Reset() Result {
	e.session.Cancel()
	var cmds []Command
	for i := e.doc.Len() - 1; i >= 0; i-- {
		cmds = append(cmds, &RemoveObject{ID: e.doc.objects[i].ID})
	}
	if e.doc.Crop() != nil {
		cmds = append(cmds, &SetCrop{Old: e.doc.Crop()})
	}
	if len(cmds) == 0 {
		return Result{}
	}
	return e.Apply(&Batch{Commands: cmds})
}

func (e *Editor) violation(err error) {
	if e.cfg.Debug {
		panic(err)
	}
	Logger().Warn("command dropped", "err", err)
}
