package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/esimov/markup"
	"github.com/esimov/markup/geom"
	"github.com/esimov/markup/utils"
)

// step is a single entry of an event script. Pointer positions are in
// screen space.
type step struct {
	Type   string   `json:"type"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Button string   `json:"button,omitempty"`
	Mods   []string `json:"mods,omitempty"`
	Key    string   `json:"key,omitempty"`
	Text   string   `json:"text,omitempty"`
	Delta  float64  `json:"delta,omitempty"`
	Tool   string   `json:"tool,omitempty"`
	Color  string   `json:"color,omitempty"`
	Width  float64  `json:"width,omitempty"`
	Filled *bool    `json:"filled,omitempty"`
	Index  int      `json:"index,omitempty"`
}

var eventTypes = map[string]markup.EventType{
	"down":       markup.PointerDown,
	"move":       markup.PointerMove,
	"up":         markup.PointerUp,
	"scroll":     markup.Scroll,
	"key":        markup.KeyPress,
	"release":    markup.KeyRelease,
	"text":       markup.TextInput,
	"focus-lost": markup.FocusLost,
}

var buttons = map[string]markup.Button{
	"":          markup.ButtonPrimary,
	"primary":   markup.ButtonPrimary,
	"secondary": markup.ButtonSecondary,
	"middle":    markup.ButtonMiddle,
}

var modifiers = map[string]markup.Modifiers{
	"shift": markup.ModShift,
	"ctrl":  markup.ModCtrl,
	"alt":   markup.ModAlt,
}

// readScript decodes a JSON array of steps and checks every one of them.
func readScript(r io.Reader) ([]step, error) {
	var steps []step
	if err := json.NewDecoder(r).Decode(&steps); err != nil {
		return nil, fmt.Errorf("invalid event script: %w", err)
	}
	for i, s := range steps {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("event script step %d: %w", i+1, err)
		}
	}
	return steps, nil
}

func (s step) validate() error {
	switch s.Type {
	case "tool":
		_, err := markup.ParseTool(s.Tool)
		return err
	case "style":
		if s.Color != "" {
			if _, err := utils.HexToNRGBA(s.Color); err != nil {
				return err
			}
		}
		if s.Width < 0 {
			return fmt.Errorf("negative stroke width: %v", s.Width)
		}
		return nil
	case "palette":
		if s.Index < 0 {
			return fmt.Errorf("negative palette index: %d", s.Index)
		}
		return nil
	case "undo", "redo", "reset":
		return nil
	}
	_, err := s.event()
	return err
}

// event converts an input step into an editor event.
func (s step) event() (markup.Event, error) {
	typ, ok := eventTypes[s.Type]
	if !ok {
		return markup.Event{}, fmt.Errorf("unknown step type %q", s.Type)
	}
	btn, ok := buttons[s.Button]
	if !ok {
		return markup.Event{}, fmt.Errorf("unknown button %q", s.Button)
	}
	var mods markup.Modifiers
	for _, m := range s.Mods {
		mod, ok := modifiers[m]
		if !ok {
			return markup.Event{}, fmt.Errorf("unknown modifier %q", m)
		}
		mods |= mod
	}
	return markup.Event{
		Type:   typ,
		Pos:    geom.Pt(s.X, s.Y),
		Button: btn,
		Mods:   mods,
		Key:    markup.Key(s.Key),
		Text:   s.Text,
		Delta:  s.Delta,
	}, nil
}

// run applies the step to the editor. Steps are validated by readScript.
func (s step) run(ed *markup.Editor) (markup.Result, error) {
	switch s.Type {
	case "tool":
		t, err := markup.ParseTool(s.Tool)
		if err != nil {
			return markup.Result{}, err
		}
		return ed.SetTool(t), nil
	case "style":
		st := ed.Session().Style()
		if s.Color != "" {
			c, err := utils.HexToNRGBA(s.Color)
			if err != nil {
				return markup.Result{}, err
			}
			st = st.WithColor(c)
		}
		if s.Width > 0 {
			st.Width = s.Width
		}
		if s.Filled != nil {
			st.Filled = *s.Filled
		}
		return ed.SetStyle(st), nil
	case "palette":
		return ed.PickColor(s.Index)
	case "undo":
		return markup.Result{Changed: ed.Undo()}, nil
	case "redo":
		return markup.Result{Changed: ed.Redo()}, nil
	case "reset":
		return ed.Reset(), nil
	}
	ev, err := s.event()
	if err != nil {
		return markup.Result{}, err
	}
	return ed.Handle(ev), nil
}

// replay runs the steps in order and passes every requested action to
// handle. It stops early when handle returns true.
func replay(ed *markup.Editor, steps []step, handle func(markup.Action) bool) error {
	for i, s := range steps {
		res, err := s.run(ed)
		if err != nil {
			return fmt.Errorf("event script step %d: %w", i+1, err)
		}
		if res.Action != markup.ActionNone && handle(res.Action) {
			return nil
		}
	}
	return nil
}
