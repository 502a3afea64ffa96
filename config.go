package markup

import (
	"fmt"
	"image/color"

	"github.com/esimov/markup/geom"
)

// Action is a host level action triggered by a key the active tool did not use.
type Action int

const (
	ActionNone Action = iota
	ActionExit
	ActionSave
	ActionCopy
	ActionSaveAndExit
)

func (a Action) String() string {
	switch a {
	case ActionExit:
		return "exit"
	case ActionSave:
		return "save"
	case ActionCopy:
		return "copy"
	case ActionSaveAndExit:
		return "save-and-exit"
	}
	return "none"
}

// ParseAction parses the textual form of an action.
func ParseAction(s string) (Action, error) {
	for a := ActionNone; a <= ActionSaveAndExit; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// Config holds the editor policy values. The zero value is not usable,
// start from DefaultConfig.
type Config struct {
	// MinExtent is the smallest size, in canvas units, a drawn shape must
	// reach on release to be committed.
	MinExtent float64
	// HitTolerance is the pick distance in screen pixels.
	HitTolerance float64
	// HandleSize is the on-screen edge length of manipulation handles.
	HandleSize float64
	// FreehandMinDistance is the minimum distance in canvas units between
	// two consecutive freehand points.
	FreehandMinDistance float64
	MinZoom             float64
	MaxZoom             float64
	ZoomStep            float64
	// HistoryLimit bounds the undo stack. Zero keeps every command.
	HistoryLimit    int
	CornerRoundness float64
	// AnnotationSize scales stroke widths, font and marker sizes of new objects.
	AnnotationSize float64
	FontSize       float64
	MarkerRadius   float64
	InitialTool    Tool
	Style          Style
	Palette        []color.NRGBA
	EscapeAction   Action
	EnterAction    Action
	// Debug turns contract violations into panics.
	Debug bool
}

// DefaultConfig returns the default editor configuration.
func DefaultConfig() Config {
	palette := []color.NRGBA{
		{R: 0xf0, G: 0x93, B: 0x2b, A: 0xff},
		{R: 0xe0, G: 0x1b, B: 0x24, A: 0xff},
		{R: 0x2e, G: 0xc2, B: 0x7e, A: 0xff},
		{R: 0x35, G: 0x84, B: 0xe4, A: 0xff},
		{R: 0xc0, G: 0x61, B: 0xcb, A: 0xff},
	}
	return Config{
		MinExtent:           2,
		HitTolerance:        6,
		HandleSize:          8,
		FreehandMinDistance: 1.5,
		MinZoom:             geom.DefaultMinZoom,
		MaxZoom:             geom.DefaultMaxZoom,
		ZoomStep:            1.25,
		CornerRoundness:     12,
		AnnotationSize:      1,
		FontSize:            24,
		MarkerRadius:        14,
		InitialTool:         ToolPointer,
		Style: Style{
			Stroke:  palette[1],
			Fill:    palette[1],
			Width:   3,
			Opacity: 1,
		},
		Palette:      palette,
		EscapeAction: ActionExit,
		EnterAction:  ActionSave,
	}
}

// Validate reports configuration values the editor cannot work with.
func (c Config) Validate() error {
	if c.MinExtent < 0 || c.HitTolerance < 0 || c.HandleSize <= 0 {
		return fmt.Errorf("invalid editor tolerances: extent %v, tolerance %v, handle %v",
			c.MinExtent, c.HitTolerance, c.HandleSize)
	}
	if c.ZoomStep <= 1 {
		return fmt.Errorf("zoom step must be greater than 1, got %v", c.ZoomStep)
	}
	if c.AnnotationSize <= 0 || c.FontSize <= 0 || c.MarkerRadius <= 0 {
		return fmt.Errorf("annotation sizes must be positive")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history limit must not be negative, got %d", c.HistoryLimit)
	}
	view, _ := geom.NewTransform(1, 1)
	_, err := view.WithLimits(c.MinZoom, c.MaxZoom)
	return err
}
