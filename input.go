package markup

import (
	"fmt"

	"github.com/esimov/markup/geom"
)

// Tool is the active drawing or manipulation tool.
type Tool int

const (
	ToolPointer Tool = iota
	ToolCrop
	ToolLine
	ToolArrow
	ToolRectangle
	ToolEllipse
	ToolText
	ToolMarker
	ToolBlur
	ToolPixelate
	ToolHighlight
	ToolFreehand
)

var toolNames = [...]string{"pointer", "crop", "line", "arrow", "rectangle",
	"ellipse", "text", "marker", "blur", "pixelate", "highlight", "freehand"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

// ParseTool parses a tool name.
func ParseTool(s string) (Tool, error) {
	for i, n := range toolNames {
		if n == s {
			return Tool(i), nil
		}
	}
	return ToolPointer, fmt.Errorf("unknown tool %q", s)
}

// Kind returns the kind of object drawn by the tool. The pointer tool
// draws nothing and reports false.
func (t Tool) Kind() (Kind, bool) {
	switch t {
	case ToolCrop:
		return Crop, true
	case ToolLine:
		return Line, true
	case ToolArrow:
		return Arrow, true
	case ToolRectangle:
		return Rectangle, true
	case ToolEllipse:
		return Ellipse, true
	case ToolText:
		return Text, true
	case ToolMarker:
		return Marker, true
	case ToolBlur:
		return Blur, true
	case ToolPixelate:
		return Pixelate, true
	case ToolHighlight:
		return Highlight, true
	case ToolFreehand:
		return Freehand, true
	}
	return 0, false
}

// EventType enumerates the normalized input events.
type EventType int

const (
	PointerDown EventType = iota
	PointerMove
	PointerUp
	Scroll
	KeyPress
	KeyRelease
	TextInput
	FocusLost
)

// Button is a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Contain reports whether m holds all modifiers in k.
func (m Modifiers) Contain(k Modifiers) bool { return m&k == k }

// Key names a keyboard key. Printable keys use their upper case character.
type Key string

const (
	KeyEscape    Key = "Escape"
	KeyEnter     Key = "Enter"
	KeyBackspace Key = "Backspace"
	KeyDelete    Key = "Delete"
	KeyLeft      Key = "Left"
	KeyRight     Key = "Right"
	KeyHome      Key = "Home"
	KeyEnd       Key = "End"
	KeySpace     Key = "Space"
)

// Event is a normalized input event. Positions are in screen space.
type Event struct {
	Type   EventType
	Pos    geom.Point
	Button Button
	Mods   Modifiers
	Key    Key
	// Text carries the characters of a TextInput event.
	Text string
	// Delta is the scroll amount in notches; positive values zoom out.
	Delta float64
}
