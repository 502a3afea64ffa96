package utils

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"
)

// MessageType selects the colour of a CLI message.
type MessageType int

const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
	WarningMessage
)

// Terminal colours of the CLI messages.
const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	ErrorColor   = "\x1b[31m"
	WarningColor = "\x1b[33m"
)

var messageColors = map[MessageType]string{
	DefaultMessage: DefaultColor,
	SuccessMessage: SuccessColor,
	ErrorMessage:   ErrorColor,
	StatusMessage:  StatusColor,
	WarningMessage: WarningColor,
}

// NoColor turns DecorateText into a no-op, for messages written to
// something other than a terminal.
var NoColor atomic.Bool

// DecorateText wraps s in the colour of the message type.
func DecorateText(s string, msgType MessageType) string {
	c, ok := messageColors[msgType]
	if !ok || NoColor.Load() {
		return s
	}
	return c + s + DefaultColor
}

// FormatTime formats a duration as days, hours, minutes and seconds,
// leaving out the leading units which are zero.
func FormatTime(d time.Duration) string {
	units := []struct {
		n      int64
		suffix string
	}{
		{int64(d.Hours() / 24), "d"},
		{int64(d.Hours()) % 24, "h"},
		{int64(d.Minutes()) % 60, "m"},
	}
	var b strings.Builder
	for _, u := range units {
		if u.n == 0 && b.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "%d%s ", u.n, u.suffix)
	}
	fmt.Fprintf(&b, "%.2fs", math.Mod(d.Seconds(), 60))
	return b.String()
}
