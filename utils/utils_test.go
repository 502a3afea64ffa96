package utils

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUtils_Math(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5, Max(2, 5))
	assert.Equal(3.5, Abs(-3.5))
	assert.Equal(0, Clamp(-4, 0, 10))
	assert.Equal(10, Clamp(14, 0, 10))
	assert.Equal(7, Clamp(7, 0, 10))
}

func TestUtils_HexToNRGBA(t *testing.T) {
	assert := assert.New(t)

	c, err := HexToNRGBA("#ff8000")
	assert.NoError(err)
	assert.Equal(color.NRGBA{R: 0xff, G: 0x80, A: 0xff}, c)

	_, err = HexToNRGBA("0f08")
	assert.Error(err)

	c, err = HexToNRGBA("#f80")
	assert.NoError(err)
	assert.Equal(color.NRGBA{R: 0xff, G: 0x88, A: 0xff}, c)

	c, err = HexToNRGBA("#11223344")
	assert.NoError(err)
	assert.Equal(color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}, c)

	_, err = HexToNRGBA("#zzzzzz")
	assert.Error(err)
}

func TestUtils_ExpandPath(t *testing.T) {
	assert := assert.New(t)

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	p, err := ExpandPath("~/shots/out.png")
	assert.NoError(err)
	assert.Equal(filepath.Join(home, "shots", "out.png"), p)

	p, err = ExpandPath("shots/~/out.png")
	assert.NoError(err)
	assert.Equal("shots/~/out.png", p)
}

func TestUtils_FormatTime(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal("2m 5.00s", FormatTime(2*time.Minute+5*time.Second))
	assert.Equal("1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))
	assert.Equal("1d 0h 0m 3.00s", FormatTime(24*time.Hour+3*time.Second))
}

func TestUtils_DecorateText(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(ErrorColor+"boom"+DefaultColor, DecorateText("boom", ErrorMessage))
	assert.Equal("plain", DecorateText("plain", MessageType(42)))
	assert.Equal(WarningColor+"careful"+DefaultColor, DecorateText("careful", WarningMessage))

	NoColor.Store(true)
	defer NoColor.Store(false)
	assert.Equal("boom", DecorateText("boom", ErrorMessage))
}

func TestUtils_Spinner(t *testing.T) {
	assert := assert.New(t)

	var buf syncBuffer
	s := NewSpinner(&buf, "rendering", time.Millisecond, false)
	s.StopMsg = "done\n"
	s.Start()
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.True(strings.Contains(out, "rendering"))
	assert.True(strings.HasSuffix(out, "done\n"))
}

// syncBuffer is written by the spinner goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
