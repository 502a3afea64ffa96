/*
Package markup is the annotation engine of a screenshot editor. It keeps a
background image together with an ordered list of annotations (arrows,
lines, shapes, freehand strokes, text, highlights, blurred or pixelated
regions and numbered markers), turns pointer and keyboard input into
reversible commands, and records them in an undo history.

Rendering lives in the render package and encoding and delivery of the
result in the export package. A host application usually drives an Editor:

	package main

	import (
		"log"
		"os"

		"github.com/esimov/markup"
		"github.com/esimov/markup/geom"
		"github.com/esimov/markup/render"
	)

	func main() {
		f, _ := os.Open("screenshot.png")
		bg, err := markup.LoadImage(f)
		if err != nil {
			log.Fatal(err)
		}
		ed, err := markup.NewEditor(bg, markup.DefaultConfig(), render.DefaultMeasurer())
		if err != nil {
			log.Fatal(err)
		}
		ed.Handle(markup.Event{Type: markup.PointerDown, Pos: geom.Pt(10, 10)})
		// ...
	}
*/
package markup
