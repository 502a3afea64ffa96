package markup

import (
	"fmt"
	"image"
	"os"

	"github.com/esimov/markup/geom"
	pigo "github.com/esimov/pigo/core"
)

// FaceDetector locates faces in the background image so they can be
// redacted in one step.
type FaceDetector struct {
	classifier *pigo.Pigo
	// MinSize and MaxSize bound the detection window in pixels. A zero
	// MaxSize uses the larger image dimension.
	MinSize     int
	MaxSize     int
	ShiftFactor float64
	ScaleFactor float64
	// Angle detects faces rotated in plane, expressed in turns (0..1).
	Angle float64
	// Threshold drops detections scoring below it.
	Threshold float32
	// Padding grows every detected square by a fraction of its side.
	Padding float64
}

// NewFaceDetector unpacks a pigo cascade classifier.
func NewFaceDetector(cascade []byte) (*FaceDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the cascade file: %w", err)
	}
	return &FaceDetector{
		classifier:  classifier,
		MinSize:     20,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		Threshold:   5,
		Padding:     0.1,
	}, nil
}

// LoadFaceDetector reads the cascade classifier from a file.
func LoadFaceDetector(path string) (*FaceDetector, error) {
	cascade, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the cascade file: %w", err)
	}
	return NewFaceDetector(cascade)
}

// Detect returns the face regions of img in canvas space.
func (fd *FaceDetector) Detect(img *image.NRGBA) []geom.Rect {
	b := img.Bounds()
	cols, rows := b.Dx(), b.Dy()
	maxSize := fd.MaxSize
	if maxSize == 0 {
		maxSize = max(cols, rows)
	}
	params := pigo.CascadeParams{
		MinSize:     fd.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: fd.ShiftFactor,
		ScaleFactor: fd.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	// Run the classifier over the obtained leaf nodes and return the detection results.
	// The result contains quadruplets representing the row, column, scale and detection score.
	dets := fd.classifier.RunCascade(params, fd.Angle)
	// Merge the overlapping detections by their intersection over union.
	dets = fd.classifier.ClusterDetections(dets, 0.2)

	var faces []geom.Rect
	for _, d := range dets {
		if d.Q < fd.Threshold {
			continue
		}
		half := float64(d.Scale) / 2 * (1 + fd.Padding)
		c := geom.Pt(float64(b.Min.X+d.Col), float64(b.Min.Y+d.Row))
		r := geom.Rect{Min: c.Sub(geom.Pt(half, half)), Max: c.Add(geom.Pt(half, half))}
		if r = r.Intersect(geomBounds(b)); !r.Empty() {
			faces = append(faces, r)
		}
	}
	Logger().Debug("face detection", "detections", len(dets), "kept", len(faces))
	return faces
}

// RedactFaces covers every detected face with an object of the given region
// kind, Blur or Pixelate, as a single undoable step. It returns the number
// of faces covered.
func (e *Editor) RedactFaces(fd *FaceDetector, kind Kind) (int, error) {
	if !kind.Filter() {
		return 0, fmt.Errorf("redaction needs a blur or pixelate region, got %s", kind)
	}
	e.session.Cancel()
	faces := fd.Detect(e.doc.Background())
	if len(faces) == 0 {
		return 0, nil
	}
	cmds := make([]Command, 0, len(faces))
	for _, r := range faces {
		cmds = append(cmds, NewAddObject(Object{
			Kind:  kind,
			Style: e.session.styleFor(kind),
			Shape: Box{Rect: r},
		}))
	}
	if err := e.history.Apply(e.doc, &Batch{Commands: cmds}); err != nil {
		return 0, err
	}
	return len(faces), nil
}

func geomBounds(r image.Rectangle) geom.Rect {
	return geom.Rect{
		Min: geom.Pt(float64(r.Min.X), float64(r.Min.Y)),
		Max: geom.Pt(float64(r.Max.X), float64(r.Max.Y)),
	}
}
