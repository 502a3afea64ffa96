package render

import (
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/esimov/markup"
	"github.com/esimov/markup/geom"
)

// maxPatches bounds the number of cached filter patches.
const maxPatches = 32

type patchKey struct {
	bg     *image.NRGBA
	kind   markup.Kind
	region image.Rectangle
	amount int
}

type patchEntry struct {
	img  *image.NRGBA
	used uint64
}

// filterCache keeps the filtered background patches of blur and pixelate
// regions, so panning and zooming do not filter them again.
type filterCache struct {
	mu      sync.Mutex
	clock   uint64
	patches map[patchKey]*patchEntry
}

func newFilterCache() *filterCache {
	return &filterCache{patches: make(map[patchKey]*patchEntry)}
}

// patch returns the filtered background pixels of region. The returned
// image has its origin at region.Min and must not be modified.
func (fc *filterCache) patch(bg *image.NRGBA, kind markup.Kind, region image.Rectangle, amount int) *image.NRGBA {
	region = region.Intersect(bg.Bounds())
	if region.Empty() {
		return nil
	}
	key := patchKey{bg: bg, kind: kind, region: region, amount: amount}

	fc.mu.Lock()
	fc.clock++
	if e, ok := fc.patches[key]; ok {
		e.used = fc.clock
		fc.mu.Unlock()
		return e.img
	}
	fc.mu.Unlock()

	var img *image.NRGBA
	switch kind {
	case markup.Blur:
		img = blurRegion(bg, region, amount)
	case markup.Pixelate:
		img = pixelateRegion(bg, region, amount)
	default:
		return nil
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.patches) >= maxPatches {
		fc.evict()
	}
	fc.patches[key] = &patchEntry{img: img, used: fc.clock}
	return img
}

// evict drops the least recently used patch. Caller must hold the lock.
func (fc *filterCache) evict() {
	var (
		oldest patchKey
		used   uint64 = math.MaxUint64
	)
	for k, e := range fc.patches {
		if e.used < used {
			oldest, used = k, e.used
		}
	}
	delete(fc.patches, oldest)
}

// blurRegion blurs the background around region, so the pixels near the
// region border take their surroundings into account.
func blurRegion(bg *image.NRGBA, region image.Rectangle, radius int) *image.NRGBA {
	padded := region.Inset(-radius).Intersect(bg.Bounds())
	src := Stackblur(imaging.Crop(bg, padded), radius)
	return imaging.Crop(src, region.Sub(padded.Min))
}

// pixelateRegion averages the region over square cells aligned with its top
// left corner.
func pixelateRegion(bg *image.NRGBA, region image.Rectangle, size int) *image.NRGBA {
	src := imaging.Crop(bg, region)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	cw := (w + size - 1) / size
	ch := (h + size - 1) / size

	small := imaging.Resize(src, cw, ch, imaging.Box)
	big := imaging.Resize(small, cw*size, ch*size, imaging.NearestNeighbor)
	return imaging.Crop(big, image.Rect(0, 0, w, h))
}

// pixelRect returns the smallest integer rectangle covering r.
func pixelRect(r geom.Rect) image.Rectangle {
	r = r.Canon()
	return image.Rect(
		int(math.Floor(r.Min.X)), int(math.Floor(r.Min.Y)),
		int(math.Ceil(r.Max.X)), int(math.Ceil(r.Max.Y)),
	)
}
