package detection

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
)

// Options tunes text detection.
type Options struct {
	// Window is the size of the scanning window. Windows step by half
	// their size in each direction.
	Window image.Point

	// MinDensity and MaxDensity bound the fraction of edge pixels a
	// window may hold. Blank areas fall below the range and noise or
	// photographs above it.
	MinDensity float64
	MaxDensity float64

	// MinScore is the minimum horizontal score, the share of edge runs
	// that are horizontal.
	MinScore float64

	// EdgeLevel is the edge-map threshold (0-255).
	EdgeLevel uint8

	// Padding grows the final bounds on every side.
	Padding int
}

// DefaultOptions suits a line or two of printed code text.
var DefaultOptions = Options{
	Window:     image.Pt(48, 16),
	MinDensity: 0.05,
	MaxDensity: 0.4,
	MinScore:   0.5,
	EdgeLevel:  128,
	Padding:    8,
}

// Region is an area likely to contain text.
type Region struct {
	Bounds  image.Rectangle `json:"bounds"`
	Density float64         `json:"density"`
	Score   float64         `json:"score"`
}

// FindText returns the union of every text region in img, grown by
// opts.Padding and clipped to the image. ok is false when nothing
// text-like was found.
func FindText(img image.Image, opts Options) (bounds image.Rectangle, ok bool) {
	regions := TextRegions(img, opts)
	if len(regions) == 0 {
		return image.Rectangle{}, false
	}

	for _, r := range regions {
		bounds = bounds.Union(r.Bounds)
	}
	bounds = bounds.Inset(-opts.Padding).Intersect(img.Bounds())
	return bounds, !bounds.Empty()
}

// TextRegions scans img with a sliding window and returns the merged
// windows whose edge density and horizontal structure look like text,
// best score first. Coordinates are in img's space.
func TextRegions(img image.Image, opts Options) []Region {
	src := img.Bounds()
	ww, wh := opts.Window.X, opts.Window.Y
	if ww <= 0 || wh <= 0 || src.Dx() < ww || src.Dy() < wh {
		return nil
	}

	edges := edgeMap(img, opts.EdgeLevel)
	sums := newIntegral(edges)
	area := float64(ww * wh)

	var candidates []Region
	for y := 0; y+wh <= src.Dy(); y += max(wh/2, 1) {
		for x := 0; x+ww <= src.Dx(); x += max(ww/2, 1) {
			density := float64(sums.count(x, y, x+ww, y+wh)) / area
			if density < opts.MinDensity || density > opts.MaxDensity {
				continue
			}

			score := horizontalScore(edges, x, y, ww, wh)
			if score < opts.MinScore {
				continue
			}

			candidates = append(candidates, Region{
				Bounds:  image.Rect(x, y, x+ww, y+wh).Add(src.Min),
				Density: math.Round(density*1000) / 1000,
				Score:   math.Round(score*1000) / 1000,
			})
		}
	}

	merged := mergeRegions(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// edgeMap marks strong edges. Rows and columns on the image border are
// never marked.
func edgeMap(img image.Image, level uint8) [][]bool {
	out := effect.EdgeDetection(effect.Grayscale(img), 1)
	b := out.Bounds()
	w, h := b.Dx(), b.Dy()

	edges := make([][]bool, h)
	for y := 0; y < h; y++ {
		edges[y] = make([]bool, w)
		if y == 0 || y == h-1 {
			continue
		}
		for x := 1; x < w-1; x++ {
			edges[y][x] = out.Pix[out.PixOffset(b.Min.X+x, b.Min.Y+y)] >= level
		}
	}
	return edges
}

// integral is a summed-area table over an edge map.
type integral struct {
	w    int
	sums []int
}

func newIntegral(edges [][]bool) *integral {
	h := len(edges)
	w := 0
	if h > 0 {
		w = len(edges[0])
	}

	in := &integral{w: w + 1, sums: make([]int, (w+1)*(h+1))}
	for y := 0; y < h; y++ {
		row := 0
		for x := 0; x < w; x++ {
			if edges[y][x] {
				row++
			}
			in.sums[(y+1)*in.w+x+1] = in.sums[y*in.w+x+1] + row
		}
	}
	return in
}

// count returns the number of edge pixels in [x1,x2) x [y1,y2).
func (in *integral) count(x1, y1, x2, y2 int) int {
	return in.sums[y2*in.w+x2] - in.sums[y1*in.w+x2] - in.sums[y2*in.w+x1] + in.sums[y1*in.w+x1]
}

// horizontalScore is the share of edge runs inside the window that run
// horizontally. Rows of glyphs produce many short horizontal runs.
func horizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontal, vertical := 0, 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] && !inRun {
				horizontal++
			}
			inRun = edges[row][col]
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] && !inRun {
				vertical++
			}
			inRun = edges[row][col]
		}
	}

	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

// mergeRegions folds overlapping windows together, keeping the best
// score and the highest density.
func mergeRegions(regions []Region) []Region {
	var merged []Region

	for _, r := range regions {
		joined := false
		for i := range merged {
			if r.Bounds.Overlaps(merged[i].Bounds) {
				merged[i].Bounds = merged[i].Bounds.Union(r.Bounds)
				merged[i].Score = math.Max(merged[i].Score, r.Score)
				merged[i].Density = math.Max(merged[i].Density, r.Density)
				joined = true
				break
			}
		}
		if !joined {
			merged = append(merged, r)
		}
	}
	return merged
}
