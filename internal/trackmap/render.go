package trackmap

import (
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"

	"github.com/auvtools/georef/internal/mission"
)

//go:embed DejaVuSansMono.ttf
var fontBytes []byte

const (
	dpi         = 96.0
	fontSize    = 13.0
	lineSpacing = 1.5

	defaultWidth  = 1400
	defaultHeight = 700
	mapBorder     = 40

	markerRadius = 6

	datetimeFormat = time.DateTime
)

var (
	startColor  = color.RGBA{G: 0xa0, A: 0xff}
	endColor    = color.RGBA{R: 0xd0, A: 0xff}
	borderColor = color.Black
)

// Info carries run context the map prints alongside the path: the mission
// name and how many frames each camera role produced.
type Info struct {
	Mission string
	Images  map[mission.Role]int
}

// RenderConfig holds the mission map layout options.
type RenderConfig struct {
	Width    int            // Full image width; left half is the map panel
	Height   int            // Full image height
	FontSize float64        // Stats text size in points
	Location *time.Location // Timezone for start/end display
}

// Renderer draws the mission map: path panel on the left, stats panel on
// the right.
type Renderer struct {
	context *freetype.Context
	config  RenderConfig
}

// NewRenderer parses the embedded font and applies layout defaults.
func NewRenderer(config RenderConfig) (*Renderer, error) {
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &Renderer{context: ctx, config: config}, nil
}

// Render draws the map. An empty summary renders a valid image with a
// "no pose data" note instead of a path; absence of pose data is reported,
// not fatal.
func (r *Renderer) Render(summary Summary, info Info) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)

	mapArea := image.Rect(mapBorder, mapBorder, r.config.Height-mapBorder, r.config.Height-mapBorder)
	drawRect(img, mapArea, borderColor)

	if summary.SampleCount > 0 {
		r.drawPath(img, mapArea, summary)
	} else if err := r.drawString("NO POSE DATA", mapArea.Min.X+10, mapArea.Min.Y+30); err != nil {
		return nil, fmt.Errorf("drawing empty note: %w", err)
	}

	if err := r.drawStats(summary, info); err != nil {
		return nil, fmt.Errorf("drawing stats: %w", err)
	}
	return img, nil
}

// drawPath projects the polyline into the map area with equal axis scale
// and colors it by time progression, with start and end markers.
func (r *Renderer) drawPath(img *image.RGBA, area image.Rectangle, summary Summary) {
	lonSpan := summary.LongitudeMax - summary.LongitudeMin
	latSpan := summary.LatitudeMax - summary.LatitudeMin

	// Equal aspect: one scale for both axes, path centered in the panel.
	scale := math.Inf(1)
	if lonSpan > 0 {
		scale = float64(area.Dx()) / lonSpan
	}
	if latSpan > 0 {
		scale = math.Min(scale, float64(area.Dy())/latSpan)
	}
	if math.IsInf(scale, 1) {
		scale = 0 // Single-point path collapses to the panel center
	}

	cx := float64(area.Min.X+area.Max.X) / 2
	cy := float64(area.Min.Y+area.Max.Y) / 2
	midLon := (summary.LongitudeMin + summary.LongitudeMax) / 2
	midLat := (summary.LatitudeMin + summary.LatitudeMax) / 2

	project := func(p Point) (int, int) {
		x := cx + (p.Longitude-midLon)*scale
		y := cy - (p.Latitude-midLat)*scale // north up
		return int(math.Round(x)), int(math.Round(y))
	}

	last := len(summary.Path) - 1
	for i := 1; i < len(summary.Path); i++ {
		x0, y0 := project(summary.Path[i-1])
		x1, y1 := project(summary.Path[i])
		drawLine(img, x0, y0, x1, y1, progressColor(float64(i)/float64(last)))
	}

	x, y := project(summary.Path[0])
	drawDisc(img, x, y, markerRadius, startColor)
	x, y = project(summary.Path[last])
	drawDisc(img, x, y, markerRadius, endColor)
}

func (r *Renderer) drawStats(summary Summary, info Info) error {
	lines := []string{
		"MISSION STATISTICS",
		"",
		fmt.Sprintf("Mission: %s", info.Mission),
		"",
		"TIME",
	}

	if summary.SampleCount > 0 {
		start := time.Unix(0, int64(summary.StartTime*1e9)).In(r.config.Location)
		end := time.Unix(0, int64(summary.EndTime*1e9)).In(r.config.Location)
		lines = append(lines,
			fmt.Sprintf("  Start:    %s", start.Format(datetimeFormat)),
			fmt.Sprintf("  End:      %s", end.Format(datetimeFormat)),
			fmt.Sprintf("  Duration: %.1f s", summary.Duration()),
			"",
			"LOCATION (WGS84)",
			fmt.Sprintf("  Longitude: %.6f to %.6f", summary.LongitudeMin, summary.LongitudeMax),
			fmt.Sprintf("  Latitude:  %.6f to %.6f", summary.LatitudeMin, summary.LatitudeMax),
			fmt.Sprintf("  Span:      %.1fm x %.1fm", summary.LongitudeSpanMeters(), summary.LatitudeSpanMeters()),
			"",
			"DEPTH",
			fmt.Sprintf("  Range: %.2fm to %.2fm", summary.DepthMin, summary.DepthMax),
			"",
			"POSE DATA",
			fmt.Sprintf("  Samples: %s", humanize.Comma(int64(summary.SampleCount))),
			fmt.Sprintf("  Rate:    %.1f Hz", summary.PoseRate()),
		)
	} else {
		lines = append(lines,
			"  No pose data recorded",
			"",
			"POSE DATA",
			"  Samples: 0",
		)
	}

	lines = append(lines, "", "IMAGES EXTRACTED")
	roles := make([]mission.Role, 0, len(info.Images))
	for role := range info.Images {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	for _, role := range roles {
		lines = append(lines, fmt.Sprintf("  %-8s %s images", role+":", humanize.Comma(int64(info.Images[role]))))
	}
	if len(roles) == 0 {
		lines = append(lines, "  none")
	}

	x := r.config.Height + mapBorder // Stats panel starts right of the map panel
	y := mapBorder
	lineHeight := int(r.config.FontSize * lineSpacing * dpi / 72)
	for _, line := range lines {
		y += lineHeight
		if err := r.drawString(line, x, y); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawString(s string, x, y int) error {
	if s == "" {
		return nil
	}
	_, err := r.context.DrawString(s, freetype.Pt(x, y))
	return err
}

// drawLine is a Bresenham line within the image bounds.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawDisc(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				img.Set(cx+x, cy+y, c)
			}
		}
	}
}

func drawRect(img *image.RGBA, rect image.Rectangle, c color.Color) {
	for x := rect.Min.X; x <= rect.Max.X; x++ {
		img.Set(x, rect.Min.Y, c)
		img.Set(x, rect.Max.Y, c)
	}
	for y := rect.Min.Y; y <= rect.Max.Y; y++ {
		img.Set(rect.Min.X, y, c)
		img.Set(rect.Max.X, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
