package chart

import (
	"fmt"
	"math"
	"strconv"

	"labflow/domain/experiment"
	"labflow/internal/analysis"
)

// Type selects the chart style
type Type string

const (
	TypeLine    Type = "line"
	TypeBar     Type = "bar"
	TypeScatter Type = "scatter"
)

// Palette is the fixed series color cycle; series beyond six wrap around
var Palette = []string{
	"#3b82f6", // blue
	"#ef4444", // red
	"#10b981", // green
	"#f59e0b", // amber
	"#8b5cf6", // violet
	"#ec4899", // pink
}

// Canvas and plot-area layout constants
const (
	canvasWidth   = 800.0
	canvasHeight  = 400.0
	paddingLeft   = 56.0
	paddingRight  = 20.0
	paddingTop    = 20.0
	paddingBottom = 44.0

	yTickCount   = 5  // intervals; 6 labeled gridlines including max
	xLabelTarget = 10 // approximate number of x-axis labels
)

// Renderer builds chart scenes from experiment rows. Stateless: every call
// is an independent transform of (data, config) to a scene.
type Renderer struct{}

// NewRenderer creates a chart renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// series is one selected parameter's valid points in pixel-source space
type series struct {
	param  experiment.Parameter
	color  string
	points []seriesPoint
}

type seriesPoint struct {
	row   int
	value float64
}

// Render builds the drawable scene for the given rows, parameter selection
// and chart type. Empty input renders an explicit placeholder, never a blank
// axes-only scene and never an error.
func (r *Renderer) Render(rows []experiment.DataRow, selected []experiment.Parameter, statistics map[string]*analysis.ParameterStatistics, chartType Type) *Scene {
	if len(rows) == 0 || len(selected) == 0 {
		return r.emptyScene()
	}

	allSeries, yMin, yMax, ok := collectSeries(rows, selected)
	if !ok {
		return r.emptyScene()
	}

	yRange := yMax - yMin
	if yRange == 0 {
		yRange = 1 // constant data still gets a well-defined scale
	}

	plotW := canvasWidth - paddingLeft - paddingRight
	plotH := canvasHeight - paddingTop - paddingBottom

	xDenom := float64(len(rows) - 1)
	if xDenom == 0 {
		xDenom = 1 // single-row dataset maps index 0 to x=0
	}
	xAt := func(row int) float64 {
		return paddingLeft + float64(row)/xDenom*plotW
	}
	yAt := func(v float64) float64 {
		return paddingTop + plotH - (v-yMin)/yRange*plotH
	}

	scene := &Scene{Width: canvasWidth, Height: canvasHeight}

	r.drawGrid(scene, yMin, yRange, len(rows), xAt, yAt)

	switch chartType {
	case TypeBar:
		r.drawBars(scene, allSeries, len(rows), plotW, yMin, yAt)
	case TypeScatter:
		r.drawScatter(scene, allSeries, xAt, yAt)
	default:
		r.drawLines(scene, allSeries, statistics, xAt, yAt)
	}

	return scene
}

// collectSeries extracts valid points per selected parameter and the shared
// Y-domain across the union of all selected parameters' values
func collectSeries(rows []experiment.DataRow, selected []experiment.Parameter) ([]series, float64, float64, bool) {
	result := make([]series, 0, len(selected))
	yMin := math.Inf(1)
	yMax := math.Inf(-1)
	any := false

	for idx, p := range selected {
		s := series{param: p, color: Palette[idx%len(Palette)]}
		for i, row := range rows {
			v, ok := parseCell(row[p.Name])
			if !ok {
				continue
			}
			s.points = append(s.points, seriesPoint{row: i, value: v})
			if v < yMin {
				yMin = v
			}
			if v > yMax {
				yMax = v
			}
			any = true
		}
		result = append(result, s)
	}

	if !any {
		return nil, 0, 0, false
	}
	return result, yMin, yMax, true
}

// emptyScene renders the no-data placeholder
func (r *Renderer) emptyScene() *Scene {
	return &Scene{
		Width:  canvasWidth,
		Height: canvasHeight,
		Shapes: []Shape{
			Rect{X: 0, Y: 0, W: canvasWidth, H: canvasHeight, Fill: "#f9fafb"},
			Text{
				X:        canvasWidth / 2,
				Y:        canvasHeight / 2,
				Content:  "No data to display",
				FontSize: 16,
				Fill:     "#9ca3af",
				Anchor:   "middle",
			},
		},
	}
}

// drawGrid emits axes, Y gridlines with value labels, and strided X labels
func (r *Renderer) drawGrid(scene *Scene, yMin, yRange float64, rowCount int, xAt func(int) float64, yAt func(float64) float64) {
	plotRight := canvasWidth - paddingRight
	plotBottom := canvasHeight - paddingBottom

	// Y gridlines: yTickCount intervals, labels at every boundary incl. max
	for t := 0; t <= yTickCount; t++ {
		v := yMin + yRange*float64(t)/float64(yTickCount)
		y := yAt(v)
		scene.Shapes = append(scene.Shapes,
			Line{X1: paddingLeft, Y1: y, X2: plotRight, Y2: y, Stroke: "#e5e7eb", StrokeWidth: 1},
			Text{X: paddingLeft - 8, Y: y + 4, Content: formatTick(v), FontSize: 11, Fill: "#6b7280", Anchor: "end"},
		)
	}

	// X labels at a stride that keeps roughly xLabelTarget labels visible
	stride := (rowCount + xLabelTarget - 1) / xLabelTarget
	if stride < 1 {
		stride = 1
	}
	for i := 0; i < rowCount; i += stride {
		scene.Shapes = append(scene.Shapes, Text{
			X:        xAt(i),
			Y:        plotBottom + 18,
			Content:  strconv.Itoa(i + 1),
			FontSize: 11,
			Fill:     "#6b7280",
			Anchor:   "middle",
		})
	}

	// Axis strokes drawn over the gridlines
	scene.Shapes = append(scene.Shapes,
		Line{X1: paddingLeft, Y1: paddingTop, X2: paddingLeft, Y2: plotBottom, Stroke: "#9ca3af", StrokeWidth: 1},
		Line{X1: paddingLeft, Y1: plotBottom, X2: plotRight, Y2: plotBottom, Stroke: "#9ca3af", StrokeWidth: 1},
	)
}

// drawLines renders a polyline through valid points per series, point
// markers, and the dashed trend overlay for visibly trending series
func (r *Renderer) drawLines(scene *Scene, allSeries []series, statistics map[string]*analysis.ParameterStatistics, xAt func(int) float64, yAt func(float64) float64) {
	for _, s := range allSeries {
		if len(s.points) == 0 {
			continue
		}

		pts := make([]Point, 0, len(s.points))
		for _, p := range s.points {
			pts = append(pts, Point{X: xAt(p.row), Y: yAt(p.value)})
		}
		if len(pts) > 1 {
			scene.Shapes = append(scene.Shapes, Polyline{Points: pts, Stroke: s.color, StrokeWidth: 2})
		}
		for _, p := range pts {
			scene.Shapes = append(scene.Shapes, Circle{CX: p.X, CY: p.Y, R: 3, Fill: s.color})
		}

		st := statistics[s.param.Name]
		if st == nil || math.Abs(st.Trend) <= 0.1 || st.N < 2 {
			continue
		}
		// Regression line anchored at the series mean over positions 0..n-1
		half := st.Trend * float64(st.N-1) / 2
		scene.Shapes = append(scene.Shapes, Line{
			X1: xAt(0), Y1: yAt(st.Mean - half),
			X2: xAt(st.N - 1), Y2: yAt(st.Mean + half),
			Stroke: s.color, StrokeWidth: 1.5, Dashed: true, Opacity: 0.5,
		})
	}
}

// drawBars renders one bar per valid point, offset by series index so
// multiple series at the same row sit side by side
func (r *Renderer) drawBars(scene *Scene, allSeries []series, rowCount int, plotW, yMin float64, yAt func(float64) float64) {
	plotBottom := canvasHeight - paddingBottom
	cellW := plotW / float64(rowCount)
	barW := cellW / float64(len(allSeries)) * 0.8
	inset := (cellW - barW*float64(len(allSeries))) / 2

	for si, s := range allSeries {
		for _, p := range s.points {
			x := paddingLeft + cellW*float64(p.row) + inset + barW*float64(si)
			top := yAt(p.value)
			scene.Shapes = append(scene.Shapes, Rect{
				X: x, Y: top, W: barW, H: plotBottom - top,
				Fill: s.color, Opacity: 0.85,
			})
		}
	}
}

// drawScatter renders semi-transparent markers only
func (r *Renderer) drawScatter(scene *Scene, allSeries []series, xAt func(int) float64, yAt func(float64) float64) {
	for _, s := range allSeries {
		for _, p := range s.points {
			scene.Shapes = append(scene.Shapes, Circle{
				CX: xAt(p.row), CY: yAt(p.value), R: 4,
				Fill: s.color, Opacity: 0.6,
			})
		}
	}
}

// parseCell mirrors the statistics engine's cell parsing so chart points and
// statistics always agree on which cells are valid
func parseCell(raw interface{}) (float64, bool) {
	var v float64
	switch cell := raw.(type) {
	case float64:
		v = cell
	case float32:
		v = float64(cell)
	case int:
		v = float64(cell)
	case int64:
		v = float64(cell)
	case string:
		parsed, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// formatTick renders an axis value compactly
func formatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e9 {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%.2f", v)
}
