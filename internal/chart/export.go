package chart

import (
	"bytes"
	"fmt"
	"strconv"

	"labflow/domain/experiment"

	chartlib "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ExportPNG renders the selected series to a raster PNG for download. The
// raster path goes through go-chart rather than the scene encoder; grouped
// bar charts are flattened to the first selected series, which is what the
// download view shows.
func ExportPNG(rows []experiment.DataRow, selected []experiment.Parameter, chartType Type, title string) ([]byte, error) {
	if len(rows) == 0 || len(selected) == 0 {
		return nil, fmt.Errorf("nothing to export: no rows or no parameters selected")
	}

	if chartType == TypeBar {
		return exportBarPNG(rows, selected[0], title)
	}
	return exportSeriesPNG(rows, selected, chartType, title)
}

func exportSeriesPNG(rows []experiment.DataRow, selected []experiment.Parameter, chartType Type, title string) ([]byte, error) {
	graphSeries := make([]chartlib.Series, 0, len(selected))
	for idx, p := range selected {
		xs, ys := seriesValues(rows, p.Name)
		if len(xs) == 0 {
			continue
		}
		color := drawing.ColorFromHex(Palette[idx%len(Palette)][1:])

		style := chartlib.Style{StrokeColor: color, StrokeWidth: 2}
		if chartType == TypeScatter {
			style = chartlib.Style{
				StrokeWidth:      chartlib.Disabled,
				DotWidth:         4,
				DotColor:         color.WithAlpha(153),
			}
		}

		graphSeries = append(graphSeries, chartlib.ContinuousSeries{
			Name:    seriesName(p),
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}
	if len(graphSeries) == 0 {
		return nil, fmt.Errorf("nothing to export: no numeric values in selection")
	}

	graph := chartlib.Chart{
		Title:  title,
		Width:  int(canvasWidth),
		Height: int(canvasHeight),
		Series: graphSeries,
	}

	var buf bytes.Buffer
	if err := graph.Render(chartlib.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func exportBarPNG(rows []experiment.DataRow, p experiment.Parameter, title string) ([]byte, error) {
	values := make([]chartlib.Value, 0, len(rows))
	for i, row := range rows {
		v, ok := parseCell(row[p.Name])
		if !ok {
			continue
		}
		values = append(values, chartlib.Value{
			Value: v,
			Label: strconv.Itoa(i + 1),
			Style: chartlib.Style{FillColor: drawing.ColorFromHex(Palette[0][1:])},
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("nothing to export: no numeric values for %s", p.Name)
	}

	graph := chartlib.BarChart{
		Title:  title,
		Width:  int(canvasWidth),
		Height: int(canvasHeight),
		Bars:   values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chartlib.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// seriesValues returns parallel x (row index) and y slices of valid points
func seriesValues(rows []experiment.DataRow, name string) ([]float64, []float64) {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for i, row := range rows {
		v, ok := parseCell(row[name])
		if !ok {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	return xs, ys
}

func seriesName(p experiment.Parameter) string {
	if p.Unit != "" {
		return p.Name + " (" + p.Unit + ")"
	}
	return p.Name
}
