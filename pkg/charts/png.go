package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette is a list of hex colours applied to series in order.
type Palette []string

// DefaultPalette matches the dashboard's stock colours.
var DefaultPalette = Palette{"#3b82f6", "#10b981", "#f59e0b"}

func (p Palette) color(i int) drawing.Color {
	if len(p) == 0 {
		p = DefaultPalette
	}
	return drawing.ColorFromHex(p[i%len(p)])
}

// Size is the output image size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when no size is given.
var DefaultSize = Size{Width: 640, Height: 400}

// MillionsTick formats an axis value as "$2.5M".
func MillionsTick(v any) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return fmt.Sprintf("$%.1fM", f/1e6)
}

// WritePNG draws dataset as a PNG image.
func WritePNG(w io.Writer, dataset Dataset, palette Palette, size Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	if len(dataset.Data) == 0 {
		return fmt.Errorf("charts: dataset %q has no data", dataset.Title)
	}

	var err error
	switch dataset.Type {
	case TypeBar:
		err = barChart(dataset, palette, size).Render(chart.PNG, w)
	default:
		err = pieChart(dataset, palette, size).Render(chart.PNG, w)
	}
	if err != nil {
		return fmt.Errorf("charts: render %q: %w", dataset.Title, err)
	}
	return nil
}

func pieChart(dataset Dataset, palette Palette, size Size) chart.PieChart {
	values := make([]chart.Value, 0, len(dataset.Data))
	for i, v := range dataset.Data {
		if v <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: label(dataset, i),
			Value: v,
			Style: chart.Style{FillColor: palette.color(i), StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}
	if len(values) == 0 {
		values = append(values, chart.Value{
			Label: "No data",
			Value: 1,
			Style: chart.Style{FillColor: drawing.ColorFromHex("e5e7eb")},
		})
	}
	return chart.PieChart{
		Title:  dataset.Title,
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
}

func barChart(dataset Dataset, palette Palette, size Size) chart.BarChart {
	bars := make([]chart.Value, len(dataset.Data))
	lo, hi := 0.0, 0.0
	for i, v := range dataset.Data {
		bars[i] = chart.Value{
			Label: label(dataset, i),
			Value: v,
			Style: chart.Style{FillColor: palette.color(i), StrokeColor: palette.color(i)},
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return chart.BarChart{
		Title:    dataset.Title,
		Width:    size.Width,
		Height:   size.Height,
		BarWidth: size.Width / (2 * max(len(bars), 1)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			ValueFormatter: MillionsTick,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}
}

func label(dataset Dataset, i int) string {
	if i < len(dataset.Labels) {
		return dataset.Labels[i]
	}
	return fmt.Sprintf("Series %d", i+1)
}
