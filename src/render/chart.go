package render

import (
	"BikeSharing/src/report"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"strconv"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// 像素转换为 vg 长度 (96 dpi)
const pxToPoints = 72.0 / 96.0

const barWidth = 18.0

// Chart 按面板描述绘制 PNG
func Chart(p report.Panel, w io.Writer) error {
	plt := plot.New()
	plt.Title.Text = p.Chart.Title
	plt.Title.TextStyle.Font.Size = vg.Points(14)
	plt.X.Label.Text = p.Chart.XLabel
	plt.Y.Label.Text = p.Chart.YLabel
	plt.Legend.Top = true

	var err error
	switch {
	case p.Table.Len() == 0:
		plt.X.Min, plt.X.Max = 0, 1
		plt.Y.Min, plt.Y.Max = 0, 1
	case p.Chart.Kind == report.KindLine:
		err = lines(plt, p)
	case p.Chart.Kind == report.KindBar && p.Chart.ColorBy != "":
		err = stackedBars(plt, p)
	case p.Chart.Kind == report.KindBar:
		err = groupedBars(plt, p)
	case p.Chart.Kind == report.KindHeatmap:
		err = heatmap(plt, p)
	default:
		err = fmt.Errorf("unknown chart kind %q", p.Chart.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", p.ID, err)
	}

	width := vg.Length(float64(p.Chart.Width) * pxToPoints)
	height := vg.Length(float64(p.Chart.Height) * pxToPoints)
	if width <= 0 || height <= 0 {
		width, height = 6*vg.Inch, 4.5*vg.Inch
	}
	wt, err := plt.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", p.ID, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func lines(plt *plot.Plot, p report.Panel) error {
	xs := p.Table.Column(p.Chart.X)
	plt.Add(plotter.NewGrid())

	for i, col := range p.Chart.Y {
		ys := p.Table.Column(col)
		xys := make(plotter.XYs, len(xs))
		for j := range xs {
			xys[j].X, xys[j].Y = xs[j], ys[j]
		}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return err
		}
		c := seriesColor(p.Chart.Palette, col, i)
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(2)
		if i < len(p.Chart.Dashes) && p.Chart.Dashes[i] == "dot" {
			line.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
		}
		points.GlyphStyle.Color = c
		if !p.Chart.Markers {
			points.GlyphStyle.Radius = 0
		}

		plt.Add(line, points)
		plt.Legend.Add(col, line, points)
	}
	return nil
}

func groupedBars(plt *plot.Plot, p report.Panel) error {
	n := len(p.Chart.Y)
	for i, col := range p.Chart.Y {
		bars, err := plotter.NewBarChart(plotter.Values(p.Table.Column(col)), vg.Points(barWidth))
		if err != nil {
			return err
		}
		bars.Color = seriesColor(p.Chart.Palette, col, i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Points((float64(i) - float64(n-1)/2) * barWidth)

		plt.Add(bars)
		plt.Legend.Add(col, bars)
	}
	plt.NominalX(p.Table.Labels...)
	return nil
}

// stackedBars 按 ColorBy 分组堆叠, X 轴为 Chart.X 的取值
func stackedBars(plt *plot.Plot, p report.Panel) error {
	if len(p.Chart.Y) == 0 {
		return fmt.Errorf("no value column")
	}
	xs := p.Table.Column(p.Chart.X)
	groups := p.Table.Column(p.Chart.ColorBy)
	values := p.Table.Column(p.Chart.Y[0])

	xIndex, xLabels := categories(xs, p.Table.Labels)
	groupIndex, groupNames := categories(groups, nil)

	stacks := make([]plotter.Values, len(groupNames))
	for i := range stacks {
		stacks[i] = make(plotter.Values, len(xLabels))
	}
	for i := range values {
		stacks[groupIndex[groups[i]]][xIndex[xs[i]]] += values[i]
	}

	var below *plotter.BarChart
	for i, vals := range stacks {
		bars, err := plotter.NewBarChart(vals, vg.Points(barWidth*2))
		if err != nil {
			return err
		}
		bars.Color = seriesColor(p.Chart.Palette, groupNames[i], i)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars

		plt.Add(bars)
		plt.Legend.Add(groupNames[i], bars)
	}
	plt.NominalX(xLabels...)
	return nil
}

// categories 返回各取值的位置(升序)与展示名称
func categories(values []float64, labels []string) (map[float64]int, []string) {
	names := make(map[float64]string)
	for i, v := range values {
		if _, ok := names[v]; ok {
			continue
		}
		if i < len(labels) {
			names[v] = labels[i]
		} else {
			names[v] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}

	keys := make([]float64, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	index := make(map[float64]int, len(keys))
	out := make([]string, len(keys))
	for i, k := range keys {
		index[k] = i
		out[i] = names[k]
	}
	return index, out
}

func heatmap(plt *plot.Plot, p report.Panel) error {
	grid := matrix(p.Table.Rows)
	hm := plotter.NewHeatMap(grid, blues(11))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Transparent
	plt.Add(hm)

	if p.Chart.TextAuto {
		var labels plotter.XYLabels
		for r, row := range p.Table.Rows {
			for c, v := range row {
				s := ""
				if !math.IsNaN(v) {
					s = strconv.FormatFloat(v, 'f', 2, 64)
				}
				labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: grid.row(r)})
				labels.Labels = append(labels.Labels, s)
			}
		}
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return err
		}
		for i := range l.TextStyle {
			l.TextStyle[i].XAlign = text.XCenter
			l.TextStyle[i].YAlign = text.YCenter
		}
		plt.Add(l)
	}

	plt.NominalX(p.Table.Labels...)
	plt.NominalY(reversed(p.Table.Labels)...)
	return nil
}

// matrix 把方阵适配为 plotter.GridXYZ, 第一行画在最上方
type matrix [][]float64

func (m matrix) Dims() (c, r int)   { return len(m), len(m) }
func (m matrix) Z(c, r int) float64 { return m[len(m)-1-r][c] }
func (m matrix) X(c int) float64    { return float64(c) }
func (m matrix) Y(r int) float64    { return float64(r) }

// row 表格第 r 行所在的纵坐标
func (m matrix) row(r int) float64 { return float64(len(m) - 1 - r) }

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// bluesPalette 由浅到深的蓝色渐变
type bluesPalette []color.Color

func (b bluesPalette) Colors() []color.Color { return b }

func blues(n int) bluesPalette {
	from := color.RGBA{R: 247, G: 251, B: 255, A: 255}
	to := color.RGBA{R: 8, G: 48, B: 107, A: 255}
	out := make(bluesPalette, n)
	for i := range out {
		t := float64(i) / float64(n-1)
		out[i] = color.RGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: 255,
		}
	}
	return out
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// seriesColor 优先使用调色板中的颜色名, 否则按序号取默认颜色
func seriesColor(palette map[string]string, key string, i int) color.Color {
	if name, ok := palette[key]; ok {
		if c, ok := colornames.Map[name]; ok {
			return c
		}
	}
	return plotutil.Color(i)
}
