package report

import (
	"encoding/json"
	"math"
)

// Kind 图表类型
type Kind string

const (
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindHeatmap Kind = "heatmap"
)

// 柱状图的排列方式
const (
	BarGroup = "group"
	BarStack = "stack"
)

// Chart 声明式的图表描述, 由渲染层解释
type Chart struct {
	Kind    Kind              `json:"kind"`
	X       string            `json:"x"`
	Y       []string          `json:"y"`
	ColorBy string            `json:"color_by,omitempty"`
	Palette map[string]string `json:"palette,omitempty"`
	Dashes  []string          `json:"dashes,omitempty"`
	Markers bool              `json:"markers,omitempty"`
	Barmode string            `json:"barmode,omitempty"`
	Title   string            `json:"title"`
	XLabel  string            `json:"x_label"`
	YLabel  string            `json:"y_label"`
	Width   int               `json:"width"`
	Height  int               `json:"height"`

	// 仅热力图使用
	ColorScale string  `json:"color_scale,omitempty"`
	Midpoint   float64 `json:"midpoint,omitempty"`
	TextAuto   bool    `json:"text_auto,omitempty"`
}

// Table 图表所依据的数据, Labels 为每行的展示名称
type Table struct {
	Columns []string
	Labels  []string
	Rows    [][]float64
}

// Len 行数
func (t Table) Len() int {
	return len(t.Rows)
}

// Column 按列名取出一列, 列不存在时返回 nil
func (t Table) Column(name string) []float64 {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// MarshalJSON NaN 输出为 null
func (t Table) MarshalJSON() ([]byte, error) {
	rows := make([][]*float64, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				rows[i][j] = &row[j]
			}
		}
	}
	columns, labels := t.Columns, t.Labels
	if columns == nil {
		columns = []string{}
	}
	if labels == nil {
		labels = []string{}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Labels  []string     `json:"labels"`
		Rows    [][]*float64 `json:"rows"`
	}{columns, labels, rows})
}

// AnnotationStyle 注释的展示样式
type AnnotationStyle string

const (
	StyleInfo AnnotationStyle = "info"
	StyleText AnnotationStyle = "text"
)

type Annotation struct {
	Style AnnotationStyle `json:"style"`
	Text  string          `json:"text"`
}

// Panel 看板上的一个图表面板
type Panel struct {
	ID         string     `json:"id"`
	Chart      Chart      `json:"chart"`
	Table      Table      `json:"table"`
	Annotation Annotation `json:"annotation"`
}
