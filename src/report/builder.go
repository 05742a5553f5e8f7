package report

import (
	"BikeSharing/src/config"
	"BikeSharing/src/processor"
	"strconv"
)

const (
	chartWidth  = 800
	chartHeight = 600
)

// Session 一次请求的上下文: 数据快照与筛选后的视图
type Session struct {
	Dataset *processor.Dataset
	Range   processor.DateRange
	view    processor.View
}

// NewSession 校验日期区间并筛选数据; start/end 为空时使用数据的起止日期
func NewSession(ds *processor.Dataset, start, end string) (Session, error) {
	r := ds.FullRange()
	if start != "" || end != "" {
		if start == "" {
			start = r.Start.Format(processor.DateLayout)
		}
		if end == "" {
			end = r.End.Format(processor.DateLayout)
		}
		parsed, err := processor.ParseDateRange(start, end)
		if err != nil {
			return Session{}, err
		}
		r = parsed
	}
	return NewSessionRange(ds, r)
}

// NewSessionRange 与 NewSession 相同, 区间已解析
func NewSessionRange(ds *processor.Dataset, r processor.DateRange) (Session, error) {
	v, err := ds.Filter(r)
	if err != nil {
		return Session{}, err
	}
	return Session{Dataset: ds, Range: r, view: v}, nil
}

// View 筛选后的数据
func (s Session) View() processor.View {
	return s.view
}

// Report 一次渲染所需的全部内容
type Report struct {
	Range   processor.DateRange   `json:"range"`
	Bounds  processor.DateRange   `json:"bounds"`
	Summary processor.ViewSummary `json:"summary"`
	Panels  []Panel               `json:"panels"`
}

// Panel 按编号查找面板
func (r Report) Panel(id string) (Panel, bool) {
	for _, p := range r.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}

// Builder 把聚合结果映射为图表描述
type Builder struct {
	labels *config.DataConfig
}

func NewBuilder(labels *config.DataConfig) *Builder {
	if labels == nil {
		labels = &config.DataConfig{}
	}
	return &Builder{labels: labels}
}

// Build 计算六个面板, 顺序与 PanelIDs 一致
func (b *Builder) Build(s Session) Report {
	v := s.view
	rep := Report{
		Range:   s.Range,
		Summary: processor.Summary(v),
	}
	if s.Dataset != nil {
		rep.Bounds = s.Dataset.FullRange()
	}

	rep.Panels = []Panel{
		b.hourlyPanel(PanelWorkingDayHourly, "Total Orders by Hour of the Day (Working Day)", processor.WorkingDayHourly(v)),
		b.hourlyPanel(PanelNonWorkingDayHourly, "Total Orders by Hour of the Day (Non-Working Day)", processor.NonWorkingDayHourly(v)),
		b.categoryPanel(PanelWeather, processor.ColWeather, "Weather", "Total Orders by Weather and User Status", processor.ByWeather(v), b.labels.WeatherLabel),
		b.correlationPanel(processor.CorrelationMatrix(v)),
		b.categoryPanel(PanelSeason, processor.ColSeason, "Season", "Total Orders by Season and User Status", processor.BySeason(v), b.labels.SeasonLabel),
		b.seasonYearPanel(processor.BySeasonYear(v)),
	}
	return rep
}

func (b *Builder) annotation(id string) Annotation {
	a := defaultAnnotations[id]
	if text := b.labels.GetAnnotation(id); text != "" {
		a.Text = text
	}
	return a
}

func (b *Builder) hourlyPanel(id, title string, rows []processor.HourlyUsage) Panel {
	t := Table{Columns: []string{processor.ColHour, processor.ColRegistered, processor.ColCasual}}
	for _, r := range rows {
		t.Labels = append(t.Labels, strconv.Itoa(r.Hour))
		t.Rows = append(t.Rows, []float64{float64(r.Hour), float64(r.Registered), float64(r.Casual)})
	}
	return Panel{
		ID: id,
		Chart: Chart{
			Kind:    KindLine,
			X:       processor.ColHour,
			Y:       []string{processor.ColRegistered, processor.ColCasual},
			Dashes:  []string{"solid", "dot"},
			Markers: true,
			Title:   title,
			XLabel:  "Hour of the Day",
			YLabel:  "Total Orders",
			Width:   chartWidth,
			Height:  chartHeight,
		},
		Table:      t,
		Annotation: b.annotation(id),
	}
}

func (b *Builder) categoryPanel(id, col, xLabel, title string, rows []processor.CategoryUsage, label func(int) string) Panel {
	t := Table{Columns: []string{col, processor.ColCasual, processor.ColRegistered, processor.ColTotal}}
	for _, r := range rows {
		name := label(r.Category)
		if name == "" {
			name = strconv.Itoa(r.Category)
		}
		t.Labels = append(t.Labels, name)
		t.Rows = append(t.Rows, []float64{float64(r.Category), float64(r.Casual), float64(r.Registered), float64(r.Total)})
	}
	return Panel{
		ID: id,
		Chart: Chart{
			Kind: KindBar,
			X:    col,
			Y:    []string{processor.ColCasual, processor.ColRegistered, processor.ColTotal},
			Palette: map[string]string{
				processor.ColCasual:     "darkblue",
				processor.ColRegistered: "blue",
				processor.ColTotal:      "darkorange",
			},
			Barmode: BarGroup,
			Title:   title,
			XLabel:  xLabel,
			YLabel:  "Total Orders",
			Width:   chartWidth,
			Height:  chartHeight,
		},
		Table:      t,
		Annotation: b.annotation(id),
	}
}

func (b *Builder) correlationPanel(c processor.Correlation) Panel {
	t := Table{Columns: c.Fields, Labels: c.Fields}
	for _, row := range c.Values {
		t.Rows = append(t.Rows, append([]float64(nil), row...))
	}
	return Panel{
		ID: PanelCorrelation,
		Chart: Chart{
			Kind:       KindHeatmap,
			X:          "Variables",
			Y:          c.Fields,
			ColorScale: "Blues",
			Midpoint:   0,
			TextAuto:   true,
			Title:      "Weather Variables Correlation Heatmap",
			XLabel:     "Variables",
			YLabel:     "Variables",
			Width:      chartWidth,
			Height:     chartHeight,
		},
		Table:      t,
		Annotation: b.annotation(PanelCorrelation),
	}
}

func (b *Builder) seasonYearPanel(rows []processor.SeasonYearUsage) Panel {
	t := Table{Columns: []string{processor.ColYear, processor.ColSeason, processor.ColTotal}}
	for _, r := range rows {
		name := b.labels.SeasonLabel(r.Season)
		if name == "" {
			name = strconv.Itoa(r.Season)
		}
		t.Labels = append(t.Labels, name)
		t.Rows = append(t.Rows, []float64{float64(r.Year), float64(r.Season), float64(r.Total)})
	}
	return Panel{
		ID: PanelSeasonYear,
		Chart: Chart{
			Kind:    KindBar,
			X:       processor.ColSeason,
			Y:       []string{processor.ColTotal},
			ColorBy: processor.ColYear,
			Palette: map[string]string{"2011": "blue", "2012": "darkblue"},
			Barmode: BarStack,
			Title:   "Total Rent by Season and Year",
			XLabel:  "Season",
			YLabel:  "Total Rent",
			Width:   chartWidth,
			Height:  chartHeight,
		},
		Table:      t,
		Annotation: b.annotation(PanelSeasonYear),
	}
}
