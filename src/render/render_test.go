package render

import (
	"BikeSharing/src/processor"
	"BikeSharing/src/report"
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildReport(t *testing.T, start, end string) report.Report {
	t.Helper()
	df := dataframe.New(
		series.New([]string{"2011-01-03 08:00:00", "2011-01-17 10:00:00", "2011-06-20 08:00:00", "2012-07-04 17:00:00", "2012-07-05 09:00:00"}, series.String, processor.ColDatetime),
		series.New([]int{8, 10, 8, 17, 9}, series.Int, processor.ColHour),
		series.New([]int{1, 0, 1, 0, 1}, series.Int, processor.ColWorkingDay),
		series.New([]int{0, 1, 0, 1, 0}, series.Int, processor.ColHoliday),
		series.New([]int{1, 1, 2, 3, 3}, series.Int, processor.ColSeason),
		series.New([]int{1, 2, 1, 1, 3}, series.Int, processor.ColWeather),
		series.New([]float64{9.8, 8.2, 25.0, 31.2, 28.0}, series.Float, processor.ColTemp),
		series.New([]float64{0.6, 0.44, 0.5, 0.45, 0.45}, series.Float, processor.ColHumidity),
		series.New([]float64{12, 19, 8, 7, 10}, series.Float, processor.ColWindspeed),
		series.New([]int{2, 7, 30, 90, 40}, series.Int, processor.ColCasual),
		series.New([]int{5, 20, 300, 200, 350}, series.Int, processor.ColRegistered),
		series.New([]int{7, 27, 330, 290, 390}, series.Int, processor.ColTotal),
	)
	ds, err := processor.NewDataset(df)
	require.NoError(t, err)
	s, err := report.NewSession(ds, start, end)
	require.NoError(t, err)
	return report.NewBuilder(nil).Build(s)
}

func TestChartRendersEveryPanel(t *testing.T) {
	rep := buildReport(t, "", "")
	for _, p := range rep.Panels {
		var buf bytes.Buffer
		require.NoError(t, Chart(p, &buf), p.ID)

		img, err := png.Decode(&buf)
		require.NoError(t, err, p.ID)
		assert.Equal(t, p.Chart.Width, img.Bounds().Dx(), p.ID)
	}
}

func TestChartEmptyView(t *testing.T) {
	rep := buildReport(t, "2011-01-05", "2011-01-05")
	for _, p := range rep.Panels {
		var buf bytes.Buffer
		require.NoError(t, Chart(p, &buf), p.ID)
		assert.NotZero(t, buf.Len())
	}
}

func TestChartUnknownKind(t *testing.T) {
	p := report.Panel{ID: "x", Chart: report.Chart{Kind: "pie"}, Table: report.Table{Rows: [][]float64{{1}}}}
	assert.Error(t, Chart(p, &bytes.Buffer{}))
}

func TestMatrixPutsFirstRowOnTop(t *testing.T) {
	m := matrix{{1, 0.2, 0.3}, {0.2, 1, 0.6}, {0.3, 0.6, 1}}
	// 最大纵坐标对应表格第一行
	assert.Equal(t, 2.0, m.row(0))
	assert.Equal(t, 0.3, m.Z(2, 2))
	assert.Equal(t, 0.6, m.Z(1, 0))
	assert.Equal(t, m.Z(2, int(m.row(0))), m[0][2])
	assert.Equal(t, []string{"c", "b", "a"}, reversed([]string{"a", "b", "c"}))
}

func TestCategories(t *testing.T) {
	index, names := categories([]float64{3, 1, 3, 2}, []string{"Fall", "Spring", "Fall", "Summer"})
	assert.Equal(t, []string{"Spring", "Summer", "Fall"}, names)
	assert.Equal(t, 2, index[3])
	assert.Equal(t, 0, index[1])
}

func TestLogo(t *testing.T) {
	img := Logo(LogoSize)
	assert.Equal(t, LogoSize, img.Bounds().Dx())

	var buf bytes.Buffer
	require.NoError(t, WriteLogo(&buf, ""))
	_, err := png.Decode(&buf)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, []byte("custom"), 0644))
	buf.Reset()
	require.NoError(t, WriteLogo(&buf, path))
	assert.Equal(t, "custom", buf.String())

	assert.Error(t, WriteLogo(&buf, filepath.Join(t.TempDir(), "missing.png")))
}

func TestWorkbook(t *testing.T) {
	rep := buildReport(t, "", "")

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, append([]string{summarySheet}, report.PanelIDs...), sheets)

	rows, err := f.GetRows(report.PanelSeason)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"label", "season", "casual", "registered", "total_rent"}, rows[0])
	assert.Equal(t, []string{"1", "1", "9", "25", "34"}, rows[1])

	total, err := f.GetCellValue(summarySheet, "B6")
	require.NoError(t, err)
	assert.Equal(t, "1044", total)
}

func TestSummaryText(t *testing.T) {
	rep := buildReport(t, "", "")

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, "Date range: 2011-01-03 ~ 2012-07-05")
	assert.Contains(t, out, "total_rent: 1,044")
	for _, p := range rep.Panels {
		assert.Contains(t, out, "== "+p.Chart.Title+" ==")
	}
	assert.True(t, strings.Contains(out, "label\thour\tregistered\tcasual"))

	buf.Reset()
	require.NoError(t, Summary(&buf, buildReport(t, "2011-01-05", "2011-01-05")))
	assert.Contains(t, buf.String(), "(no rows)")
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", Number(1234567))
	assert.Equal(t, "12", Number(12))
}
