package file

import (
	"BikeSharing/src/processor"
	"BikeSharing/src/storage"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

const header = "datetime,hour,workingday,holiday,season,weather,temp,humidity,windspeed,casual,registered,total_rent\n"

const rows = "2011-01-02 09:00:00,9,0,0,1,1,9.8,0.6,12.0,2,5,7\n" +
	"2011-01-01 08:00:00,8,1,0,1,2,9.0,0.8,0.0,3,13,16\n" +
	"2011-01-03 10:00:00,10,0,1,1,1,8.2,0.44,19.0,7,20,27\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "orders.csv", header+rows)

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	first, last := ds.Bounds()
	assert.Equal(t, time.Date(2011, 1, 1, 8, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2011, 1, 3, 10, 0, 0, 0, time.UTC), last)
}

func TestLoadCSVWithCharset(t *testing.T) {
	// extra column with a latin-1 encoded value
	content := "station," + header
	for _, line := range []string{
		"Caf\xe9,2011-01-01 08:00:00,8,1,0,1,2,9.0,0.8,0.0,3,13,16\n",
		"Z\xfcrich,2011-01-02 09:00:00,9,0,0,1,1,9.8,0.6,12.0,2,5,7\n",
	} {
		content += line
	}
	path := writeFile(t, "orders.csv", content)

	df, err := ReadDataFrame(path, Options{Charset: "latin1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Café", "Zürich"}, df.Col("station").Records())

	_, err = ReadDataFrame(path, Options{Charset: "no-such-charset"})
	assert.ErrorIs(t, err, processor.ErrDataUnavailable)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.ErrorIs(t, err, processor.ErrDataUnavailable)

	noTotal := "datetime,hour,workingday,holiday,season,weather,temp,humidity,windspeed,casual,registered\n" +
		"2011-01-01 08:00:00,8,1,0,1,2,9.0,0.8,0.0,3,13\n"
	_, err = Load(writeFile(t, "orders.csv", noTotal), Options{})
	assert.ErrorIs(t, err, processor.ErrDataUnavailable)
	assert.Contains(t, err.Error(), processor.ColTotal)

	_, err = Load(writeFile(t, "orders.json", "{}"), Options{})
	assert.ErrorIs(t, err, processor.ErrDataUnavailable)

	_, err = Load(writeFile(t, "empty.csv", header), Options{})
	assert.ErrorIs(t, err, processor.ErrDataUnavailable)
}

func TestLoadRejectsNonNumericCells(t *testing.T) {
	cases := []struct {
		name   string
		row    string
		column string
	}{
		{"word in hour", "2011-01-01 08:00:00,eight,1,0,1,2,9.0,0.8,0.0,3,13,16\n", processor.ColHour},
		{"empty casual", "2011-01-01 08:00:00,8,1,0,1,2,9.0,0.8,0.0,,13,16\n", processor.ColCasual},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "orders.csv", header+rows+tc.row), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, processor.ErrDataUnavailable)
			assert.Contains(t, err.Error(), "column "+tc.column+" row 4 is not numeric")
		})
	}
}

func TestLoadXLSX(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("orders")
	require.NoError(t, err)

	add := func(values ...string) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	add("datetime", "hour", "workingday", "holiday", "season", "weather", "temp", "humidity", "windspeed", "casual", "registered", "total_rent")
	add("40545", "0", "0", "0", "1", "1", "9.8", "0.6", "12.0", "2", "5", "7")
	add("2011-01-01 08:00:00", "8", "1", "0", "1", "2", "9.0", "0.8", "0.0", "3", "13", "16")

	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, file.Save(path))

	ds, err := Load(path, Options{SheetName: "orders"})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	first, last := ds.Bounds()
	assert.Equal(t, time.Date(2011, 1, 1, 8, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2011, 1, 2, 0, 0, 0, 0, time.UTC), last)

	_, err = Load(path, Options{SheetName: "Sheet9"})
	assert.ErrorIs(t, err, processor.ErrDataUnavailable)
}

func TestExcelToTime(t *testing.T) {
	got := excelToTime([]string{"40544", "2011-01-01 05:00:00", ""}, false)
	assert.Equal(t, []string{"2011-01-01 00:00:00", "2011-01-01 05:00:00", ""}, got)
}

func TestSourceKeepsLastGoodDataset(t *testing.T) {
	logger, err := storage.NewLogger(filepath.Join(t.TempDir(), "test.log"))
	require.NoError(t, err)
	defer logger.Close()

	path := writeFile(t, "orders.csv", header+rows)
	src := NewSource(path, Options{}, logger)
	assert.Equal(t, path, src.Path())

	_, err = src.Current()
	assert.ErrorIs(t, err, processor.ErrDataUnavailable)

	require.NoError(t, src.Reload())
	ds, err := src.Current()
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0644))
	assert.ErrorIs(t, src.Reload(), processor.ErrDataUnavailable)

	ds, err = src.Current()
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, int64(1), src.Reloads())
}

func TestFileMonitorReportsWrites(t *testing.T) {
	path := writeFile(t, "orders.csv", header+rows)
	monitor, err := NewFileMonitor(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- monitor.Watch(ctx, func(name string) {
			select {
			case changed <- name:
			default:
			}
		})
	}()

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.csv"), []byte("x"), 0644))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(header+rows), 0644))

	select {
	case name := <-changed:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
}
