// reader.go
package file

import (
	"BikeSharing/src/processor"
	"BikeSharing/src/utils"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Options 读取数据文件的选项
type Options struct {
	SheetName string // xlsx 工作表, 为空时取第一个
	Charset   string // csv 源编码, 为空或 utf-8 时不转换
}

// Load 读取 csv/xlsx 数据文件并生成按时间排序的 Dataset
// 文件缺失、格式错误或缺少必需列时返回的错误满足 errors.Is(err, processor.ErrDataUnavailable)
func Load(path string, opts Options) (*processor.Dataset, error) {
	df, err := ReadDataFrame(path, opts)
	if err != nil {
		return nil, err
	}
	return processor.NewDataset(df)
}

// ReadDataFrame 按扩展名选择解析方式, 返回原始 DataFrame
func ReadDataFrame(path string, opts Options) (dataframe.DataFrame, error) {
	if _, err := os.Stat(path); err != nil {
		return dataframe.DataFrame{}, unavailable("stat", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, opts.SheetName)
	case ".csv", ".txt", "":
		return ReadCSV(path, opts.Charset)
	default:
		return dataframe.DataFrame{}, unavailable("load", path, fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
}

// ReadCSV 读取逗号分隔的数据文件, 必要时先做编码转换
func ReadCSV(path, charset string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, unavailable("open", path, err)
	}
	defer f.Close()

	r, err := decoder(f, charset)
	if err != nil {
		return dataframe.DataFrame{}, unavailable("charset", path, err)
	}

	df := dataframe.ReadCSV(r, dataframe.WithTypes(processor.ColumnTypes))
	if df.Err != nil {
		return dataframe.DataFrame{}, unavailable("parse", path, df.Err)
	}
	return df, nil
}

func decoder(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// ReadXLSX 读取 xlsx 工作表, 第一行为列名
func ReadXLSX(path, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, unavailable("open", path, err)
	}
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, unavailable("open", path, fmt.Errorf("workbook has no sheets"))
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, unavailable("open", path, fmt.Errorf("sheet %q not found", sheetName))
		}
		sheet = s
	}

	df := convertSheetToDataFrame(sheet, xlFile.Date1904)
	if df.Err != nil {
		return dataframe.DataFrame{}, unavailable("parse", path, df.Err)
	}
	return df, nil
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
func convertSheetToDataFrame(sheet *xlsx.Sheet, date1904 bool) dataframe.DataFrame {
	if len(sheet.Rows) == 0 {
		return dataframe.New()
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, strings.TrimSpace(cell.Value))
	}

	columns := make([][]string, len(headers))
	for _, row := range sheet.Rows[1:] {
		if row == nil || emptyRow(row) {
			continue
		}
		for i := range headers {
			value := ""
			if i < len(row.Cells) {
				value = row.Cells[i].Value
			}
			columns[i] = append(columns[i], value)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		if colName == processor.ColDatetime {
			columns[i] = excelToTime(columns[i], date1904)
		}
		typ, ok := processor.ColumnTypes[colName]
		if !ok {
			typ = series.String
		}
		seriesList[i] = series.New(columns[i], typ, colName)
	}

	return dataframe.New(seriesList...)
}

func emptyRow(row *xlsx.Row) bool {
	for _, c := range row.Cells {
		if strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}

// excelToTime 把以序列号保存的 Excel 日期转换为文本时间, 已是文本的值保持不变
func excelToTime(values []string, date1904 bool) []string {
	out := make([]string, len(values))
	for i, v := range values {
		serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			out[i] = v
			continue
		}
		out[i] = xlsx.TimeFromExcelTime(serial, date1904).Format("2006-01-02 15:04:05")
	}
	return out
}

func unavailable(op, path string, err error) error {
	return utils.NewAppError(op, path, fmt.Errorf("%w: %v", processor.ErrDataUnavailable, err))
}
