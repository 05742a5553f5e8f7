// data.go
package processor

import (
	"BikeSharing/src/utils"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 数据文件中使用的列名
const (
	ColDatetime   = "datetime"
	ColHour       = "hour"
	ColWorkingDay = "workingday"
	ColHoliday    = "holiday"
	ColSeason     = "season"
	ColWeather    = "weather"
	ColTemp       = "temp"
	ColHumidity   = "humidity"
	ColWindspeed  = "windspeed"
	ColCasual     = "casual"
	ColRegistered = "registered"
	ColTotal      = "total_rent"

	// ColYear 加载时由 datetime 派生
	ColYear = "year"
)

// RequiredColumns 加载时必须存在的列
var RequiredColumns = []string{
	ColDatetime, ColHour, ColWorkingDay, ColHoliday, ColSeason, ColWeather,
	ColTemp, ColHumidity, ColWindspeed, ColCasual, ColRegistered, ColTotal,
}

// ColumnTypes 读取数据文件时强制使用的列类型
var ColumnTypes = map[string]series.Type{
	ColDatetime:   series.String,
	ColHour:       series.Int,
	ColWorkingDay: series.Int,
	ColHoliday:    series.Int,
	ColSeason:     series.Int,
	ColWeather:    series.Int,
	ColTemp:       series.Float,
	ColHumidity:   series.Float,
	ColWindspeed:  series.Float,
	ColCasual:     series.Int,
	ColRegistered: series.Int,
	ColTotal:      series.Int,
}

var (
	// ErrDataUnavailable 数据文件缺失、不可读或缺少必需列
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidDateRange 结束日期早于开始日期, 或超出数据的时间范围
	ErrInvalidDateRange = errors.New("invalid date range")
)

// Dataset 已加载并按时间排序的订单数据, 创建后只读
type Dataset struct {
	df    dataframe.DataFrame
	times []time.Time
}

// NewDataset 校验必需列, 解析 datetime 并按时间升序排列
func NewDataset(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, utils.NewAppError("dataset", "malformed table", fmt.Errorf("%w: %v", ErrDataUnavailable, df.Err))
	}
	if missing := utils.MissingColumns(df, RequiredColumns); len(missing) > 0 {
		return nil, utils.NewAppError("dataset", "missing required columns: "+strings.Join(missing, ", "), ErrDataUnavailable)
	}
	if df.Nrow() == 0 {
		return nil, utils.NewAppError("dataset", "no rows", ErrDataUnavailable)
	}

	if err := checkNumeric(df); err != nil {
		return nil, err
	}

	raw := df.Col(ColDatetime).Records()
	times := make([]time.Time, len(raw))
	for i, s := range raw {
		t, err := utils.ParseTime(s)
		if err != nil {
			return nil, utils.NewAppError("dataset", fmt.Sprintf("row %d", i+1), fmt.Errorf("%w: %v", ErrDataUnavailable, err))
		}
		times[i] = t
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return times[order[a]].Before(times[order[b]])
	})

	sorted := make([]time.Time, len(order))
	years := make([]int, len(order))
	for i, idx := range order {
		sorted[i] = times[idx]
		years[i] = times[idx].Year()
	}

	df = df.Subset(order).Mutate(series.New(years, series.Int, ColYear))
	if df.Err != nil {
		return nil, utils.NewAppError("dataset", "prepare table", fmt.Errorf("%w: %v", ErrDataUnavailable, df.Err))
	}

	return &Dataset{df: df, times: sorted}, nil
}

// checkNumeric 数值列中出现空值或无法解析的值时拒绝整个数据集
func checkNumeric(df dataframe.DataFrame) error {
	for _, col := range RequiredColumns {
		if ColumnTypes[col] == series.String {
			continue
		}
		for i, f := range df.Col(col).Float() {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return utils.NewAppError("dataset", fmt.Sprintf("column %s row %d is not numeric", col, i+1), ErrDataUnavailable)
			}
		}
	}
	return nil
}

// Len 返回记录数
func (d *Dataset) Len() int {
	return len(d.times)
}

// Bounds 返回数据中最早与最晚的时间戳
func (d *Dataset) Bounds() (time.Time, time.Time) {
	return d.times[0], d.times[len(d.times)-1]
}

// FullRange 覆盖全部数据的日期区间, 作为默认筛选条件
func (d *Dataset) FullRange() DateRange {
	first, last := d.Bounds()
	return NewDateRange(first, last)
}

// DataFrame 返回底层数据的副本
func (d *Dataset) DataFrame() dataframe.DataFrame {
	return d.df.Copy()
}
