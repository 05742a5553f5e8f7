package processor

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// HourlyUsage 每小时的注册/非注册用户订单量
type HourlyUsage struct {
	Hour       int `json:"hour"`
	Registered int `json:"registered"`
	Casual     int `json:"casual"`
}

// CategoryUsage 按天气或季节分组的订单量
type CategoryUsage struct {
	Category   int `json:"category"`
	Casual     int `json:"casual"`
	Registered int `json:"registered"`
	Total      int `json:"total_rent"`
}

// SeasonYearUsage 按年份与季节分组的总订单量
type SeasonYearUsage struct {
	Year   int `json:"year"`
	Season int `json:"season"`
	Total  int `json:"total_rent"`
}

// ViewSummary 筛选结果的汇总
type ViewSummary struct {
	Rows       int       `json:"rows"`
	Casual     int       `json:"casual"`
	Registered int       `json:"registered"`
	Total      int       `json:"total_rent"`
	First      time.Time `json:"first,omitempty"`
	Last       time.Time `json:"last,omitempty"`
}

// WorkingDayHourly 工作日(非节假日)按小时统计
func WorkingDayHourly(v View) []HourlyUsage {
	return hourly(v, 1, 0)
}

// NonWorkingDayHourly 非工作日按小时统计, 只取 holiday=1 的记录, 普通周末不计入
func NonWorkingDayHourly(v View) []HourlyUsage {
	return hourly(v, 0, 1)
}

func hourly(v View, workingDay, holiday int) []HourlyUsage {
	if v.Len() == 0 {
		return nil
	}

	rows := v.df.FilterAggregation(
		dataframe.And,
		dataframe.F{Colname: ColWorkingDay, Comparator: series.Eq, Comparando: workingDay},
		dataframe.F{Colname: ColHoliday, Comparator: series.Eq, Comparando: holiday},
	)
	grouped, ok := sumBy(rows, []string{ColHour}, []string{ColRegistered, ColCasual})
	if !ok {
		return nil
	}

	hours := ints(grouped.Col(ColHour))
	registered := ints(grouped.Col(sumCol(ColRegistered)))
	casual := ints(grouped.Col(sumCol(ColCasual)))

	result := make([]HourlyUsage, len(hours))
	for i := range hours {
		result[i] = HourlyUsage{Hour: hours[i], Registered: registered[i], Casual: casual[i]}
	}
	return result
}

// ByWeather 按天气分组统计
func ByWeather(v View) []CategoryUsage {
	return byCategory(v, ColWeather)
}

// BySeason 按季节分组统计
func BySeason(v View) []CategoryUsage {
	return byCategory(v, ColSeason)
}

func byCategory(v View, key string) []CategoryUsage {
	if v.Len() == 0 {
		return nil
	}

	grouped, ok := sumBy(v.df, []string{key}, []string{ColCasual, ColRegistered, ColTotal})
	if !ok {
		return nil
	}

	keys := ints(grouped.Col(key))
	casual := ints(grouped.Col(sumCol(ColCasual)))
	registered := ints(grouped.Col(sumCol(ColRegistered)))
	total := ints(grouped.Col(sumCol(ColTotal)))

	result := make([]CategoryUsage, len(keys))
	for i := range keys {
		result[i] = CategoryUsage{
			Category:   keys[i],
			Casual:     casual[i],
			Registered: registered[i],
			Total:      total[i],
		}
	}
	return result
}

// BySeasonYear 按 (年份, 季节) 统计总订单量, 先按年份再按季节排序
func BySeasonYear(v View) []SeasonYearUsage {
	if v.Len() == 0 {
		return nil
	}

	grouped, ok := sumBy(v.df, []string{ColYear, ColSeason}, []string{ColTotal})
	if !ok {
		return nil
	}

	years := ints(grouped.Col(ColYear))
	seasons := ints(grouped.Col(ColSeason))
	total := ints(grouped.Col(sumCol(ColTotal)))

	result := make([]SeasonYearUsage, len(years))
	for i := range years {
		result[i] = SeasonYearUsage{Year: years[i], Season: seasons[i], Total: total[i]}
	}
	return result
}

// Summary 汇总筛选结果的记录数与各类订单总量
func Summary(v View) ViewSummary {
	if v.Len() == 0 {
		return ViewSummary{}
	}

	s := ViewSummary{
		Rows:  v.Len(),
		First: v.times[0],
		Last:  v.times[len(v.times)-1],
	}
	s.Casual = sumInts(v.df.Col(ColCasual))
	s.Registered = sumInts(v.df.Col(ColRegistered))
	s.Total = sumInts(v.df.Col(ColTotal))
	return s
}

// sumBy 按 keys 分组对 values 求和, 结果按 keys 升序排列
// NewDataset 已保证数值列完整, 分组出错说明列名有误, 直接 panic
func sumBy(df dataframe.DataFrame, keys, values []string) (dataframe.DataFrame, bool) {
	if df.Err != nil {
		panic(fmt.Sprintf("processor: group %v by %v: %v", values, keys, df.Err))
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, false
	}

	aggs := make([]dataframe.AggregationType, len(values))
	for i := range aggs {
		aggs[i] = dataframe.Aggregation_SUM
	}
	grouped := df.GroupBy(keys...).Aggregation(aggs, values)

	order := make([]dataframe.Order, len(keys))
	for i, k := range keys {
		order[i] = dataframe.Sort(k)
	}
	grouped = grouped.Arrange(order...)
	if grouped.Err != nil {
		panic(fmt.Sprintf("processor: group %v by %v: %v", values, keys, grouped.Err))
	}
	return grouped, true
}

func sumCol(col string) string {
	return fmt.Sprintf("%s_%v", col, dataframe.Aggregation_SUM)
}

func ints(s series.Series) []int {
	vals := s.Float()
	out := make([]int, len(vals))
	for i, f := range vals {
		out[i] = int(math.Round(f))
	}
	return out
}

func sumInts(s series.Series) int {
	total := 0
	for _, n := range ints(s) {
		total += n
	}
	return total
}
