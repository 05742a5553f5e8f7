package processor

import (
	"BikeSharing/src/utils"
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// DateLayout 日期参数的格式
const DateLayout = "2006-01-02"

// DateRange 闭区间的日期范围, Start 与 End 都截断到零点
type DateRange struct {
	Start time.Time
	End   time.Time
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: utils.Day(start), End: utils.Day(end)}
}

// ParseDateRange 解析 YYYY-MM-DD 格式的起止日期
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start date %q: %v", ErrInvalidDateRange, start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end date %q: %v", ErrInvalidDateRange, end, err)
	}
	return NewDateRange(s, e), nil
}

// Contains 判断时间戳是否落在区间内, 结束日当天全部包含
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End.AddDate(0, 0, 1))
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " ~ " + r.End.Format(DateLayout)
}

// Validate 检查区间顺序, 并要求区间位于 bounds 之内
func (r DateRange) Validate(bounds DateRange) error {
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidDateRange,
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	if r.Start.Before(bounds.Start) || r.End.After(bounds.End) {
		return fmt.Errorf("%w: %s is outside the data range %s", ErrInvalidDateRange, r, bounds)
	}
	return nil
}

// View 按日期筛选后的数据, 不修改 Dataset
type View struct {
	df    dataframe.DataFrame
	times []time.Time
}

// Len 返回筛选后的记录数
func (v View) Len() int {
	return len(v.times)
}

// Times 返回筛选后记录的时间戳(升序)
func (v View) Times() []time.Time {
	return v.times
}

// Filter 返回 r 范围内的记录; 区间非法时返回 ErrInvalidDateRange, 不做任何计算
func (d *Dataset) Filter(r DateRange) (View, error) {
	if err := r.Validate(d.FullRange()); err != nil {
		return View{}, err
	}

	var (
		idx   []int
		times []time.Time
	)
	for i, t := range d.times {
		if r.Contains(t) {
			idx = append(idx, i)
			times = append(times, t)
		}
	}
	if len(idx) == 0 {
		return View{}, nil
	}

	return View{df: d.df.Subset(idx), times: times}, nil
}
