package processor

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CorrelationFields 参与相关性分析的字段, 顺序即矩阵的行列顺序
var CorrelationFields = []string{ColTemp, ColHumidity, ColWindspeed, ColCasual, ColRegistered, ColTotal}

// Correlation Spearman 相关系数矩阵, 无法计算的位置为 NaN
type Correlation struct {
	Fields []string
	Values [][]float64
}

// At 返回字段 a 与 b 的系数
func (c Correlation) At(a, b string) float64 {
	i, j := c.index(a), c.index(b)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return c.Values[i][j]
}

func (c Correlation) index(field string) int {
	for i, f := range c.Fields {
		if f == field {
			return i
		}
	}
	return -1
}

// MarshalJSON NaN 输出为 null
func (c Correlation) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(c.Values))
	for i, row := range c.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				values[i][j] = &row[j]
			}
		}
	}
	fields := c.Fields
	if fields == nil {
		fields = []string{}
	}
	return json.Marshal(struct {
		Fields []string     `json:"fields"`
		Values [][]*float64 `json:"values"`
	}{fields, values})
}

// CorrelationMatrix 计算 CorrelationFields 两两之间的 Spearman 相关系数, 保留两位小数
func CorrelationMatrix(v View) Correlation {
	if v.Len() == 0 {
		return Correlation{}
	}

	n := len(CorrelationFields)
	ranks := make([][]float64, n)
	for i, f := range CorrelationFields {
		ranks[i] = rank(v.df.Col(f).Float())
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		values[i][i] = 1
		if !defined(ranks[i]) {
			values[i][i] = math.NaN()
		}
		for j := i + 1; j < n; j++ {
			r := math.NaN()
			if defined(ranks[i]) && defined(ranks[j]) {
				r = round2(stat.Correlation(ranks[i], ranks[j], nil))
			}
			values[i][j] = r
			values[j][i] = r
		}
	}

	fields := make([]string, n)
	copy(fields, CorrelationFields)
	return Correlation{Fields: fields, Values: values}
}

// rank 返回平均秩(从 1 开始), 相同值取平均
func rank(x []float64) []float64 {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	idx := make([]int, len(x))
	floats.Argsort(sorted, idx)

	ranks := make([]float64, len(x))
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[i] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// defined 至少两个值且不全相同
func defined(ranks []float64) bool {
	if len(ranks) < 2 {
		return false
	}
	for _, r := range ranks[1:] {
		if r != ranks[0] {
			return true
		}
	}
	return false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
