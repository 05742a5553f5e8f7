package render

import (
	"BikeSharing/src/processor"
	"BikeSharing/src/report"
	"io"
	"math"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Number 按千分位格式化整数
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

var funcs = template.FuncMap{
	"num":  Number,
	"date": func(r processor.DateRange) string { return r.String() },
	"cell": func(v float64) string {
		if math.IsNaN(v) {
			return "-"
		}
		return printer.Sprintf("%.2f", v)
	},
}

var summaryTmpl = template.Must(template.New("summary").Funcs(funcs).Parse(`Bike Sharing Order Summary
Date range: {{date .Range}} (data {{date .Bounds}})
Rows: {{num .Summary.Rows}}  casual: {{num .Summary.Casual}}  registered: {{num .Summary.Registered}}  total_rent: {{num .Summary.Total}}
{{range .Panels}}
== {{.Chart.Title}} ==
{{- if eq (len .Table.Rows) 0}}
(no rows)
{{- else}}
label{{range .Table.Columns}}	{{.}}{{end}}
{{- $labels := .Table.Labels}}
{{- range $i, $row := .Table.Rows}}
{{index $labels $i}}{{range $row}}	{{cell .}}{{end}}
{{- end}}
{{- end}}
{{end}}`))

// Summary 以纯文本输出报表
func Summary(w io.Writer, rep report.Report) error {
	return summaryTmpl.Execute(w, rep)
}
