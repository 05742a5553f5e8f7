package web

import (
	"BikeSharing/src/processor"
	"BikeSharing/src/render"
	"BikeSharing/src/report"
	"html/template"
	"time"
)

type dashboardPage struct {
	Report report.Report
	Query  template.URL
	Error  string
}

// rangeQuery 由已校验的区间生成查询串
func rangeQuery(r processor.DateRange) template.URL {
	return template.URL("start=" + r.Start.Format(processor.DateLayout) + "&end=" + r.End.Format(processor.DateLayout))
}

var pageFuncs = template.FuncMap{
	"num":  render.Number,
	"date": func(t time.Time) string { return t.Format(processor.DateLayout) },
	"info": func(a report.Annotation) bool { return a.Style == report.StyleInfo },
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Bike Sharing Dashboard</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
aside { width: 260px; padding: 24px; background: #f0f2f6; min-height: 100vh; }
main { flex: 1; padding: 24px 48px; }
.info { background: #e8f0fe; border-radius: 6px; padding: 12px 16px; margin: 8px 0 32px; }
.error { background: #fdecea; border-radius: 6px; padding: 12px 16px; }
pre { background: #fafafa; padding: 12px 16px; margin: 8px 0 32px; }
img.chart { max-width: 100%; }
</style>
</head>
<body>
<aside>
<img src="/static/logo.png" alt="logo" width="200">
{{- if not .Report.Bounds.Start.IsZero}}
<form method="get" action="/">
<label>Filter Date</label><br>
<input type="date" name="start" value="{{date .Report.Range.Start}}" min="{{date .Report.Bounds.Start}}" max="{{date .Report.Bounds.End}}">
<input type="date" name="end" value="{{date .Report.Range.End}}" min="{{date .Report.Bounds.Start}}" max="{{date .Report.Bounds.End}}">
<button type="submit">Apply</button>
</form>
{{- end}}
{{- if not .Error}}
<p><a href="/export.xlsx?{{.Query}}">Download workbook</a></p>
{{- end}}
</aside>
<main>
<h1>&#128202; Bike Sharing Order Summary</h1>
{{- if .Error}}
<div class="error">{{.Error}}</div>
{{- else}}
<p>{{num .Report.Summary.Rows}} records &middot; casual {{num .Report.Summary.Casual}} &middot; registered {{num .Report.Summary.Registered}} &middot; total {{num .Report.Summary.Total}}</p>
{{- $q := .Query}}
{{- range .Report.Panels}}
<section id="{{.ID}}">
<img class="chart" src="/charts/{{.ID}}.png?{{$q}}" alt="{{.Chart.Title}}" width="{{.Chart.Width}}" height="{{.Chart.Height}}">
{{- if info .Annotation}}
<div class="info">&#128161; {{.Annotation.Text}}</div>
{{- else}}
<pre>{{.Annotation.Text}}</pre>
{{- end}}
</section>
{{- end}}
{{- end}}
</main>
</body>
</html>
`))
