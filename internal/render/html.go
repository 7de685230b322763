package render

import (
	"html/template"
	"io"
	"time"

	"github.com/starford/brewstock/internal/report"
)

// Page is the data behind the HTML dashboard.
type Page struct {
	Configured bool
	Error      string
	FetchedAt  time.Time
	Tables     []report.Table
}

var funcs = template.FuncMap{
	"qty": report.FormatQuantity,
	"span": func(g report.ColumnGroup) int {
		return len(g.Columns)
	},
	"levelClass": func(l report.Level) string {
		switch l {
		case report.LevelOverdrawn:
			return "overdrawn"
		case report.LevelDepleted:
			return "depleted"
		}
		return ""
	},
}

var pageTmpl = template.Must(template.New("page").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Brewfather Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2.5rem; }
table { border-collapse: collapse; margin-bottom: 2.5rem; }
th, td { border: 1px solid #ddd; padding: .25rem .5rem; text-align: center; font-family: monospace; }
th.batch, td.batch { text-align: left; font-family: sans-serif; font-weight: bold; position: sticky; left: 0; background: #fff; }
.overdrawn { color: #dc2626; }
.depleted { color: #16a34a; }
tr.summary td { font-weight: bold; }
</style>
</head>
<body>
<h1>Brewfather Dashboard</h1>
{{- if not .Configured}}
<p>Please set your Brewfather User ID and API Key to view the dashboard.</p>
{{- else}}
{{- if .Error}}<p class="overdrawn">Last refresh failed: {{.Error}}</p>{{end}}
{{- if not .FetchedAt.IsZero}}<p>Updated {{.FetchedAt.Format "2006-01-02 15:04:05"}}</p>{{end}}
{{- range .Tables}}
<h2>{{.Title}}</h2>
{{- if .Empty}}
<p>No {{.Title}} in inventory or planned batches.</p>
{{- else}}
<table>
<thead>
<tr><th class="batch" rowspan="2">Batch</th>{{range .Groups}}<th colspan="{{span .}}">{{.Category}}</th>{{end}}</tr>
<tr>{{range .Columns}}<th>{{.Label}}</th>{{end}}</tr>
</thead>
<tbody>
<tr class="summary"><td class="batch">Current Inventory</td>{{range .Columns}}<td>{{qty .Inventory}}</td>{{end}}</tr>
{{- range .Rows}}
<tr><td class="batch">{{.Label}}</td>{{range .Cells}}<td>{{qty .}}</td>{{end}}</tr>
{{- end}}
<tr class="summary"><td class="batch">Remaining Inventory</td>{{range .Columns}}<td class="{{levelClass .Level}}">{{qty .Remaining}}</td>{{end}}</tr>
</tbody>
</table>
{{- end}}
{{- end}}
{{- end}}
</body>
</html>
`))

// WriteHTML renders the dashboard page.
func WriteHTML(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}
