package mailing

import (
	"bytes"
	"fmt"
	"html/template"

	"beautyfood-backend/domain"
)

var weeklyReportTemplate = template.Must(template.New("weekly").Parse(`<html><body>
<h2>Your beauty food week {{.WeekStart}} to {{.WeekEnd}}</h2>
{{if .IsPlaceholder}}<p>No meals were analyzed this week yet. Snap a meal to get your first report.</p>
{{else}}<p>Average beauty score: <b>{{printf "%.1f" .AverageScore}}</b> ({{.Improvement}} vs last week)</p>
<p>Meals analyzed: {{.TotalAnalyses}}</p>
<p>Top category: {{.TopCategory.Label}}</p>
<ul>{{range .Insights}}<li>{{.}}</li>{{end}}</ul>
{{end}}</body></html>`))

// WeeklyReportMail renders the subject and html body for a weekly report.
func WeeklyReportMail(report domain.WeeklyReport) (string, string, error) {
	var buf bytes.Buffer
	if err := weeklyReportTemplate.Execute(&buf, report); err != nil {
		return "", "", err
	}
	subject := fmt.Sprintf("BeautyFood weekly report (%s)", report.WeekStart)
	return subject, buf.String(), nil
}
