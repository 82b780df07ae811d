package notify

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/de-tools/tagwarden/pkg/models/domain"
)

const Subject = "AWS Tagging Governance - Cleanup report"

const messageTemplate = `AWS Tagging Governance - Cleanup report

Summary:
- Resources scanned: {{.Totals.Scanned}}
- Non-compliant: {{.Totals.NonCompliant}}
- In grace period: {{.Totals.InGracePeriod}}
- Deleted: {{.Totals.Deleted}}

Details:
{{range .Types}}- {{.Type}}: {{.Counters.Scanned}} scanned, {{.Counters.NonCompliant}} non-compliant, {{.Counters.InGracePeriod}} in grace period, {{.Counters.Deleted}} deleted
{{end}}
Mode: {{if .Simulated}}DRY_RUN (simulation){{else}}LIVE (resources deleted){{end}}
Run: {{.ID}}{{if .Region}} ({{.Region}}){{end}}
Date: {{.FinishedAt.UTC.Format "2006-01-02 15:04:05"}} UTC
{{if .Errors}}
Errors:
{{range .Errors}}- {{.}}
{{end}}{{end}}`

var message = template.Must(template.New("cleanup").Parse(messageTemplate))

type typeLine struct {
	Type     domain.ResourceType
	Counters domain.TypeCounters
}

type messageView struct {
	*domain.RunReport
	Simulated bool
	Totals    domain.TypeCounters
	Types     []typeLine
	Errors    []string
}

// Render formats the plain text report sent to subscribers
func Render(run *domain.RunReport) (string, error) {
	report := run.Report
	if report == nil {
		report = domain.NewScanReport()
	}

	view := messageView{
		RunReport: run,
		Simulated: run.Mode.Simulated(),
		Totals:    report.Totals(),
	}
	for _, rt := range domain.ResourceTypes {
		view.Types = append(view.Types, typeLine{Type: rt, Counters: report.For(rt)})
	}
	for _, e := range report.SortedErrors() {
		view.Errors = append(view.Errors, fmt.Sprintf("[%s] %s", e.Kind, e))
	}

	var b strings.Builder
	if err := message.Execute(&b, view); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return b.String(), nil
}
