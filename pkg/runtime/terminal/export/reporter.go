package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/tagwarden/pkg/models/api"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use text, json or yaml)", s)
	}
}

type TableConfig struct {
	NameWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  36,
		ValueWidth: 14,
	}
}

// ProfileRow is one AWS profile as listed by the profiles command
type ProfileRow struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

type Reporter struct {
	writer io.Writer
	format Format
	config TableConfig
}

func NewReporter(writer io.Writer, format Format) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	if format == "" {
		format = FormatText
	}
	return &Reporter{
		writer: writer,
		format: format,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) funcMap() template.FuncMap {
	return template.FuncMap{
		"row": func(cols ...any) string {
			var b strings.Builder
			b.WriteString("|")
			for i, col := range cols {
				width := c.config.ValueWidth
				if i == 0 {
					width = c.config.NameWidth
				}
				fmt.Fprintf(&b, " %-*v |", width, col)
			}
			return b.String()
		},
		"separator": func(columns int) string {
			var b strings.Builder
			b.WriteString("+")
			for i := 0; i < columns; i++ {
				width := c.config.ValueWidth
				if i == 0 {
					width = c.config.NameWidth
				}
				b.WriteString(strings.Repeat("-", width+2))
				b.WriteString("+")
			}
			return b.String()
		},
		"date": func(v any) string {
			switch t := v.(type) {
			case interface{ Format(string) string }:
				return t.Format("2006-01-02 15:04:05 UTC")
			default:
				return fmt.Sprint(v)
			}
		},
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
	}
}

func (c *Reporter) render(name, tmpl string, data any) error {
	switch c.format {
	case FormatJSON:
		enc := json.NewEncoder(c.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(c.writer)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	t, err := template.New(name).Funcs(c.funcMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}

const cleanupTemplate = `
Cleanup run {{.ID}} ({{.Mode}}){{if .Region}} in {{.Region}}{{end}}
Started: {{date .StartedAt}}

{{separator 5}}
{{row "Resource type" "Scanned" "Non-compliant" "Deleted" "In grace"}}
{{separator 5}}
{{range $name, $c := .Counters}}{{row $name $c.Scanned $c.NonCompliant $c.Deleted $c.InGracePeriod}}
{{end}}{{separator 5}}
{{row "Total" .Totals.Scanned .Totals.NonCompliant .Totals.Deleted .Totals.InGracePeriod}}
{{separator 5}}
{{if .Errors}}
Errors ({{len .Errors}}):
{{range .Errors}}- [{{.Kind}}] {{.ResourceType}}{{if .ResourceID}} {{.ResourceID}}{{end}}: {{.Message}}
{{end}}{{end}}`

func (c *Reporter) CleanupReport(report api.CleanupReport) error {
	return c.render("cleanup", cleanupTemplate, report)
}

const metricsTemplate = `
Metrics run {{.ID}}{{if .Region}} in {{.Region}}{{end}}
Collected: {{date .CollectedAt}}

Compliance: {{.Compliance.Compliant}}/{{.Compliance.Total}} resources ({{printf "%.1f" .Compliance.Percentage}}%)
Estimated monthly savings: {{money .EstimatedSavings}} USD

{{separator 2}}
{{row "Resource type" "Count"}}
{{separator 2}}
{{range $name, $n := .Counts}}{{row $name $n}}
{{end}}{{separator 2}}
{{range .Rollups}}
=== Cost by {{.Dimension}} ===
{{separator 2}}
{{range .Entries}}{{row .Value (money .Cost)}}
{{end}}{{separator 2}}
{{end}}{{if .UnavailableCosts}}
Unavailable cost dimensions: {{range $i, $d := .UnavailableCosts}}{{if $i}}, {{end}}{{$d}}{{end}}
{{end}}{{if .NonCompliant}}
Non-compliant resources ({{len .NonCompliant}}):
{{range .NonCompliant}}- {{.ResourceType}} {{.ResourceID}} missing {{range $i, $t := .Missing}}{{if $i}}, {{end}}{{$t}}{{end}}
{{end}}{{end}}{{if .Errors}}
Errors ({{len .Errors}}):
{{range .Errors}}- [{{.Kind}}] {{.ResourceType}}{{if .ResourceID}} {{.ResourceID}}{{end}}: {{.Message}}
{{end}}{{end}}
Published metrics: {{.PublishedPoints}}{{if .FailedPublishes}} ({{.FailedPublishes}} failed){{end}}
`

func (c *Reporter) MetricsReport(report api.MetricsReport) error {
	return c.render("metrics", metricsTemplate, report)
}

const runsTemplate = `{{if not .}}No runs recorded.
{{else}}{{separator 6}}
{{row "Run" "Kind" "Status" "Mode" "Scanned" "Errors"}}
{{separator 6}}
{{range .}}{{row .ID .Kind .Status .Mode .Totals.Scanned .ErrorCount}}
{{end}}{{separator 6}}
{{end}}`

func (c *Reporter) Runs(runs []api.RunSummary) error {
	if runs == nil {
		runs = []api.RunSummary{}
	}
	return c.render("runs", runsTemplate, runs)
}

const profilesTemplate = `{{if not .}}No AWS profiles found.
{{else}}{{separator 3}}
{{row "Profile" "Type" "Region"}}
{{separator 3}}
{{range .}}{{row .Name .Type .Region}}
{{end}}{{separator 3}}
{{end}}`

func (c *Reporter) Profiles(profiles []ProfileRow) error {
	if profiles == nil {
		profiles = []ProfileRow{}
	}
	return c.render("profiles", profilesTemplate, profiles)
}
