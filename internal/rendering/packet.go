package rendering

import (
	"bytes"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// Packet is everything a reviewer needs for one decline decision.
type Packet struct {
	Summary         types.ProposalSummary
	Reason          types.DeclineReason
	SpecificReasons string
	Output          types.GeneratedOutput
	GeneratedAt     time.Time
}

// fact is one row of the summary table.
type fact struct {
	Label string
	Value string
}

type packetData struct {
	Title           string
	Facts           []fact
	ReasonLabel     string
	ReasonCode      string
	SpecificReasons string
	Memo            string
	Letter          string
	GeneratedAt     string
}

const packetMarkdown = `# Decline decision: {{.Title}}

## Proposal summary

{{if .Facts}}| Field | Value |
| --- | --- |
{{range .Facts}}| {{.Label}} | {{.Value}} |
{{end}}{{else}}_No details were extracted from the proposal._
{{end}}
## Decline reason

**{{.ReasonLabel}}** ({{.ReasonCode}})
{{if .SpecificReasons}}
{{.SpecificReasons}}
{{end}}
## Internal memo

{{.Memo}}

## External letter

{{.Letter}}

---

Generated {{.GeneratedAt}}
`

const packetHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Decline decision: {{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 46rem; margin: 2rem auto; line-height: 1.5; color: #222; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; vertical-align: top; }
h2 { border-bottom: 1px solid #ddd; padding-bottom: 0.2rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var (
	markdownTemplate = texttemplate.Must(texttemplate.New("packet.md").Parse(packetMarkdown))
	htmlTemplate     = template.Must(template.New("packet.html").Parse(packetHTML))

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
)

// RenderMarkdown renders the packet as Markdown. User-supplied text is escaped.
func RenderMarkdown(p Packet) (string, error) {
	var out strings.Builder
	if err := markdownTemplate.Execute(&out, buildPacketData(p)); err != nil {
		return "", &RenderError{Stage: StageMarkdown, Organization: packetTitle(p), Cause: err}
	}
	return out.String(), nil
}

// RenderHTML renders the packet as a standalone HTML page.
func RenderHTML(p Packet) (string, error) {
	md, err := RenderMarkdown(p)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return "", &RenderError{Stage: StageConvert, Organization: packetTitle(p), Cause: err}
	}

	var page strings.Builder
	err = htmlTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: packetTitle(p),
		// goldmark omits raw HTML by default, and all user text was escaped.
		Body: template.HTML(body.String()), //nolint:gosec
	})
	if err != nil {
		return "", &RenderError{Stage: StagePage, Organization: packetTitle(p), Cause: err}
	}
	return page.String(), nil
}

// packetTitle names the packet after the applicant.
func packetTitle(p Packet) string {
	return types.ValueOr(p.Summary.OrganizationName, "Applicant")
}

func buildPacketData(p Packet) packetData {
	s := p.Summary
	generatedAt := p.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	data := packetData{
		Title:           EscapeMarkdown(types.ValueOr(s.OrganizationName, "Applicant")),
		ReasonLabel:     EscapeMarkdown(p.Reason.Label()),
		ReasonCode:      EscapeMarkdown(string(p.Reason)),
		SpecificReasons: EscapeMarkdown(strings.TrimSpace(p.SpecificReasons)),
		Memo:            EscapeMarkdown(strings.TrimSpace(p.Output.InternalRationale)),
		Letter:          EscapeMarkdown(strings.TrimSpace(p.Output.ExternalReply)),
		GeneratedAt:     generatedAt.UTC().Format("2006-01-02 15:04 MST"),
	}

	add := func(label string, v *string) {
		if v != nil {
			data.Facts = append(data.Facts, fact{Label: label, Value: escapeCell(*v)})
		}
	}
	add("Organization", s.OrganizationName)
	add("Mission", s.OrganizationMission)
	add("Founded", s.FoundingYear)
	add("Amount requested", s.GrantAmount)
	add("Project", s.ProjectDescription)
	add("Population served", s.TargetPopulation)
	add("Geographic scope", s.GeographicScope)
	add("Operating budget", s.CurrentBudget)
	add("Project budget", s.ProjectBudget)
	add("People served", s.PeopleServed)
	add("Timeline", s.Timeline)
	if len(s.KeyDeliverables) > 0 {
		v := strings.Join(s.KeyDeliverables, "; ")
		add("Deliverables", &v)
	}
	if len(s.KeyPartners) > 0 {
		v := strings.Join(s.KeyPartners, "; ")
		add("Partners", &v)
	}
	add("Evaluation", s.EvaluationMethods)
	return data
}
