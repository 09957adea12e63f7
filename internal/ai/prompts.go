package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/job_summary.md
var jobSummaryPromptRaw string

// JobSummaryTemplate is the parsed prompt template for posting summaries.
// Parsed once at package init; reused on every Summarize call.
var JobSummaryTemplate = template.Must(template.New("job_summary").Parse(jobSummaryPromptRaw))
