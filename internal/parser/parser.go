package parser

import (
	"regexp"
	"strings"

	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
)

// Fallback values used when a label is absent from the reply.
const (
	NoOutcome    = "No clear outcome."
	NoReasoning  = "No reasoning found."
	NoConfidence = "Unknown"

	UnknownLanguage = "Unknown"
	NoSummary       = "No summary generated."

	NoDate = "—"

	UntitledArgument = "Untitled Argument"
	NoAnalysis       = "No analysis provided."
	NoStrategy       = "No strategy provided."
)

var (
	outcomeFields  = newFieldSet("outcome", "reasoning", "confidence")
	summaryFields  = newFieldSet("language", "summary")
	argumentFields = newFieldSet("analysis", "strategy", "response")

	argumentSplit = regexp.MustCompile(`(?i)\b(?:counter[-\s]?)?argument\b(?:\s*#?\d+)?` + separator)

	listBullet  = regexp.MustCompile(`^(?:[-*•]+\s+|\d+[.)]\s+)`)
	timelineSep = regexp.MustCompile(`^(.*?\S)(?:\s+[-–—]+\s+|\s*:\s+|\s*—\s*)(\S.*)$`)
)

// FallbackOutcome is the record returned when nothing could be extracted.
func FallbackOutcome() models.Outcome {
	return models.Outcome{Outcome: NoOutcome, Reasoning: NoReasoning, Confidence: NoConfidence}
}

// ParseOutcome extracts Outcome, Reasoning and Confidence. Reasoning may span
// paragraphs; it stops at the next label. The second result lists the labels
// that were not found.
func ParseOutcome(text string) (models.Outcome, []string) {
	fields := outcomeFields.extract(text)
	var missing []string

	out := FallbackOutcome()
	var ok bool
	if out.Outcome, ok = valueOr(fields, "outcome", NoOutcome); !ok {
		missing = append(missing, "Outcome")
	}
	if out.Reasoning, ok = valueOr(fields, "reasoning", NoReasoning); !ok {
		missing = append(missing, "Reasoning")
	}
	if out.Confidence, ok = valueOr(fields, "confidence", NoConfidence); !ok {
		missing = append(missing, "Confidence")
	}
	return out, missing
}

// ParseSummary extracts Language and Summary. Language is a single line. When
// the Summary label is missing the rest of the reply is used as the summary.
func ParseSummary(text string) (models.Summary, []string) {
	fields := summaryFields.extract(text)
	var missing []string

	out := models.Summary{Language: UnknownLanguage}
	lang, hasLang := fields["language"]
	if hasLang {
		line, _, _ := strings.Cut(lang.value, "\n")
		if line = cleanValue(line); line != "" {
			out.Language = line
		}
	}
	if out.Language == UnknownLanguage {
		missing = append(missing, "Language")
	}

	if s, ok := valueOr(fields, "summary", ""); ok {
		out.Summary = s
		return out, missing
	}
	missing = append(missing, "Summary")

	rest := text
	if hasLang {
		// Drop the language line and keep whatever follows it.
		after := text[lang.start:]
		if i := strings.IndexByte(after, '\n'); i >= 0 {
			rest = text[:lang.start] + after[i+1:]
		} else {
			rest = text[:lang.start]
		}
	}
	if out.Summary = cleanValue(rest); out.Summary == "" {
		out.Summary = NoSummary
	}
	return out, missing
}

// ParseTimeline reads one entry per non-blank line: the text before the first
// separator is the date, the rest the event. Lines without a separator keep
// the whole line as the event under the NoDate placeholder.
func ParseTimeline(text string) ([]models.TimelineEntry, []string) {
	var (
		entries  []models.TimelineEntry
		unparsed []string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = listBullet.ReplaceAllString(line, "")

		m := timelineSep.FindStringSubmatch(line)
		if m == nil {
			entries = append(entries, models.TimelineEntry{Date: NoDate, Event: line})
			unparsed = append(unparsed, line)
			continue
		}
		date, event := cleanValue(m[1]), cleanValue(m[2])
		if date == "" || event == "" {
			entries = append(entries, models.TimelineEntry{Date: NoDate, Event: line})
			unparsed = append(unparsed, line)
			continue
		}
		entries = append(entries, models.TimelineEntry{Date: date, Event: event})
	}

	if len(entries) == 0 {
		return []models.TimelineEntry{{Date: NoDate, Event: strings.TrimSpace(text)}}, []string{"timeline"}
	}
	return entries, unparsed
}

// ParseArguments splits the reply on "Argument:" labels. Text before the
// first label is discarded. The rest of the label line is the title; below it
// Analysis runs to the Strategy (or Response) label, Strategy to the end of
// the segment.
func ParseArguments(text string) ([]models.ArgumentBlock, []string) {
	segments := argumentSplit.Split(text, -1)
	var missing []string

	if len(segments) < 2 {
		analysis := cleanValue(text)
		if analysis == "" {
			analysis = NoAnalysis
		}
		return []models.ArgumentBlock{newArgumentBlock(UntitledArgument, analysis, NoStrategy)}, []string{"Argument"}
	}

	blocks := make([]models.ArgumentBlock, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		// The title is the rest of the label line; labels are only read below it.
		title, body, _ := strings.Cut(strings.TrimLeft(seg, " \t"), "\n")
		fields := argumentFields.extract(body)

		if title = cleanValue(title); title == "" {
			title = UntitledArgument
			missing = append(missing, "Argument title")
		}

		analysis, ok := valueOr(fields, "analysis", NoAnalysis)
		if !ok {
			missing = append(missing, "Analysis")
		}
		strategy, ok := valueOr(fields, "strategy", "")
		if !ok {
			if strategy, ok = valueOr(fields, "response", NoStrategy); !ok {
				missing = append(missing, "Strategy")
			}
		}
		blocks = append(blocks, newArgumentBlock(title, analysis, strategy))
	}
	return blocks, missing
}

func newArgumentBlock(title, analysis, strategy string) models.ArgumentBlock {
	return models.ArgumentBlock{Argument: title, Analysis: analysis, Strategy: strategy, Response: strategy}
}
