// Package prompts builds the message lists sent to the completion service.
// Every builder is pure: same input, same messages.
package prompts

import (
	"fmt"

	"github.com/BerylCAtieno/legal-assistant-api/internal/completion"
)

// Params are the generation settings attached to a prompt.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// Prompt is an ordered message list plus its generation settings.
type Prompt struct {
	Messages []completion.Message
	Params   Params
}

// Request turns the prompt into a completion request for model.
func (p Prompt) Request(model string) completion.Request {
	return completion.Request{
		Model:       model,
		Messages:    p.Messages,
		Temperature: p.Params.Temperature,
		MaxTokens:   p.Params.MaxTokens,
	}
}

func build(system, user string, params Params) Prompt {
	return Prompt{
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: system},
			{Role: completion.RoleUser, Content: user},
		},
		Params: params,
	}
}

const chatSystem = `You are a knowledgeable legal assistant. Answer clearly and concisely, explain legal terms in plain language, and note when the user should consult a licensed attorney. You do not provide binding legal advice.`

func Chat(prompt string) Prompt {
	return build(chatSystem, prompt, Params{Temperature: 0.7, MaxTokens: 1000})
}

const summarizeSystem = `You are a multilingual legal document analyst. Detect the language the document is written in and summarize it in that same language. Focus on the parties, obligations, key dates, amounts and risks.

Respond using exactly this format:
Language: <name of the language in English>
Summary: <summary of the document>`

func Summarize(documentText string) Prompt {
	user := fmt.Sprintf("Summarize the following legal document:\n\n%s", documentText)
	return build(summarizeSystem, user, Params{Temperature: 0.3, MaxTokens: 1000})
}

const predictSystem = `You are an experienced litigation analyst. Given a case, predict the most likely outcome based on comparable cases and general legal principles of the jurisdiction.

Respond using exactly this format:
Outcome: <most likely outcome in one sentence>
Reasoning: <the reasoning behind the prediction, may span several paragraphs>
Confidence: <confidence as a percentage>`

func PredictOutcome(caseType, jurisdiction, summary string) Prompt {
	user := fmt.Sprintf("Case type: %s\nJurisdiction: %s\nCase summary:\n%s", caseType, jurisdiction, summary)
	return build(predictSystem, user, Params{Temperature: 0.3, MaxTokens: 800})
}

const timelineSystem = `You are a legal assistant that builds chronological case timelines. The case facts may be written in any language; write the events in English.

List every dated event in chronological order, one per line, using exactly this format:
<date> - <event>

Use ISO dates (YYYY-MM-DD) when the exact day is known. Do not add headings, numbering or commentary.`

func Timeline(caseFacts string) Prompt {
	user := fmt.Sprintf("Extract a timeline from these case facts:\n\n%s", caseFacts)
	return build(timelineSystem, user, Params{Temperature: 0.2, MaxTokens: 1000})
}

const argumentsSystem = `You are a senior trial lawyer preparing for court. Anticipate the strongest counter-arguments opposing counsel may raise and how to answer each one.

For each counter-argument respond using exactly this format:
Argument: <short title of the counter-argument>
Analysis: <why opposing counsel may raise it and how strong it is>
Strategy: <how to respond to it>

Give three to five counter-arguments.`

func Arguments(coreArgument, argumentType string) Prompt {
	user := fmt.Sprintf("Argument type: %s\nOur core argument:\n%s", argumentType, coreArgument)
	return build(argumentsSystem, user, Params{Temperature: 0.5, MaxTokens: 1500})
}
