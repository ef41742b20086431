package chatengine

import (
	"regexp"
	"strings"
)

// actionPattern matches suggested-action markers emitted by the model.
// Both the Spanish form the prompt requests and the English form some
// models fall back to are accepted.
var actionPattern = regexp.MustCompile(`\[(?:ACCION|ACTION):\s*([^\]]+)\]`)

// Classifier assigns a triage status to a raw model reply. Pluggable so
// the keyword heuristic can later be replaced by a structured
// model-emitted field without reshaping the pipeline.
type Classifier interface {
	Classify(text string) Status
}

// KeywordClassifier is the default substring heuristic. Risk wins over
// document; anything else is analyzing.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(text string) Status {
	lower := strings.ToLower(text)
	if strings.Contains(text, "⚠️") || strings.Contains(lower, "riesgo") {
		return StatusRisk
	}
	if strings.Contains(lower, "contrato") || strings.Contains(lower, "documento") {
		return StatusDocument
	}
	return StatusAnalyzing
}

// process turns a raw model reply into the structured result: suggested
// actions extracted in order of appearance (duplicates preserved), markers
// stripped from the visible text, status classified from the full raw
// reply so action labels still count as signal.
func (e *Engine) process(raw string) *Result {
	actions := []string{}
	for _, match := range actionPattern.FindAllStringSubmatch(raw, -1) {
		actions = append(actions, strings.TrimSpace(match[1]))
	}
	text := strings.TrimSpace(actionPattern.ReplaceAllString(raw, ""))
	return &Result{
		Text:             text,
		Status:           e.classifier.Classify(raw),
		SuggestedActions: actions,
	}
}
