// Package chatengine assembles the prompt for one legal-assistance chat
// turn, calls the configured chat-completion provider and post-processes
// the reply into a structured result.
//
// The engine is purely request-scoped: it holds no mutable state, performs
// no writes and never returns an error to its caller. Every failure mode
// (missing credential, provider quota, provider outage, unreachable
// collaborators) degrades to a well-formed Result.
package chatengine

import (
	"context"
	"log/slog"
)

// Status is the coarse triage classification of a reply, used by the UI
// for highlighting.
type Status string

const (
	StatusAnalyzing Status = "analyzing"
	StatusRisk      Status = "risk"
	StatusDocument  Status = "document"
)

const (
	// historyLimit is how many stored turns are replayed into the prompt.
	historyLimit = 10
	// maxSearchResults caps the web-search block.
	maxSearchResults = 3
	// documentContextLimit caps the uploaded-document block, in characters.
	documentContextLimit = 15000
	// knowledgeDocLimit caps each knowledge-base document, in characters.
	knowledgeDocLimit = 5000
)

// Turn is a read-only view of one stored conversation message.
type Turn struct {
	Role    string
	Content string
}

// DocumentContext is an uploaded document supplied by the caller for the
// current turn only. It is never persisted here.
type DocumentContext struct {
	Filename string
	Text     string
}

// KnowledgeDocument is a reference text from the curated knowledge base.
type KnowledgeDocument struct {
	Title   string
	Content string
}

// SearchResult is a single web-search hit.
type SearchResult struct {
	Title string
	Body  string
	Href  string
}

// Result is the engine's sole output.
type Result struct {
	Text             string   `json:"text"`
	Status           Status   `json:"status"`
	SuggestedActions []string `json:"suggestedActions"`
}

// KnowledgeSource lists the curated reference documents. A failing source
// degrades to an omitted knowledge block.
type KnowledgeSource interface {
	ListDocuments(ctx context.Context) ([]KnowledgeDocument, error)
}

// HistorySource returns the most recent turns of a conversation,
// most-recent-first as fetched. The engine reverses them to chronological
// order itself.
type HistorySource interface {
	RecentTurns(ctx context.Context, conversationID int32, limit int) ([]Turn, error)
}

// SearchSource performs a web search. A failing source degrades to an
// omitted search block.
type SearchSource interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Config selects the chat-completion provider. Built once at process start
// from the profile and passed in; the engine holds no global client state.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Deps are the engine's collaborators. Any of them may be nil, which is
// treated the same as the collaborator being unavailable.
type Deps struct {
	Knowledge KnowledgeSource
	History   HistorySource
	Search    SearchSource
}

// Request is one chat turn.
type Request struct {
	// ConversationID selects stored history; zero means no history.
	ConversationID int32
	// Message is the raw user message for this turn.
	Message string
	// Document optionally grounds this turn in an uploaded document.
	Document *DocumentContext
}

// Engine runs the per-turn pipeline. Safe for concurrent use across
// requests; turns within the same conversation are not serialized here.
type Engine struct {
	config     Config
	deps       Deps
	classifier Classifier
	complete   completeFunc
}

// New creates an engine for the given provider config and collaborators.
func New(config Config, deps Deps) *Engine {
	return &Engine{
		config:     config,
		deps:       deps,
		classifier: KeywordClassifier{},
		complete:   completeChat,
	}
}

// SetClassifier replaces the default keyword classifier.
func (e *Engine) SetClassifier(c Classifier) {
	e.classifier = c
}

// Generate runs one full chat turn: compose, complete, post-process.
// It never returns an error; failures surface as degraded Results.
func (e *Engine) Generate(ctx context.Context, req *Request) *Result {
	if e.config.APIKey == "" {
		return configurationErrorResult()
	}

	envelope := e.compose(ctx, req)

	raw, err := e.complete(ctx, e.config, envelope)
	if err != nil {
		slog.Warn("chat completion failed", "err", err)
		if isQuotaError(err) {
			return quotaFallbackResult()
		}
		return transientFallbackResult()
	}

	return e.process(raw)
}

// recentTurnsChronological fetches the conversation tail and reverses it
// to oldest-first. Unavailable history degrades to an empty slice.
func (e *Engine) recentTurnsChronological(ctx context.Context, conversationID int32) []Turn {
	if e.deps.History == nil || conversationID == 0 {
		return nil
	}
	turns, err := e.deps.History.RecentTurns(ctx, conversationID, historyLimit)
	if err != nil {
		slog.Warn("failed to load conversation history", "conversation", conversationID, "err", err)
		return nil
	}
	// Fetched most-recent-first; the model needs chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}
