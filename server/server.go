// Package server wires the HTTP layer: routes, middleware and the engine
// adapters that bridge the store and search client into the chat pipeline.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/pkg/errors"

	"github.com/iuristatech/legalchat/plugin/chatengine"
	"github.com/iuristatech/legalchat/plugin/websearch"
	"github.com/iuristatech/legalchat/server/profile"
	apiv1 "github.com/iuristatech/legalchat/server/router/api/v1"
	"github.com/iuristatech/legalchat/store"
)

// Server is the HTTP server with all handlers mounted.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	httpServer *http.Server
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger())

	if err := store.EnsureTables(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to ensure database tables")
	}

	engine := chatengine.New(
		chatengine.Config{
			APIKey:  profile.CompletionAPIKey(),
			BaseURL: profile.CompletionBaseURL(),
			Model:   profile.CompletionModel(),
		},
		chatengine.Deps{
			Knowledge: &storeKnowledge{store: store},
			History:   &storeHistory{store: store},
			Search:    &searchAdapter{client: websearch.NewClient()},
		},
	)

	apiv1.NewAPIV1Service(profile.Secret, profile, store, engine).Register(e)

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
		httpServer: &http.Server{
			Addr:              profile.HTTPAddr(),
			Handler:           e,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	return s, nil
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("server listening", "addr", s.Profile.HTTPAddr(), "mode", s.Profile.Mode)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down http server", "err", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "err", err)
	}
	slog.Info("server stopped")
}

// requestLogger logs one line per request with method, path, status and
// latency.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			status := 0
			if resp, uerr := echo.UnwrapResponse(c.Response()); uerr == nil {
				status = resp.Status
			}
			if err != nil {
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			slog.Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"latency", time.Since(start).String(),
			)
			return err
		}
	}
}

// storeKnowledge exposes the knowledge base to the chat engine.
type storeKnowledge struct {
	store *store.Store
}

func (k *storeKnowledge) ListDocuments(ctx context.Context) ([]chatengine.KnowledgeDocument, error) {
	docs, err := k.store.ListKnowledgeDocuments(ctx, &store.FindKnowledgeDocument{})
	if err != nil {
		return nil, err
	}
	out := make([]chatengine.KnowledgeDocument, 0, len(docs))
	for _, doc := range docs {
		out = append(out, chatengine.KnowledgeDocument{
			Title:   doc.Title,
			Content: doc.Content,
		})
	}
	return out, nil
}

// storeHistory exposes stored messages to the chat engine, most recent
// first as the engine expects.
type storeHistory struct {
	store *store.Store
}

func (h *storeHistory) RecentTurns(ctx context.Context, conversationID int32, limit int) ([]chatengine.Turn, error) {
	messages, err := h.store.ListRecentMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}
	turns := make([]chatengine.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, chatengine.Turn{
			Role:    m.SenderRole,
			Content: m.Content,
		})
	}
	return turns, nil
}

// searchAdapter bridges the DuckDuckGo client to the engine's search port.
type searchAdapter struct {
	client *websearch.Client
}

func (a *searchAdapter) Search(ctx context.Context, query string, maxResults int) ([]chatengine.SearchResult, error) {
	results, err := a.client.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	out := make([]chatengine.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, chatengine.SearchResult{
			Title: r.Title,
			Body:  r.Body,
			Href:  r.Href,
		})
	}
	return out, nil
}
