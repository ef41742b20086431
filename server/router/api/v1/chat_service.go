package v1

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/iuristatech/legalchat/plugin/chatengine"
	"github.com/iuristatech/legalchat/store"
)

// conversationTitleLimit caps auto-generated titles, in characters.
const conversationTitleLimit = 40

type documentPayload struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

type chatRequest struct {
	Message         string           `json:"message"`
	ConversationUID string           `json:"conversationUid"`
	Document        *documentPayload `json:"document"`
}

type chatResponse struct {
	ConversationUID  string   `json:"conversationUid"`
	Title            string   `json:"title"`
	Response         string   `json:"response"`
	Status           string   `json:"status"`
	SuggestedActions []string `json:"suggestedActions"`
}

type conversationResponse struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

type messageResponse struct {
	ID        int32  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"createdTs"`
}

func (s *APIV1Service) registerChatRoutes(g *echo.Group) {
	g.POST("/chat", s.handleChat)
	g.GET("/conversations", s.listConversations)
	g.GET("/conversations/:uid/messages", s.listConversationMessages)
	g.DELETE("/conversations/:uid", s.deleteConversation)
}

// handleChat runs one chat turn: get-or-create the conversation, generate
// the reply, persist both sides of the exchange.
func (s *APIV1Service) handleChat(c *echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}

	ctx := c.Request().Context()
	user := s.authenticatedUser(c)

	conversation, err := s.getOrCreateConversation(c, &req, user)
	if err != nil {
		return err
	}

	var document *chatengine.DocumentContext
	if req.Document != nil {
		document = &chatengine.DocumentContext{
			Filename: req.Document.Filename,
			Text:     req.Document.Text,
		}
	}

	// Generate before persisting the user message so the history replayed
	// into the prompt does not already contain the current turn.
	result := s.Engine.Generate(ctx, &chatengine.Request{
		ConversationID: conversation.ID,
		Message:        req.Message,
		Document:       document,
	})
	slog.Info("chat turn completed",
		"conversation", conversation.UID,
		"status", result.Status,
		"actions", len(result.SuggestedActions),
	)

	if _, err := s.Store.CreateMessage(ctx, &store.CreateMessage{
		ConversationID: conversation.ID,
		SenderRole:     store.SenderUser,
		Content:        req.Message,
	}); err != nil {
		slog.Warn("failed to persist user message", "err", err)
	}
	if _, err := s.Store.CreateMessage(ctx, &store.CreateMessage{
		ConversationID: conversation.ID,
		SenderRole:     store.SenderAssistant,
		Content:        result.Text,
	}); err != nil {
		slog.Warn("failed to persist assistant message", "err", err)
	}

	// Flag the conversation on detected risk; otherwise just bump its
	// updated timestamp so it sorts to the top of the sidebar.
	status := conversation.Status
	if result.Status == chatengine.StatusRisk {
		status = store.ConversationRiskDetected
	}
	if updated, err := s.Store.UpdateConversation(ctx, &store.UpdateConversation{
		UID:    conversation.UID,
		Status: &status,
	}); err != nil {
		slog.Warn("failed to update conversation", "conversation", conversation.UID, "err", err)
	} else {
		conversation = updated
	}

	return c.JSON(http.StatusOK, chatResponse{
		ConversationUID:  conversation.UID,
		Title:            conversation.Title,
		Response:         result.Text,
		Status:           string(result.Status),
		SuggestedActions: result.SuggestedActions,
	})
}

func (s *APIV1Service) getOrCreateConversation(c *echo.Context, req *chatRequest, user *store.User) (*store.Conversation, error) {
	ctx := c.Request().Context()
	if req.ConversationUID == "" {
		var userID *int32
		if user != nil {
			userID = &user.ID
		}
		conversation, err := s.Store.CreateConversation(ctx, &store.Conversation{
			UID:    uuid.New().String(),
			UserID: userID,
			Title:  conversationTitle(req.Message),
		})
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return conversation, nil
	}

	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{UID: &req.ConversationUID})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if conversation == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	if conversation.UserID != nil && (user == nil || *conversation.UserID != user.ID) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	return conversation, nil
}

func (s *APIV1Service) listConversations(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	conversations, err := s.Store.ListConversations(c.Request().Context(), &store.FindConversation{
		UserID: &user.ID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]conversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		resp = append(resp, toConversationResponse(conversation))
	}
	return c.JSON(http.StatusOK, map[string]any{"conversations": resp})
}

func (s *APIV1Service) listConversationMessages(c *echo.Context) error {
	conversation, err := s.ownedConversation(c)
	if err != nil {
		return err
	}
	messages, err := s.Store.ListMessages(c.Request().Context(), &store.FindMessage{
		ConversationID: conversation.ID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, messageResponse{
			ID:        m.ID,
			Role:      m.SenderRole,
			Content:   m.Content,
			CreatedTs: m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": resp})
}

func (s *APIV1Service) deleteConversation(c *echo.Context) error {
	conversation, err := s.ownedConversation(c)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteConversation(c.Request().Context(), conversation.UID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ownedConversation loads the :uid conversation and verifies ownership.
func (s *APIV1Service) ownedConversation(c *echo.Context) (*store.Conversation, error) {
	uid := c.Param("uid")
	user, err := s.requireAuth(c)
	if err != nil {
		return nil, err
	}
	conversation, err := s.Store.GetConversation(c.Request().Context(), &store.FindConversation{UID: &uid})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if conversation == nil || conversation.UserID == nil || *conversation.UserID != user.ID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	return conversation, nil
}

func toConversationResponse(conversation *store.Conversation) conversationResponse {
	return conversationResponse{
		UID:       conversation.UID,
		Title:     conversation.Title,
		Status:    conversation.Status,
		CreatedTs: conversation.CreatedTs,
		UpdatedTs: conversation.UpdatedTs,
	}
}

func conversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= conversationTitleLimit {
		return message
	}
	return string(runes[:conversationTitleLimit]) + "..."
}
