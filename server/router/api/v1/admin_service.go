package v1

import (
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v5"
	"github.com/lithammer/shortuuid/v4"

	"github.com/iuristatech/legalchat/plugin/docextract"
	"github.com/iuristatech/legalchat/store"
)

const knowledgePreviewLimit = 100

type dashboardStatsResponse struct {
	TotalUsers         int32 `json:"totalUsers"`
	TotalConversations int32 `json:"totalConversations"`
	ActiveUsers24h     int32 `json:"activeUsers24h"`
	RiskCases          int32 `json:"riskCases"`
}

type adminUserResponse struct {
	ID                int32  `json:"id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	IsApproved        bool   `json:"isApproved"`
	CreatedTs         int64  `json:"createdTs"`
	ConversationCount int32  `json:"conversationCount"`
}

type adminConversationResponse struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	UserEmail string `json:"userEmail"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

type knowledgeDocumentResponse struct {
	UID            string `json:"uid"`
	Title          string `json:"title"`
	FileType       string `json:"fileType"`
	ContentPreview string `json:"contentPreview"`
	CreatedTs      int64  `json:"createdTs"`
}

type approvalRequest struct {
	IsApproved bool `json:"isApproved"`
}

func (s *APIV1Service) registerAdminRoutes(g *echo.Group) {
	g.GET("/admin/stats", s.adminStats)
	g.GET("/admin/users", s.adminListUsers)
	g.PATCH("/admin/users/:id/approval", s.adminSetUserApproval)
	g.GET("/admin/conversations", s.adminListConversations)
	g.POST("/admin/knowledge", s.adminUploadKnowledge)
	g.GET("/admin/knowledge", s.adminListKnowledge)
	g.DELETE("/admin/knowledge/:uid", s.adminDeleteKnowledge)
}

func (s *APIV1Service) adminStats(c *echo.Context) error {
	if _, err := s.requireAdmin(c); err != nil {
		return err
	}
	activeSince := time.Now().Add(-24 * time.Hour).Unix()
	stats, err := s.Store.GetDashboardStats(c.Request().Context(), activeSince)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dashboardStatsResponse{
		TotalUsers:         stats.TotalUsers,
		TotalConversations: stats.TotalConversations,
		ActiveUsers24h:     stats.ActiveUsers24h,
		RiskCases:          stats.RiskCases,
	})
}

func (s *APIV1Service) adminListUsers(c *echo.Context) error {
	if _, err := s.requireAdmin(c); err != nil {
		return err
	}
	ctx := c.Request().Context()
	users, err := s.Store.ListUsers(ctx, &store.FindUser{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]adminUserResponse, 0, len(users))
	for _, user := range users {
		count, err := s.Store.CountConversationsByUser(ctx, user.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp = append(resp, adminUserResponse{
			ID:                user.ID,
			Email:             user.Email,
			Name:              user.FullName,
			Role:              user.Role,
			IsApproved:        user.IsApproved,
			CreatedTs:         user.CreatedTs,
			ConversationCount: count,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"users": resp})
}

func (s *APIV1Service) adminSetUserApproval(c *echo.Context) error {
	if _, err := s.requireAdmin(c); err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var req approvalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}

	ctx := c.Request().Context()
	userID := int32(id)
	existing, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if existing == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	user, err := s.Store.UpdateUser(ctx, &store.UpdateUser{
		ID:         userID,
		IsApproved: &req.IsApproved,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *APIV1Service) adminListConversations(c *echo.Context) error {
	if _, err := s.requireAdmin(c); err != nil {
		return err
	}
	ctx := c.Request().Context()
	limit := 50
	conversations, err := s.Store.ListConversations(ctx, &store.FindConversation{Limit: &limit})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]adminConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		email := "Anonymous"
		if conversation.UserID != nil {
			user, err := s.Store.GetUser(ctx, &store.FindUser{ID: conversation.UserID})
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			if user != nil {
				email = user.Email
			}
		}
		resp = append(resp, adminConversationResponse{
			UID:       conversation.UID,
			Title:     conversation.Title,
			Status:    conversation.Status,
			UserEmail: email,
			CreatedTs: conversation.CreatedTs,
			UpdatedTs: conversation.UpdatedTs,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"conversations": resp})
}

func (s *APIV1Service) adminUploadKnowledge(c *echo.Context) error {
	if _, err := s.requireAdmin(c); err != nil {
		return err
	}
	file, header, err := c.Request().FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file required")
	}
	defer file.Close()

	fileType := docextract.FileType(header.Filename)
	if fileType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported file type")
	}
	text, err := s.Extractor.Extract(c.Request().Context(), header.Filename, file, header.Size)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	doc, err := s.Store.CreateKnowledgeDocument(c.Request().Context(), &store.KnowledgeDocument{
		UID:      shortuuid.New(),
		Title:    header.Filename,
		Content:  text,
		FileType: fileType,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toKnowledgeResponse(doc))
}

func (s *APIV1Service) adminListKnowledge(c *echo.Context) error {
	if _, err := s.requireAdmin(c); err != nil {
		return err
	}
	docs, err := s.Store.ListKnowledgeDocuments(c.Request().Context(), &store.FindKnowledgeDocument{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]knowledgeDocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toKnowledgeResponse(doc))
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": resp})
}

func (s *APIV1Service) adminDeleteKnowledge(c *echo.Context) error {
	if _, err := s.requireAdmin(c); err != nil {
		return err
	}
	uid := c.Param("uid")
	doc, err := s.Store.GetKnowledgeDocument(c.Request().Context(), &store.FindKnowledgeDocument{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if doc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err := s.Store.DeleteKnowledgeDocument(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func toKnowledgeResponse(doc *store.KnowledgeDocument) knowledgeDocumentResponse {
	return knowledgeDocumentResponse{
		UID:            doc.UID,
		Title:          doc.Title,
		FileType:       doc.FileType,
		ContentPreview: contentPreview(doc.Content),
		CreatedTs:      doc.CreatedTs,
	}
}

func contentPreview(content string) string {
	if utf8.RuneCountInString(content) <= knowledgePreviewLimit {
		return content
	}
	runes := []rune(content)
	return string(runes[:knowledgePreviewLimit]) + "..."
}
