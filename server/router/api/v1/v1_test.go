package v1

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/require"

	"github.com/iuristatech/legalchat/plugin/chatengine"
	"github.com/iuristatech/legalchat/server/auth"
	"github.com/iuristatech/legalchat/server/profile"
	"github.com/iuristatech/legalchat/store"
)

// memDriver is an in-memory store.Driver for handler tests.
type memDriver struct {
	nextID        int32
	users         map[int32]*store.User
	conversations map[int32]*store.Conversation
	messages      []*store.Message
	knowledge     map[string]*store.KnowledgeDocument
}

func newMemDriver() *memDriver {
	return &memDriver{
		users:         map[int32]*store.User{},
		conversations: map[int32]*store.Conversation{},
		knowledge:     map[string]*store.KnowledgeDocument{},
	}
}

func (d *memDriver) id() int32 {
	d.nextID++
	return d.nextID
}

func (d *memDriver) GetDB() *sql.DB                       { return nil }
func (d *memDriver) Close() error                         { return nil }
func (d *memDriver) EnsureTables(_ context.Context) error { return nil }

func (d *memDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	create.ID = d.id()
	create.CreatedTs = time.Now().Unix()
	d.users[create.ID] = create
	return create, nil
}

func (d *memDriver) ListUsers(_ context.Context, find *store.FindUser) ([]*store.User, error) {
	var list []*store.User
	for _, u := range d.users {
		if find.ID != nil && u.ID != *find.ID {
			continue
		}
		if find.Email != nil && u.Email != *find.Email {
			continue
		}
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (d *memDriver) GetUser(ctx context.Context, find *store.FindUser) (*store.User, error) {
	list, err := d.ListUsers(ctx, find)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (d *memDriver) UpdateUser(_ context.Context, update *store.UpdateUser) (*store.User, error) {
	u := d.users[update.ID]
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.IsApproved != nil {
		u.IsApproved = *update.IsApproved
	}
	return u, nil
}

func (d *memDriver) CreateConversation(_ context.Context, create *store.Conversation) (*store.Conversation, error) {
	create.ID = d.id()
	if create.Status == "" {
		create.Status = store.ConversationActive
	}
	now := time.Now().Unix()
	create.CreatedTs, create.UpdatedTs = now, now
	d.conversations[create.ID] = create
	return create, nil
}

func (d *memDriver) ListConversations(_ context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	var list []*store.Conversation
	for _, c := range d.conversations {
		if find.ID != nil && c.ID != *find.ID {
			continue
		}
		if find.UID != nil && c.UID != *find.UID {
			continue
		}
		if find.UserID != nil && (c.UserID == nil || *c.UserID != *find.UserID) {
			continue
		}
		if find.Status != nil && c.Status != *find.Status {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *memDriver) GetConversation(ctx context.Context, find *store.FindConversation) (*store.Conversation, error) {
	list, err := d.ListConversations(ctx, find)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (d *memDriver) UpdateConversation(_ context.Context, update *store.UpdateConversation) (*store.Conversation, error) {
	for _, c := range d.conversations {
		if c.UID == update.UID {
			if update.Title != nil {
				c.Title = *update.Title
			}
			if update.Status != nil {
				c.Status = *update.Status
			}
			c.UpdatedTs = time.Now().Unix()
			return c, nil
		}
	}
	return nil, nil
}

func (d *memDriver) DeleteConversation(_ context.Context, uid string) error {
	for id, c := range d.conversations {
		if c.UID == uid {
			delete(d.conversations, id)
			var kept []*store.Message
			for _, m := range d.messages {
				if m.ConversationID != id {
					kept = append(kept, m)
				}
			}
			d.messages = kept
		}
	}
	return nil
}

func (d *memDriver) CreateMessage(_ context.Context, create *store.CreateMessage) (*store.Message, error) {
	m := &store.Message{
		ID:             d.id(),
		ConversationID: create.ConversationID,
		SenderRole:     create.SenderRole,
		Content:        create.Content,
		CreatedTs:      time.Now().Unix(),
	}
	d.messages = append(d.messages, m)
	return m, nil
}

func (d *memDriver) ListMessages(_ context.Context, find *store.FindMessage) ([]*store.Message, error) {
	var list []*store.Message
	for _, m := range d.messages {
		if m.ConversationID == find.ConversationID {
			list = append(list, m)
		}
	}
	if find.Descending {
		sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *memDriver) CreateKnowledgeDocument(_ context.Context, create *store.KnowledgeDocument) (*store.KnowledgeDocument, error) {
	create.ID = d.id()
	create.CreatedTs = time.Now().Unix()
	d.knowledge[create.UID] = create
	return create, nil
}

func (d *memDriver) ListKnowledgeDocuments(_ context.Context, find *store.FindKnowledgeDocument) ([]*store.KnowledgeDocument, error) {
	var list []*store.KnowledgeDocument
	for _, doc := range d.knowledge {
		if find.UID != nil && doc.UID != *find.UID {
			continue
		}
		if find.ID != nil && doc.ID != *find.ID {
			continue
		}
		list = append(list, doc)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (d *memDriver) DeleteKnowledgeDocument(_ context.Context, uid string) error {
	delete(d.knowledge, uid)
	return nil
}

func (d *memDriver) GetDashboardStats(_ context.Context, _ int64) (*store.DashboardStats, error) {
	stats := &store.DashboardStats{
		TotalUsers:         int32(len(d.users)),
		TotalConversations: int32(len(d.conversations)),
	}
	for _, c := range d.conversations {
		if c.Status == store.ConversationRiskDetected {
			stats.RiskCases++
		}
	}
	return stats, nil
}

func (d *memDriver) CountConversationsByUser(_ context.Context, userID int32) (int32, error) {
	var count int32
	for _, c := range d.conversations {
		if c.UserID != nil && *c.UserID == userID {
			count++
		}
	}
	return count, nil
}

const testSecret = "test-secret"

func newTestService(t *testing.T) (*echo.Echo, *APIV1Service, *memDriver) {
	t.Helper()
	driver := newMemDriver()
	p := &profile.Profile{Mode: "dev", Driver: "sqlite", Secret: testSecret}
	s := store.New(driver, p)
	// An engine without a credential never reaches the network.
	engine := chatengine.New(chatengine.Config{}, chatengine.Deps{})
	svc := NewAPIV1Service(testSecret, p, s, engine)

	e := echo.New()
	svc.Register(e)
	return e, svc, driver
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signupUser(t *testing.T, e *echo.Echo, email string) (token string, user userResponse) {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/v1/auth/signup", "", signupRequest{
		Email:    email,
		Password: "secreto1",
		FullName: "Test User",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token, resp.User
}

func TestSignupAndLogin(t *testing.T) {
	e, _, _ := newTestService(t)

	token, user := signupUser(t, e, "Cliente@Example.com")
	require.NotEmpty(t, token)
	require.Equal(t, "cliente@example.com", user.Email)
	require.Equal(t, store.RoleClient, user.Role)
	require.False(t, user.IsApproved)

	// Duplicate email.
	rec := doJSON(t, e, http.MethodPost, "/api/v1/auth/signup", "", signupRequest{
		Email: "cliente@example.com", Password: "secreto1",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/auth/login", "", loginRequest{
		Email: "cliente@example.com", Password: "secreto1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/auth/login", "", loginRequest{
		Email: "cliente@example.com", Password: "equivocada",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	e, _, _ := newTestService(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/auth/signup", "", signupRequest{
		Email: "sin-arroba", Password: "secreto1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/auth/signup", "", signupRequest{
		Email: "ok@example.com", Password: "corta",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatCreatesConversationAndPersistsTurn(t *testing.T) {
	e, _, driver := newTestService(t)
	token, user := signupUser(t, e, "cliente@example.com")

	longMessage := "Necesito ayuda urgente con mi contrato de arrendamiento en Bogotá"
	rec := doJSON(t, e, http.MethodPost, "/api/v1/chat", token, chatRequest{Message: longMessage})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ConversationUID)
	// No credential configured: the engine degrades to the config-error reply.
	require.Equal(t, "risk", resp.Status)
	require.Contains(t, resp.Response, "Error de configuración")
	require.NotNil(t, resp.SuggestedActions)

	// Title is truncated to 40 characters.
	require.Len(t, []rune(resp.Title), 43)
	require.Contains(t, resp.Title, "...")

	// Both turns persisted, user first.
	require.Len(t, driver.messages, 2)
	require.Equal(t, store.SenderUser, driver.messages[0].SenderRole)
	require.Equal(t, longMessage, driver.messages[0].Content)
	require.Equal(t, store.SenderAssistant, driver.messages[1].SenderRole)

	// Risk replies flag the conversation.
	uid := resp.ConversationUID
	conversation, err := driver.GetConversation(context.Background(), &store.FindConversation{UID: &uid})
	require.NoError(t, err)
	require.Equal(t, store.ConversationRiskDetected, conversation.Status)
	require.Equal(t, user.ID, *conversation.UserID)

	// A follow-up reuses the conversation.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/chat", token, chatRequest{
		Message:         "Gracias",
		ConversationUID: uid,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, driver.messages, 4)
}

func TestChatAllowsAnonymous(t *testing.T) {
	e, _, driver := newTestService(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/chat", "", chatRequest{Message: "hola"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, driver.conversations, 1)
	for _, c := range driver.conversations {
		require.Nil(t, c.UserID)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	e, _, _ := newTestService(t)
	rec := doJSON(t, e, http.MethodPost, "/api/v1/chat", "", chatRequest{Message: "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHidesForeignConversations(t *testing.T) {
	e, _, _ := newTestService(t)
	ownerToken, _ := signupUser(t, e, "owner@example.com")
	otherToken, _ := signupUser(t, e, "other@example.com")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/chat", ownerToken, chatRequest{Message: "hola"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doJSON(t, e, http.MethodPost, "/api/v1/chat", otherToken, chatRequest{
		Message: "hola", ConversationUID: resp.ConversationUID,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodGet,
		"/api/v1/conversations/"+resp.ConversationUID+"/messages", otherToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversationEndpointsRequireAuth(t *testing.T) {
	e, _, _ := newTestService(t)
	rec := doJSON(t, e, http.MethodGet, "/api/v1/conversations", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAndDeleteOwnConversations(t *testing.T) {
	e, _, _ := newTestService(t)
	token, _ := signupUser(t, e, "cliente@example.com")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/chat", token, chatRequest{Message: "hola"})
	require.Equal(t, http.StatusOK, rec.Code)
	var chat chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chat))

	rec = doJSON(t, e, http.MethodGet, "/api/v1/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Conversations []conversationResponse `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Conversations, 1)

	rec = doJSON(t, e, http.MethodGet,
		"/api/v1/conversations/"+chat.ConversationUID+"/messages", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgResp struct {
		Messages []messageResponse `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgResp))
	require.Len(t, msgResp.Messages, 2)
	require.Equal(t, "user", msgResp.Messages[0].Role)

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/conversations/"+chat.ConversationUID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Empty(t, listResp.Conversations)
}

func adminToken(t *testing.T, e *echo.Echo, driver *memDriver) string {
	t.Helper()
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	admin, err := driver.CreateUser(context.Background(), &store.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         store.RoleAdmin,
		IsAdmin:      true,
		IsApproved:   true,
	})
	require.NoError(t, err)
	token, err := auth.GenerateAccessToken(admin.ID, testSecret, time.Now())
	require.NoError(t, err)
	return token
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	e, _, _ := newTestService(t)
	clientToken, _ := signupUser(t, e, "cliente@example.com")

	rec := doJSON(t, e, http.MethodGet, "/api/v1/admin/stats", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/admin/stats", clientToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminStatsAndUsers(t *testing.T) {
	e, _, driver := newTestService(t)
	token := adminToken(t, e, driver)
	clientToken, _ := signupUser(t, e, "cliente@example.com")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/chat", clientToken, chatRequest{Message: "hola"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats dashboardStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, int32(2), stats.TotalUsers)
	require.Equal(t, int32(1), stats.TotalConversations)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/admin/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var usersResp struct {
		Users []adminUserResponse `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usersResp))
	require.Len(t, usersResp.Users, 2)
}

func TestAdminUserApproval(t *testing.T) {
	e, _, driver := newTestService(t)
	token := adminToken(t, e, driver)
	_, client := signupUser(t, e, "cliente@example.com")

	rec := doJSON(t, e, http.MethodPatch,
		"/api/v1/admin/users/"+itoa(client.ID)+"/approval", token,
		approvalRequest{IsApproved: true})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.IsApproved)

	rec = doJSON(t, e, http.MethodPatch, "/api/v1/admin/users/9999/approval", token,
		approvalRequest{IsApproved: true})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminConversationsLabelsAnonymous(t *testing.T) {
	e, _, driver := newTestService(t)
	token := adminToken(t, e, driver)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/chat", "", chatRequest{Message: "hola"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/admin/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Conversations []adminConversationResponse `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 1)
	require.Equal(t, "Anonymous", resp.Conversations[0].UserEmail)
}

func TestAdminKnowledgeUploadListDelete(t *testing.T) {
	e, _, driver := newTestService(t)
	token := adminToken(t, e, driver)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "ley820.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Artículo 1. Régimen de arrendamiento de vivienda urbana."))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/knowledge", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var doc knowledgeDocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "ley820.txt", doc.Title)
	require.Equal(t, "txt", doc.FileType)
	require.NotEmpty(t, doc.UID)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/admin/knowledge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Documents []knowledgeDocumentResponse `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Documents, 1)

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/admin/knowledge/"+doc.UID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/admin/knowledge/"+doc.UID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentExtract(t *testing.T) {
	e, _, _ := newTestService(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "contrato.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("CONTRATO DE ARRENDAMIENTO"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp extractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "contrato.txt", resp.Filename)
	require.Equal(t, "CONTRATO DE ARRENDAMIENTO", resp.Text)
}

func TestHealthCheck(t *testing.T) {
	e, _, _ := newTestService(t)
	rec := doJSON(t, e, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func itoa(id int32) string {
	return strconv.Itoa(int(id))
}
