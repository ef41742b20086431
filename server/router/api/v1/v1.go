// Package v1 implements the JSON API consumed by the web frontend.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/iuristatech/legalchat/plugin/chatengine"
	"github.com/iuristatech/legalchat/plugin/docextract"
	"github.com/iuristatech/legalchat/server/auth"
	"github.com/iuristatech/legalchat/server/profile"
	"github.com/iuristatech/legalchat/store"
)

// APIV1Service bundles the dependencies of the v1 route handlers.
type APIV1Service struct {
	Secret    string
	Profile   *profile.Profile
	Store     *store.Store
	Engine    *chatengine.Engine
	Extractor *docextract.Extractor
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store, engine *chatengine.Engine) *APIV1Service {
	return &APIV1Service{
		Secret:    secret,
		Profile:   profile,
		Store:     store,
		Engine:    engine,
		Extractor: docextract.NewExtractor(),
	}
}

// Register mounts all v1 routes.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.GET("/healthz", s.healthCheck)

	g := e.Group("/api/v1")
	g.GET("/health", s.healthCheck)

	s.registerAuthRoutes(g)
	s.registerChatRoutes(g)
	s.registerDocumentRoutes(g)
	s.registerAdminRoutes(g)
}

func (s *APIV1Service) healthCheck(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "message": "Backend is running"})
}

// requireAuth resolves the request credentials to a user or fails with 401.
func (s *APIV1Service) requireAuth(c *echo.Context) (*store.User, error) {
	authHeader := c.Request().Header.Get("Authorization")
	cookieHeader := c.Request().Header.Get("Cookie")
	user, err := auth.NewAuthenticator(s.Store, s.Secret).AuthenticateToUser(
		c.Request().Context(), authHeader, cookieHeader,
	)
	if err != nil || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return user, nil
}

// authenticatedUser resolves the request credentials to a user, or nil for
// anonymous requests. Chat is open to anonymous visitors.
func (s *APIV1Service) authenticatedUser(c *echo.Context) *store.User {
	authHeader := c.Request().Header.Get("Authorization")
	cookieHeader := c.Request().Header.Get("Cookie")
	if authHeader == "" && cookieHeader == "" {
		return nil
	}
	user, err := auth.NewAuthenticator(s.Store, s.Secret).AuthenticateToUser(
		c.Request().Context(), authHeader, cookieHeader,
	)
	if err != nil {
		return nil
	}
	return user
}

// requireAdmin is requireAuth plus the admin flag.
func (s *APIV1Service) requireAdmin(c *echo.Context) (*store.User, error) {
	user, err := s.requireAuth(c)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, echo.NewHTTPError(http.StatusForbidden, "admin access required")
	}
	return user, nil
}
