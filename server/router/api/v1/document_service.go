package v1

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/iuristatech/legalchat/plugin/docextract"
)

type extractResponse struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

func (s *APIV1Service) registerDocumentRoutes(g *echo.Group) {
	g.POST("/documents/extract", s.extractDocument)
}

// extractDocument converts an uploaded file to plain text. The text is
// returned to the caller, not persisted: it travels back in the next chat
// request as document context.
func (s *APIV1Service) extractDocument(c *echo.Context) error {
	file, header, err := c.Request().FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file required")
	}
	defer file.Close()

	if docextract.FileType(header.Filename) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported file type")
	}
	text, err := s.Extractor.Extract(c.Request().Context(), header.Filename, file, header.Size)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, extractResponse{
		Filename: header.Filename,
		Text:     text,
	})
}
