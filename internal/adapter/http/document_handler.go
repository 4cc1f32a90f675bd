package http

import (
	"mime"
	"net/http"

	"insurance-claims-backend/internal/infrastructure/logger"
	docuc "insurance-claims-backend/internal/usecase/document"

	"github.com/labstack/echo/v4"
)

type DocumentHandler struct {
	uc  *docuc.Usecase
	log *logger.Logger
}

func NewDocumentHandler(uc *docuc.Usecase, log *logger.Logger) *DocumentHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &DocumentHandler{uc: uc, log: log}
}

// Download streams a stored document under its original filename.
func (h *DocumentHandler) Download(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	d, rc, err := h.uc.Download(c.Request().Context(), a, c.Param("storedFilename"))
	if err != nil {
		return respondErr(c, h.log, err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": d.OriginalFilename}))
	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	return c.Stream(http.StatusOK, d.MimeType, rc)
}
