package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/services"
)

// maxUploadSize caps product and group images at 5 MB.
const maxUploadSize = 5 << 20

// UploadHandlers stores images in the object store and answers with their
// public URL, which the form then submits as image_url.
type UploadHandlers struct {
	media services.MediaService
}

func NewUploadHandlers(media services.MediaService) *UploadHandlers {
	return &UploadHandlers{media: media}
}

func (h *UploadHandlers) UploadImage(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Arquivo não enviado")
	}
	if fileHeader.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Arquivo excede o limite de 5MB")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "Apenas imagens são aceitas")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao ler arquivo")
	}
	defer file.Close()

	url, err := h.media.UploadImage(c.Request().Context(), fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		log.Printf("WARN: image upload failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao salvar imagem")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
