package handlers

import (
	"github.com/nimasrn/inquiry-gateway/internal/catalog"
	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
)

type ArtTypeHandler struct {
	catalog *catalog.Catalog
}

func RegisterArtTypeRoutes(e *xhttp.Group, h *ArtTypeHandler) {
	e.GET("/art-types", h.ListArtTypes)
}

func NewArtTypeHandler(c *catalog.Catalog) *ArtTypeHandler {
	return &ArtTypeHandler{catalog: c}
}

func (h *ArtTypeHandler) ListArtTypes(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"success":  true,
		"artTypes": h.catalog.All(),
	})
}
