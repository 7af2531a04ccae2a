package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"bobina-estoque-backend/internal/store"
	"bobina-estoque-backend/internal/transfer"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	coordinator *transfer.Coordinator
	webpush     *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, c *transfer.Coordinator, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:       s,
		coordinator: c,
		webpush:     webpushOptions,
	}
}

// abortStoreError maps store-layer failures to HTTP responses.
func abortStoreError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrReelReferenced):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "reel has usage history and is retained for audit"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": action})
	}
}
