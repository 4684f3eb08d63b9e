package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
	"github.com/ccotek/cocoti-pool-flow/internal/token"
)

// AuthHandler exposes the caller's login state to the web client
type AuthHandler struct {
	backend *backend.Client
	tokens  token.Store
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(client *backend.Client, tokens token.Store) *AuthHandler {
	return &AuthHandler{backend: client, tokens: tokens}
}

// Me reports whether the stored token still maps to an account. Any
// failure reads as logged out; it is never surfaced as an error.
func (h *AuthHandler) Me(c *gin.Context) {
	bearer, err := h.tokens.Get(c.Request.Context(), clientID(c))
	if err != nil || bearer == "" {
		SuccessResponse(c, http.StatusOK, "anonymous", gin.H{"logged_in": false})
		return
	}

	me, err := h.backend.CurrentUser(c.Request.Context(), bearer)
	if err != nil {
		SuccessResponse(c, http.StatusOK, "anonymous", gin.H{"logged_in": false})
		return
	}

	SuccessResponse(c, http.StatusOK, "authenticated", gin.H{"logged_in": true, "user": me})
}
