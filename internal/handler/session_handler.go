package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ccotek/cocoti-pool-flow/internal/flow"
)

// clientIDHeader identifies the browser/device across requests so the
// token store can key on it
const clientIDHeader = "X-Client-ID"

// clientID returns the caller's client id, minting one when absent
func clientID(c *gin.Context) string {
	if id := c.GetHeader(clientIDHeader); id != "" {
		return id
	}
	id := uuid.NewString()
	c.Header(clientIDHeader, id)
	return id
}

// SessionHandler session-generic operations shared by both wizards
type SessionHandler struct {
	sessions         *flow.Registry
	contributionFlow *flow.ContributionFlow
	creationFlow     *flow.CreationFlow
}

// NewSessionHandler creates the session handler
func NewSessionHandler(sessions *flow.Registry, contributionFlow *flow.ContributionFlow, creationFlow *flow.CreationFlow) *SessionHandler {
	return &SessionHandler{
		sessions:         sessions,
		contributionFlow: contributionFlow,
		creationFlow:     creationFlow,
	}
}

// Get returns the current session state; the web client polls this
// while a checkout settles in the background
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("sid"))
	if err != nil {
		FlowError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "session state", ToSessionResponse(session))
}

// Retreat steps a wizard back one step, preserving entered values
func (h *SessionHandler) Retreat(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("sid"))
	if err != nil {
		FlowError(c, err)
		return
	}

	if session.Kind == flow.KindContribution {
		session, err = h.contributionFlow.Retreat(session.ID)
	} else {
		session, err = h.creationFlow.Retreat(session.ID)
	}
	if err != nil {
		FlowError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "step reverted", ToSessionResponse(session))
}

// Cancel destroys a session; drafts and OTP state go with it
func (h *SessionHandler) Cancel(c *gin.Context) {
	if _, err := h.sessions.Get(c.Param("sid")); err != nil {
		FlowError(c, err)
		return
	}
	h.sessions.Delete(c.Param("sid"))
	SuccessResponse(c, http.StatusOK, "session cancelled", nil)
}
