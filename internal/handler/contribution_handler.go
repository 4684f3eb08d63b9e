package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccotek/cocoti-pool-flow/internal/flow"
	"github.com/ccotek/cocoti-pool-flow/internal/model"
)

// ContributionHandler HTTP surface of the contribution wizard
type ContributionHandler struct {
	flow *flow.ContributionFlow
}

// NewContributionHandler creates the contribution handler
func NewContributionHandler(contributionFlow *flow.ContributionFlow) *ContributionHandler {
	return &ContributionHandler{flow: contributionFlow}
}

// Start opens a contribution session against a pool
func (h *ContributionHandler) Start(c *gin.Context) {
	var req StartContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.flow.Start(c.Request.Context(), clientID(c), req.PoolID)
	if err != nil {
		FlowError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "contribution flow started", ToSessionResponse(session))
}

// SubmitDetails validates the details step and advances to payment
func (h *ContributionHandler) SubmitDetails(c *gin.Context) {
	var req ContributionDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.flow.SubmitDetails(c.Request.Context(), c.Param("sid"), flow.DetailsInput{
		Amount:        req.Amount,
		Message:       req.Message,
		Anonymous:     req.Anonymous,
		ServiceFeePct: req.ServiceFeePct,
	})
	if err != nil {
		FlowError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "details accepted", ToSessionResponse(session))
}

// SubmitPayment validates the payment step and returns the checkout handoff
func (h *ContributionHandler) SubmitPayment(c *gin.Context) {
	var req ContributionPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	method := model.PaymentMethod{
		Kind:       model.PaymentMethodKind(req.Method),
		Phone:      req.Phone,
		CardNumber: req.CardNumber,
		CardExpiry: req.CardExpiry,
		CardCVC:    req.CardCVC,
	}

	handoff, err := h.flow.SubmitPayment(c.Request.Context(), c.Param("sid"), flow.PaymentInput{
		FullName: req.FullName,
		Email:    req.Email,
		Method:   method,
	})
	if err != nil {
		FlowError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "payment initiated", handoff)
}
