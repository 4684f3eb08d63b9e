package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccotek/cocoti-pool-flow/internal/flow"
	"github.com/ccotek/cocoti-pool-flow/internal/media"
	"github.com/ccotek/cocoti-pool-flow/internal/model"
)

// CreationHandler HTTP surface of the creation wizard
type CreationHandler struct {
	flow *flow.CreationFlow
}

// NewCreationHandler creates the creation handler
func NewCreationHandler(creationFlow *flow.CreationFlow) *CreationHandler {
	return &CreationHandler{flow: creationFlow}
}

// Start opens a creation session
func (h *CreationHandler) Start(c *gin.Context) {
	session := h.flow.Start(c.Request.Context(), clientID(c))
	SuccessResponse(c, http.StatusCreated, "creation flow started", ToSessionResponse(session))
}

// SubmitInfo validates the info step; depending on the stored token the
// flow lands on verification or jumps straight to activation
func (h *CreationHandler) SubmitInfo(c *gin.Context) {
	var req CreationInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.flow.SubmitInfo(c.Request.Context(), c.Param("sid"), flow.InfoInput{
		Name:            req.Name,
		Description:     req.Description,
		Visibility:      model.PoolVisibility(req.Visibility),
		Country:         req.Country,
		Currency:        req.Currency,
		TargetAmount:    req.TargetAmount,
		MinContribution: req.MinContribution,
		MaxContribution: req.MaxContribution,
		MaxParticipants: req.MaxParticipants,
		AllowAnonymous:  req.AllowAnonymous,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		CharterAccepted: req.CharterAccepted,
	})
	if err != nil {
		FlowError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "info accepted", ToSessionResponse(session))
}

// SendOTP requests a verification code
func (h *CreationHandler) SendOTP(c *gin.Context) {
	var req OtpSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.flow.SendOTP(c.Request.Context(), c.Param("sid"), req.Phone)
	if err != nil {
		FlowError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "verification code sent", ToSessionResponse(session))
}

// VerifyOTP submits the verification code
func (h *CreationHandler) VerifyOTP(c *gin.Context) {
	var req OtpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.flow.VerifyOTP(c.Request.Context(), c.Param("sid"), req.Code, req.FullName)
	if err != nil {
		FlowError(c, err)
		return
	}

	message := "verification complete"
	if session.Snapshot().Step == string(flow.StepVerification) {
		message = "verification accepted, full name required"
	}
	SuccessResponse(c, http.StatusOK, message, ToSessionResponse(session))
}

// Complete finishes a verification waiting on the creator's full name
func (h *CreationHandler) Complete(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.flow.Complete(c.Request.Context(), c.Param("sid"), req.FullName)
	if err != nil {
		FlowError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "money pool created", ToSessionResponse(session))
}

// Activate publishes the created pool or keeps it as a draft
func (h *CreationHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.flow.Activate(c.Request.Context(), c.Param("sid"), req.Publish, req.Confirmed)
	if err != nil {
		FlowError(c, err)
		return
	}

	message := "money pool kept as draft"
	if req.Publish {
		message = "money pool published"
	}
	SuccessResponse(c, http.StatusOK, message, ToSessionResponse(session))
}

// UploadMedia attaches an illustration to the creation draft
func (h *CreationHandler) UploadMedia(c *gin.Context) {
	fileType, err := media.ParseFileType(c.Query("file_type"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	defer file.Close()

	url, err := h.flow.AttachMedia(c.Request.Context(), c.Param("sid"), fileType, fileHeader.Filename, file)
	if err != nil {
		FlowError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "illustration uploaded", gin.H{"url": url})
}
