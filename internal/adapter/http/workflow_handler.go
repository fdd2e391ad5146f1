package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "microfin-backend/internal/adapter/middleware"
	domainLoan "microfin-backend/internal/domain/loan"
	workflowuc "microfin-backend/internal/usecase/workflow"
)

type WorkflowHandler struct{ uc *workflowuc.Usecase }

func NewWorkflowHandler(uc *workflowuc.Usecase) *WorkflowHandler { return &WorkflowHandler{uc: uc} }

type agentDecisionReq struct {
	Approve  bool   `json:"approve"`
	Comments string `json:"comments" validate:"max=2000"`
	Rating   int    `json:"rating"   validate:"gte=0,lte=5"`
}

type regionalDecisionReq struct {
	Approve    bool     `json:"approve"`
	Comments   string   `json:"comments"   validate:"max=2000"`
	Conditions []string `json:"conditions" validate:"dive,max=500"`
}

type overrideStatusReq struct {
	TargetStage string `json:"target_stage" validate:"required"`
	Comment     string `json:"comment"      validate:"max=2000"`
}

type postPaymentReq struct {
	Amount float64 `json:"amount" validate:"required,gt=0,dec2"`
}

func (h *WorkflowHandler) AgentReview(c echo.Context) error {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor context"})
	}
	applicationID := c.Param("application_id")
	var req agentDecisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.AgentDecision(c.Request().Context(), actor, applicationID, workflowuc.AgentDecisionInput{
		Approve:  req.Approve,
		Comments: req.Comments,
		Rating:   req.Rating,
		Meta:     requestMeta(c),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WorkflowHandler) RegionalReview(c echo.Context) error {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor context"})
	}
	applicationID := c.Param("application_id")
	var req regionalDecisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.RegionalDecision(c.Request().Context(), actor, applicationID, workflowuc.RegionalDecisionInput{
		Approve:    req.Approve,
		Comments:   req.Comments,
		Conditions: req.Conditions,
		Meta:       requestMeta(c),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WorkflowHandler) OverrideStatus(c echo.Context) error {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor context"})
	}
	applicationID := c.Param("application_id")
	var req overrideStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	target, err := domainLoan.ParseStage(req.TargetStage)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	dto, err := h.uc.OverrideStatus(c.Request().Context(), actor, applicationID, workflowuc.OverrideInput{
		TargetStage: target,
		Comment:     req.Comment,
		Meta:        requestMeta(c),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WorkflowHandler) PostPayment(c echo.Context) error {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor context"})
	}
	applicationID := c.Param("application_id")
	var req postPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.PostPayment(c.Request().Context(), actor, applicationID, workflowuc.PaymentInput{
		Amount: req.Amount,
		Meta:   requestMeta(c),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
