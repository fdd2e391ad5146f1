package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "microfin-backend/internal/adapter/middleware"
	loanuc "microfin-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *loanuc.Usecase }

func NewLoanHandler(uc *loanuc.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createApplicationReq struct {
	ClientID             string  `json:"client_id"              validate:"required,hex32"`
	Principal            float64 `json:"principal"              validate:"required,gt=0,dec2"`
	AnnualRate           float64 `json:"annual_rate"            validate:"gte=0,lte=100,dec2"`
	TermMonths           int     `json:"term_months"            validate:"required,gte=1,lte=360"`
	GuarantorID          *string `json:"guarantor_id,omitempty" validate:"omitempty,hex32"`
	SecondaryGuarantorID *string `json:"secondary_guarantor_id,omitempty" validate:"omitempty,hex32"`
}

func (h *LoanHandler) CreateApplication(c echo.Context) error {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor context"})
	}
	var req createApplicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.CreateApplication(c.Request().Context(), actor, loanuc.CreateApplicationInput{
		ClientID:             req.ClientID,
		Principal:            req.Principal,
		AnnualRate:           req.AnnualRate,
		TermMonths:           req.TermMonths,
		GuarantorID:          req.GuarantorID,
		SecondaryGuarantorID: req.SecondaryGuarantorID,
		Meta:                 requestMeta(c),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor context"})
	}
	applicationID := c.Param("application_id")
	if !reApplicationID.MatchString(applicationID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application_id"})
	}
	dto, err := h.uc.Get(c.Request().Context(), actor, applicationID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor context"})
	}
	dtos, err := h.uc.List(c.Request().Context(), actor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}
