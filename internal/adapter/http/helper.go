package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"microfin-backend/internal/auth"
	"microfin-backend/internal/domain/client"
	"microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/region"
	"microfin-backend/internal/domain/staff"
	"microfin-backend/internal/rules"
	loanuc "microfin-backend/internal/usecase/loan"
)

// writeDomainError maps the error taxonomy onto HTTP statuses: validation →
// 422, missing references → 404, authorization → 403, illegal transitions
// and lost-update races → 409.
func writeDomainError(c echo.Context, err error) error {
	var ve *rules.ValidationError
	if errors.As(err, &ve) {
		details := make([]FieldError, 0, len(ve.Violations))
		for _, v := range ve.Violations {
			details = append(details, FieldError{Field: v.Field, Code: v.Code, Message: v.Message})
		}
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "business rule validation failed", Details: details})
	}
	switch {
	case errors.Is(err, auth.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, client.ErrNotFound),
		errors.Is(err, staff.ErrNotFound),
		errors.Is(err, region.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, loan.ErrLoanNotActive),
		errors.Is(err, loan.ErrStaleRecord),
		errors.Is(err, loan.ErrDuplicateApplicationID):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func requestMeta(c echo.Context) loanuc.RequestMeta {
	return loanuc.RequestMeta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
}
