package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/stomadent/clinic-api/pkg/errors"
)

// ErrorResponse is the uniform error body of all patient-facing endpoints.
// Messages are user-facing Polish; internals never leak here.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

const msgServerError = "Wystąpił błąd serwera."

// RespondError maps an application error to its HTTP status and body.
// Internal failures always get the generic Polish message; their own message
// wraps the underlying cause and is for logs only.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code == apperrors.ErrInternal {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(msgServerError))
		return
	}
	c.JSON(appErr.HTTPStatus(), NewErrorResponse(appErr.Message))
}
