package http

import (
	"net/http"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

var errInvalidBody = common.NewValidationError("Invalid request body")

// StatusFor maps an error to its HTTP status by kind.
func StatusFor(err error) int {
	switch common.KindOf(err) {
	case common.KindValidation, common.KindConflict, common.KindAuthentication:
		return http.StatusBadRequest
	case common.KindAuthorization:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError aborts the request with the mapped status. Infrastructure
// errors are recorded on the context for the access log and replaced by a
// generic message.
func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = common.ErrorInternal.Error()
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}
