package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
)

// statusFor maps an error to its HTTP status, preferring an explicit code.
func statusFor(err *goerrors.Error) int {
	if err.Code >= 400 && err.Code < 600 {
		return err.Code
	}
	switch err.Category {
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse and aborts the chain.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	mapped := goerrors.MapToError(err, nil)
	status := statusFor(mapped)

	if requestID := c.GetString(requestIDKey); requestID != "" {
		mapped = mapped.WithRequestID(requestID)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", mapped.RequestID),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, mapped.ToErrorResponse(false, nil))
}

func badRequest(message, textCode string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(textCode)
}
