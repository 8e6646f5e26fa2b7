package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/infrahq/unpublished/api"
	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/access"
	"github.com/infrahq/unpublished/internal/logging"
	"github.com/infrahq/unpublished/internal/server/data"
)

// sendAPIError translates err into the appropriate HTTP status code, builds a
// response body using api.Error, then sends both as a response to the active
// request.
func sendAPIError(c *gin.Context, err error) {
	resp := &api.Error{
		Code:    http.StatusInternalServerError,
		Message: "internal server error", // don't leak any info by default
	}

	var validationErrors validator.ValidationErrors
	var uniqueConstraintError data.UniqueConstraintError
	var authzError access.AuthorizationError

	lvl := zapcore.DebugLevel

	switch {
	case errors.Is(err, internal.ErrUnauthorized):
		resp.Code = http.StatusUnauthorized
		// hide the error text, it may contain sensitive information
		resp.Message = "unauthorized"
		lvl = zapcore.InfoLevel

	case errors.Is(err, data.ErrAccessTokenExpired):
		resp.Code = http.StatusUnauthorized
		// the token was once valid, so include some extra details
		resp.Message = fmt.Sprintf("%s: %s", internal.ErrUnauthorized, data.ErrAccessTokenExpired)

	case errors.Is(err, data.ErrAccessTokenInvalid):
		resp.Code = http.StatusUnauthorized
		resp.Message = fmt.Sprintf("%s: %s", internal.ErrUnauthorized, data.ErrAccessTokenInvalid)

	case errors.As(err, &authzError):
		resp.Code = http.StatusForbidden
		resp.Message = authzError.Error()

	case errors.As(err, &uniqueConstraintError):
		resp.Code = http.StatusConflict
		resp.Message = uniqueConstraintError.Error()

	case errors.Is(err, internal.ErrNotFound):
		resp.Code = http.StatusNotFound
		resp.Message = err.Error()

	case errors.As(err, &validationErrors):
		resp.Code = http.StatusBadRequest
		resp.Message = "validation failed"
		for _, fieldError := range validationErrors {
			resp.FieldErrors = append(resp.FieldErrors, api.FieldError{
				FieldName: fieldError.Field(),
				Errors:    []string{fieldError.Tag()},
			})
		}
		sort.Slice(resp.FieldErrors, func(i, j int) bool {
			return resp.FieldErrors[i].FieldName < resp.FieldErrors[j].FieldName
		})

	case errors.Is(err, internal.ErrBadRequest):
		resp.Code = http.StatusBadRequest
		resp.Message = err.Error()

	case errors.Is(err, context.DeadlineExceeded):
		resp.Code = http.StatusGatewayTimeout // not ideal, but StatusRequestTimeout isn't intended for this.
		resp.Message = "request timed out"

	default:
		lvl = zapcore.ErrorLevel
	}

	if ce := logging.L.WithOptions(zap.AddCallerSkip(1)).Check(lvl, "api request error"); ce != nil {
		ce.Write(
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int32("statusCode", resp.Code),
			zap.String("remoteAddr", c.Request.RemoteAddr),
		)
	}

	c.JSON(int(resp.Code), resp)
	c.Abort()
}
