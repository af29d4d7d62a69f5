// Package httpapi holds gin helpers for services that speak the shared
// contract: envelope writers, request binding with the contract rules, and
// pagination query parsing.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xenon007/todo-contract/models"
)

// Now is the clock used for APIError timestamps.
var Now = time.Now

// Respond wraps data in a successful APIResponse.
func Respond[T any](c *gin.Context, status int, data T) {
	c.JSON(status, models.OK(data))
}

// RespondMessage writes a successful APIResponse with no payload.
func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, models.OKMessage[struct{}](message))
}

// RespondPage writes one page of items.
func RespondPage[T any](c *gin.Context, items []T, q PageQuery, total int) {
	c.JSON(http.StatusOK, models.Paginate(items, q.Page, q.Limit, total))
}

// RespondError logs the error and writes an APIError body.
func RespondError(c *gin.Context, logger *slog.Logger, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
		if logger != nil {
			level := slog.LevelWarn
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(c.Request.Context(), level, "request failed",
				slog.String("path", c.FullPath()),
				slog.Int("status", status),
				slog.String("error", err.Error()))
		}
	}
	c.AbortWithStatusJSON(status, models.NewAPIError(status, message, c.Request.URL.Path, Now()))
}

// Abort picks the status for err and writes it with RespondError.
func Abort(c *gin.Context, logger *slog.Logger, err error) {
	RespondError(c, logger, StatusFor(err), err)
}

// ErrNotFound marks a missing entity; StatusFor maps it to 404.
var ErrNotFound = errors.New("not found")

// StatusFor maps contract errors to HTTP statuses.
func StatusFor(err error) int {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalid),
		errors.Is(err, models.ErrUnknownToken),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var registerOnce sync.Once
var registerErr error

// RegisterValidations installs the contract rules on gin's validator. Bind
// calls it; call it directly when handlers use ShouldBind themselves.
func RegisterValidations() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("gin validator engine is %T, want *validator.Validate", binding.Validator.Engine())
			return
		}
		registerErr = models.RegisterValidations(v)
	})
	return registerErr
}

// Bind decodes the JSON body into dst and applies the contract rules.
// Every failure wraps models.ErrInvalid.
func Bind(c *gin.Context, dst any) error {
	if err := RegisterValidations(); err != nil {
		return err
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			return models.TranslateValidation(ves)
		}
		return fmt.Errorf("%w: %w", models.ErrInvalid, err)
	}
	return nil
}

// NotFound answers unknown routes with an APIError.
func NotFound(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		RespondError(c, logger, http.StatusNotFound, errors.New("endpoint not found"))
	}
}

// Recovery turns panics into a 500 APIError.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		RespondError(c, logger, http.StatusInternalServerError, fmt.Errorf("panic: %v", recovered))
	})
}
