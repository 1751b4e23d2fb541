package response

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the body of every error response.
type Err struct {
	Err            error         `json:"-"`
	HTTPStatusCode int           `json:"-"`
	RetryAfter     time.Duration `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}
	return e.Err.Error()
}

func RenderErr(ctx *gin.Context, e *Err) {
	fields := []zap.Field{
		zap.String("request_id", requestid.Get(ctx)),
		zap.Int("status", e.HTTPStatusCode),
		zap.String("path", ctx.FullPath()),
		zap.Error(e.Err),
	}
	switch {
	case e.HTTPStatusCode >= http.StatusInternalServerError:
		zap.L().Error("request failed", fields...)
	case e.HTTPStatusCode == http.StatusForbidden:
		zap.L().Warn("request forbidden", fields...)
	}

	if e.RetryAfter > 0 {
		ctx.Header("Retry-After", strconv.Itoa(int(math.Ceil(e.RetryAfter.Seconds()))))
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request",
		ErrorText:      err.Error(),
	}
}

func ErrNotFound(resource, field string, value any) *Err {
	err := fmt.Errorf("%s with %s=%v not found", resource, field, value)

	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Not found",
		ErrorText:      err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized",
		ErrorText:      err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Wrong credentials",
		ErrorText:      "email or password is incorrect",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied",
		ErrorText:      err.Error(),
	}
}

func ErrTooManyRequests(retryAfter time.Duration) *Err {
	return &Err{
		Err:            errors.New("rate limit exceeded"),
		HTTPStatusCode: http.StatusTooManyRequests,
		RetryAfter:     retryAfter,
		StatusText:     "Too many requests",
		ErrorText:      "please try again later",
	}
}

// ErrServiceUnavailable is used for transient store failures.
func ErrServiceUnavailable(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusServiceUnavailable,
		RetryAfter:     time.Second,
		StatusText:     "Service unavailable",
		ErrorText:      "temporarily unavailable, please retry",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error",
	}
}
