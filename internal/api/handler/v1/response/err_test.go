package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRenderErr_RetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        *Err
		wantStatus int
		wantHeader string
	}{
		{name: "too many requests", err: ErrTooManyRequests(90500 * time.Millisecond), wantStatus: http.StatusTooManyRequests, wantHeader: "91"},
		{name: "unavailable", err: ErrServiceUnavailable(errors.New("down")), wantStatus: http.StatusServiceUnavailable, wantHeader: "1"},
		{name: "bad request", err: ErrBadRequest(errors.New("nope")), wantStatus: http.StatusBadRequest, wantHeader: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(rec)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RenderErr(ctx, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get("Retry-After"))
			assert.True(t, ctx.IsAborted())
		})
	}
}

func TestErrInternalServerError_HidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RenderErr(ctx, ErrInternalServerError(errors.New("pq: password authentication failed")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}
