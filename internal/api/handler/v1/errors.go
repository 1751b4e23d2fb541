package v1

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/callin-contest-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/callin-contest-api/internal/api/middleware"
	"github.com/vietanh2810/callin-contest-api/internal/service"
)

// storeOrInternalErr maps transient store failures to 503 and everything
// else to 500.
func storeOrInternalErr(err error) *response.Err {
	if errors.Is(err, service.ErrStoreUnavailable) ||
		errors.Is(err, service.ErrRateLimitStoreUnavailable) ||
		errors.Is(err, service.ErrDrawContention) {
		return response.ErrServiceUnavailable(err)
	}

	return response.ErrInternalServerError(err)
}

func adminIDField(ctx *gin.Context) zap.Field {
	return zap.Uint("admin_id", ctx.GetUint(middleware.ContextKeyAdminID))
}
