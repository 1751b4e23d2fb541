package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/callin-contest-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/pkg/jwthelper"
	"github.com/vietanh2810/callin-contest-api/internal/service"
)

const ContextKeyAdminID = "adminID"

var (
	errMissingToken      = errors.New("missing bearer token")
	errUserAgentMismatch = errors.New("token was issued to another client")
	errAdminRevoked      = errors.New("admin account no longer exists")
)

type AdminFinder interface {
	GetAdmin(ctx context.Context, id uint) (domain.Admin, error)
}

type Authenticator struct {
	signingKey []byte
	admins     AdminFinder
}

func NewAuthenticator(signingKey string, admins AdminFinder) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
		admins:     admins,
	}
}

// VerifyJWT rejects requests without a valid admin token, or whose admin
// has since been removed, and stores the admin id under ContextKeyAdminID.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			return
		}

		if claims.UserAgent != ctx.Request.UserAgent() {
			response.RenderErr(ctx, response.ErrUnauthorized(errUserAgentMismatch))
			return
		}

		if _, err = a.admins.GetAdmin(ctx.Request.Context(), claims.AdminID); err != nil {
			switch {
			case errors.Is(err, service.ErrAdminNotFound):
				response.RenderErr(ctx, response.ErrUnauthorized(errAdminRevoked))
			case errors.Is(err, service.ErrStoreUnavailable):
				response.RenderErr(ctx, response.ErrServiceUnavailable(fmt.Errorf("a.admins.GetAdmin -> %w", err)))
			default:
				response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("a.admins.GetAdmin -> %w", err)))
			}
			return
		}

		ctx.Set(ContextKeyAdminID, claims.AdminID)
		ctx.Next()
	}
}
