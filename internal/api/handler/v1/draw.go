package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/callin-contest-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/callin-contest-api/internal/domain"
)

type DrawService interface {
	SelectRandomWinner(ctx context.Context) (domain.Participant, bool, error)
}

type DrawHandler struct {
	svc DrawService
}

func NewDrawHandler(svc DrawService) *DrawHandler {
	return &DrawHandler{
		svc: svc,
	}
}

// HandleDraw godoc
// @Summary      Draw a random winner
// @Description  Promotes one eligible participant. An empty pool is not an error.
// @Tags         draws
// @Produce      json
// @Success      200  {object}  response.Draw
// @Success      201  {object}  response.Draw
// @Failure      401  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /draws [post]
// @Security BearerAuth
func (h *DrawHandler) HandleDraw(ctx *gin.Context) {
	winner, ok, err := h.svc.SelectRandomWinner(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleDraw -> h.svc.SelectRandomWinner -> %w", err)
		response.RenderErr(ctx, storeOrInternalErr(err))
		return
	}

	if !ok {
		ctx.JSON(http.StatusOK, response.Draw{
			Found:   false,
			Message: "no eligible participants",
		})
		return
	}

	zap.L().Info("draw completed", adminIDField(ctx), zap.String("participant_id", winner.ID))

	dto := response.NewParticipant(winner)
	ctx.JSON(http.StatusCreated, response.Draw{
		Found:  true,
		Winner: &dto,
	})
}
