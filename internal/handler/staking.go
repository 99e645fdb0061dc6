package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/dex-engine/internal/service"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

type StakingHandler struct {
	BaseHandler
	service *service.StakingService
}

func NewStakingHandler(logger *slog.Logger, svc *service.StakingService) *StakingHandler {
	return &StakingHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type StakingResponse struct {
	StakedAmount          string `json:"stakedAmount"`
	EarnedRewards         string `json:"earnedRewards"`
	TimeStaked            string `json:"timeStaked"`
	RewardRate            string `json:"rewardRate"`
	TotalStaked           string `json:"totalStaked"`
	APR                   string `json:"apr"`
	APY                   string `json:"apy"`
	ProjectedDailyRewards string `json:"projectedDailyRewards"`
	Block                 uint64 `json:"block"`
}

func (h *StakingHandler) Info() fiber.Handler {
	return func(c fiber.Ctx) error {
		user, err := parseAddress("user", c.Params("user"))
		if err != nil {
			return err
		}

		pos, err := h.service.Info(c.Context(), user)
		if err != nil {
			return h.handleServiceError("staking info", err)
		}

		return c.JSON(StakingResponse{
			StakedAmount:          fixedpoint.FormatTrimmed(pos.Staked),
			EarnedRewards:         fixedpoint.FormatTrimmed(pos.Earned),
			TimeStaked:            pos.TimeStaked.String(),
			RewardRate:            fixedpoint.FormatTrimmed(pos.RewardRate),
			TotalStaked:           fixedpoint.FormatTrimmed(pos.TotalStaked),
			APR:                   pos.APR.APRPercent.StringFixed(fixedpoint.PercentPlaces),
			APY:                   pos.APYPercent.StringFixed(fixedpoint.PercentPlaces),
			ProjectedDailyRewards: fixedpoint.FormatTrimmed(pos.ProjectedRewards),
			Block:                 pos.Block,
		})
	}
}
