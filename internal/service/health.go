package service

import (
	"context"
	"log/slog"
)

// HealthService reports whether the node answers.
type HealthService struct {
	BaseService
}

func NewHealthService(logger *slog.Logger, reader ChainReader) *HealthService {
	return &HealthService{BaseService: BaseService{logger: logger, reader: reader}}
}

// LatestBlock returns the node's latest block number.
func (s *HealthService) LatestBlock(ctx context.Context) (uint64, error) {
	bn, _, err := s.pin(ctx)
	if err != nil {
		s.logger.Warn("health check failed", "err", err)
	}
	return bn, err
}
