package database

import (
	"github.com/robalyx/presencerelay/internal/database/service"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	link *service.LinkService
}

// NewService creates a new service instance with all services.
func NewService(repository *Repository, logger *zap.Logger) *Service {
	return &Service{
		link: service.NewLink(
			repository.Link(),
			repository.Destination(),
			repository.Presence(),
			repository.RateLimit(),
			logger,
		),
	}
}

// Link returns the link store service.
func (s *Service) Link() *service.LinkService {
	return s.link
}
