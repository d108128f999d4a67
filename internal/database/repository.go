package database

import (
	"github.com/robalyx/presencerelay/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	link        *models.LinkModel
	destination *models.DestinationModel
	presence    *models.PresenceModel
	rateLimit   *models.RateLimitModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		link:        models.NewLink(db, logger),
		destination: models.NewDestination(db, logger),
		presence:    models.NewPresence(db, logger),
		rateLimit:   models.NewRateLimit(db, logger),
	}
}

// Link returns the link model repository.
func (r *Repository) Link() *models.LinkModel {
	return r.link
}

// Destination returns the destination model repository.
func (r *Repository) Destination() *models.DestinationModel {
	return r.destination
}

// Presence returns the presence cache model repository.
func (r *Repository) Presence() *models.PresenceModel {
	return r.presence
}

// RateLimit returns the rate limit model repository.
func (r *Repository) RateLimit() *models.RateLimitModel {
	return r.rateLimit
}
