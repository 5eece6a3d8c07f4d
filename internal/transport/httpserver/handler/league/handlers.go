package league

import (
	leaguedomain "league-app-go/internal/domain/league"
	"league-app-go/pkg/logger"
)

type Handlers struct {
	League *leaguedomain.Service
	log    logger.Logger
}

func New(league *leaguedomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		League: league,
		log:    log,
	}
}
