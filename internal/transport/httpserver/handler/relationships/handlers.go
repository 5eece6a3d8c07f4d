package relationships

import (
	relationshipdomain "league-app-go/internal/domain/relationship"
	"league-app-go/pkg/logger"
)

type Handlers struct {
	Relationships *relationshipdomain.Service
	log           logger.Logger
}

func New(relationships *relationshipdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Relationships: relationships,
		log:           log,
	}
}
