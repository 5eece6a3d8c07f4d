package common

import (
	"league-app-go/internal/domain/policy"
	userdomain "league-app-go/internal/domain/user"
	"league-app-go/pkg/logger"
)

type Handlers struct {
	Users    *userdomain.Service
	Policies *policy.Table
	log      logger.Logger
}

func New(users *userdomain.Service, policies *policy.Table, log logger.Logger) *Handlers {
	return &Handlers{
		Users:    users,
		Policies: policies,
		log:      log,
	}
}
