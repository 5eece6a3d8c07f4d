package editrequests

import (
	editrequestdomain "league-app-go/internal/domain/editrequest"
	"league-app-go/pkg/logger"
)

type Handlers struct {
	EditRequests *editrequestdomain.Service
	log          logger.Logger
}

func New(editRequests *editrequestdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		EditRequests: editRequests,
		log:          log,
	}
}
