package handler

import (
	editrequestdomain "league-app-go/internal/domain/editrequest"
	leaguedomain "league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	relationshipdomain "league-app-go/internal/domain/relationship"
	userdomain "league-app-go/internal/domain/user"
	"league-app-go/internal/transport/httpserver/handler/common"
	"league-app-go/internal/transport/httpserver/handler/editrequests"
	"league-app-go/internal/transport/httpserver/handler/league"
	"league-app-go/internal/transport/httpserver/handler/relationships"
	"league-app-go/pkg/logger"
)

type Handlers struct {
	Common        *common.Handlers
	League        *league.Handlers
	Relationships *relationships.Handlers
	EditRequests  *editrequests.Handlers
}

type Services struct {
	Users         *userdomain.Service
	League        *leaguedomain.Service
	Relationships *relationshipdomain.Service
	EditRequests  *editrequestdomain.Service
	Policies      *policy.Table
}

func New(services Services, log logger.Logger) *Handlers {
	return &Handlers{
		Common:        common.New(services.Users, services.Policies, log),
		League:        league.New(services.League, log),
		Relationships: relationships.New(services.Relationships, log),
		EditRequests:  editrequests.New(services.EditRequests, log),
	}
}
