package api

import (
	"github.com/ericogr/cardduel/internal/constants"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every endpoint under the API prefix.
func RegisterRoutes(router gin.IRouter, h *DuelHandler) {
	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, Version)
		apiRoutes.POST(constants.RouteCardsParse, ParseEffect)

		apiRoutes.POST(constants.RouteDuels, h.CreateDuel)
		apiRoutes.GET(constants.RouteDuels, h.ListDuels)
		apiRoutes.GET(constants.RouteDuelByCode, h.GetDuel)
		apiRoutes.GET(constants.RouteDuelDecisions, h.ListAIDecisions)
		apiRoutes.GET(constants.RouteDuelEvents, h.Events)

		apiRoutes.POST(constants.RouteDuelEquip, h.Equip)
		apiRoutes.POST(constants.RouteDuelEquipDone, h.FinishEquip)
		apiRoutes.POST(constants.RouteDuelPlace, h.Place)
		apiRoutes.POST(constants.RouteDuelPass, h.Pass)
		apiRoutes.POST(constants.RouteThreatDefend, h.DefendThreat)
		apiRoutes.POST(constants.RouteThreatSkip, h.SkipThreat)
	}
}
