// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolution

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all resolution routes with the router group.
//
// Description:
//
//	Registers the /resolution/* endpoints with the given Gin router
//	group (typically /v1). The group should already have any required
//	middleware applied.
//
// Endpoints:
//
//	POST   /v1/resolution/resolve - Resolve a selection to text
//	GET    /v1/resolution/dossiers/:dossierId/stitched - Stitched reading view
//	POST   /v1/resolution/invalidate - Apply a cache invalidation event
//	GET    /v1/resolution/dossiers/:dossierId/segments/:segmentId/final - Read final selection
//	POST   /v1/resolution/dossiers/:dossierId/segments/:segmentId/final - Record final selection
//	DELETE /v1/resolution/dossiers/:dossierId/segments/:segmentId/final - Clear final selection
//	GET    /v1/resolution/health - Service health
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	res := rg.Group("/resolution")
	{
		res.POST("/resolve", handlers.HandleResolve)
		res.POST("/invalidate", handlers.HandleInvalidate)
		res.GET("/dossiers/:dossierId/stitched", handlers.HandleStitched)

		final := res.Group("/dossiers/:dossierId/segments/:segmentId/final")
		{
			final.GET("", handlers.HandleGetFinal)
			final.POST("", handlers.HandleSetFinal)
			final.DELETE("", handlers.HandleClearFinal)
		}

		res.GET("/health", handlers.HandleHealth)
	}
}
