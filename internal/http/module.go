// Package http provides HTTP server infrastructure including the Module
// interface that all domain modules implement for route registration.
package http

import (
	"repaircrm_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is implemented by every domain module that serves HTTP routes. The
// router only knows modules through this interface; each module owns its own
// route layout.
type Module interface {
	// Name identifies the module in startup logs.
	Name() string
	// RegisterRoutes mounts the module's routes on the shared groups.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext bundles the route groups and shared middleware handed to each
// module at registration time.
type RouterContext struct {
	// Engine is the root gin engine, for modules needing engine-level access.
	Engine *gin.Engine
	// V1 is the public /api/v1 group.
	V1 *gin.RouterGroup
	// Protected requires a valid bearer token.
	Protected *gin.RouterGroup
	// Admin additionally requires the admin role.
	Admin *gin.RouterGroup
	// Config exposes only the JWT settings.
	Config config.JWTConfig
	// AuthMiddleware is the token check, for modules mounting custom groups.
	AuthMiddleware gin.HandlerFunc
}
