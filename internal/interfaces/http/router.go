// Package http wires the console's REST surface: role CRUD, the permission
// catalog, and the stateless matrix computations.
package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"clarion/internal/domain/catalog"
	"clarion/internal/interfaces/http/handlers"
	"clarion/internal/interfaces/http/middleware"
	"clarion/internal/shared/config"
	"clarion/internal/shared/logger"
	"clarion/internal/shared/services/markdown"
)

// Router owns the gin engine and handler wiring.
type Router struct {
	engine         *gin.Engine
	roleHandler    *handlers.RoleHandler
	matrixHandler  *handlers.MatrixHandler
	catalogHandler *handlers.CatalogHandler
}

func NewRouter(
	cfg *config.ServerConfig,
	cat *catalog.Catalog,
	roleService handlers.RoleService,
	matrixService handlers.MatrixService,
	log logger.Interface,
) *Router {
	registerValidations()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(log.Named("http")))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	md := markdown.NewService()

	r := &Router{
		engine:         engine,
		roleHandler:    handlers.NewRoleHandler(roleService, matrixService, md, log),
		matrixHandler:  handlers.NewMatrixHandler(roleService, matrixService, log),
		catalogHandler: handlers.NewCatalogHandler(cat),
	}
	r.registerRoutes()
	return r
}

// registerValidations installs custom binding validations on gin's
// underlying validator.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("permcategory", func(fl validator.FieldLevel) bool {
			return catalog.Category(fl.Field().String()).Valid()
		})
	}
}

func (r *Router) registerRoutes() {
	api := r.engine.Group("/api")

	api.GET("/catalog", r.catalogHandler.GetCatalog)

	roles := api.Group("/roles")
	{
		roles.GET("", r.roleHandler.ListRoles)
		roles.POST("", r.roleHandler.CreateRole)
		roles.GET("/check-name", r.roleHandler.CheckName)
		roles.GET("/:id", r.roleHandler.GetRole)
		roles.PUT("/:id", r.roleHandler.UpdateRole)
		roles.DELETE("/:id", r.roleHandler.DeleteRole)
		roles.POST("/:id/duplicate", r.roleHandler.DuplicateRole)
		roles.GET("/:id/matrix", r.matrixHandler.GetRoleMatrix)
	}

	mx := api.Group("/matrix")
	{
		mx.POST("/preview", r.matrixHandler.PreviewMatrix)
		mx.POST("/toggle", r.matrixHandler.ToggleNode)
		mx.POST("/selection", r.matrixHandler.NodeSelection)
	}
}

// Engine exposes the gin engine for the server runner and tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
