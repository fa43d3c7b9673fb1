package route

import (
	"time"

	"cafefinder/auth"
	"cafefinder/config"
	"cafefinder/controller"
	"cafefinder/logging"
	"cafefinder/search"
	"cafefinder/store"
	"cafefinder/transfer"
	"cafefinder/utils"
	"cafefinder/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Controllers struct {
	Cafe     *controller.CafeController
	Access   *controller.AccessController
	Transfer *controller.TransferController
}

// CafeRoutes registers the directory API. gate guards the mutating routes;
// nil leaves them open.
func CafeRoutes(router *gin.Engine, ctl Controllers, gate gin.HandlerFunc) {
	if gate == nil {
		gate = func(c *gin.Context) { c.Next() }
	}

	router.GET("/healthz", ctl.Cafe.Health)

	cafeGroup := router.Group("/cafes")
	{
		cafeGroup.GET("", ctl.Cafe.ListCafes)
		cafeGroup.POST("", ctl.Cafe.AddCafe)
		cafeGroup.GET("/:id", ctl.Cafe.GetCafe)
		cafeGroup.PUT("/:id", gate, ctl.Cafe.UpdateCafe)
		cafeGroup.DELETE("/:id", gate, ctl.Cafe.DeleteCafe)
	}

	router.GET("/search", ctl.Cafe.SearchCafes)
	router.GET("/search/:location", ctl.Cafe.SearchCafes)
	router.POST("/access/check", ctl.Access.CheckAccess)

	adminGroup := router.Group("/admin")
	{
		adminGroup.GET("/export", ctl.Transfer.ExportCafes)
		adminGroup.POST("/import", gate, ctl.Transfer.ImportCafes)
	}
}

// NewRouter wires the stores, gate and controllers behind a gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*gin.Engine, error) {
	gate, err := auth.NewGate(cfg.Access)
	if err != nil {
		return nil, err
	}

	cafeStore := store.NewCafeStore(db)
	validator := validation.New()
	ctl := Controllers{
		Cafe:     controller.NewCafeController(cafeStore, search.NewEngine(cafeStore), validator, logger),
		Access:   controller.NewAccessController(gate, logger),
		Transfer: controller.NewTransferController(cafeStore, transfer.NewImporter(validator, cafeStore), logger),
	}

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router := gin.New()
	router.Use(logging.Middleware(logger), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", utils.PasswordHeader, logging.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Location", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var gateMiddleware gin.HandlerFunc
	if cfg.Access.Enforce {
		gateMiddleware = utils.GateMiddleware(gate)
	} else {
		logger.Warn("access gate not enforced: update, delete and import are open to every caller")
	}
	CafeRoutes(router, ctl, gateMiddleware)
	return router, nil
}
