// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sme-sp/bens-fisicos-backend/internal/config"
	"github.com/sme-sp/bens-fisicos-backend/internal/handlers"
	"github.com/sme-sp/bens-fisicos-backend/internal/middleware"
	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

// Services is the wired service layer for one process.
type Services struct {
	Auth          *services.AuthService
	Unidades      *services.UnidadeService
	Bens          *services.BemPatrimonialService
	Extracao      *services.ExtracaoService
	Movimentacoes *services.MovimentacaoService
	Documentos    *services.DocumentoService
}

// NewServices builds the service graph over st.
func NewServices(st store.Store, cfg *config.Config, mailer services.Mailer, storage services.DocumentStorage) *Services {
	notificationService := services.NewNotificationService(st, mailer, cfg.Frontend.BaseURL)
	documentoService := services.NewDocumentoService(st, storage, services.NewCIMBPMRenderer())

	return &Services{
		Auth:          services.NewAuthService(st, cfg),
		Unidades:      services.NewUnidadeService(st),
		Bens:          services.NewBemPatrimonialService(st, notificationService),
		Extracao:      services.NewExtracaoService(st),
		Movimentacoes: services.NewMovimentacaoService(st, services.NewCIMBPMService(), documentoService, notificationService),
		Documentos:    documentoService,
	}
}

func Initialize(st store.Store, cfg *config.Config, svc *Services) *gin.Engine {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Auth)
	unidadeHandler := handlers.NewUnidadeHandler(svc.Unidades)
	bemHandler := handlers.NewBemHandler(svc.Bens)
	extracaoHandler := handlers.NewExtracaoHandler(svc.Extracao)
	movimentacaoHandler := handlers.NewMovimentacaoHandler(svc.Movimentacoes)
	documentoHandler := handlers.NewDocumentoHandler(svc.Documentos)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(st))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	requireAuth := middleware.AuthRequired(svc.Auth)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}
		v1.GET("/auth/me", requireAuth, authHandler.GetProfile)

		// Unidades administrativas
		unidades := v1.Group("/unidades")
		unidades.Use(requireAuth)
		{
			unidades.GET("", unidadeHandler.List)
			unidades.GET("/:id", unidadeHandler.Get)

			gestor := unidades.Group("")
			gestor.Use(middleware.GestorRequired())
			{
				gestor.POST("", unidadeHandler.Create)
				gestor.PUT("/:id", unidadeHandler.Update)
				gestor.POST("/:id/inativar", unidadeHandler.Inativar)
				gestor.POST("/:id/ativar", unidadeHandler.Ativar)
			}
		}

		// Bens patrimoniais
		bens := v1.Group("/bens")
		bens.Use(requireAuth)
		{
			bens.GET("", bemHandler.List)
			bens.POST("", bemHandler.Create)
			bens.GET("/campos", bemHandler.CamposCadastro)
			bens.GET("/extracao/simular", middleware.BulkRateLimit(), extracaoHandler.Simular)
			bens.POST("/extracao/aplicar", middleware.BulkRateLimit(), middleware.GestorRequired(), extracaoHandler.Aplicar)
			bens.GET("/:id", bemHandler.Get)
			bens.PUT("/:id", bemHandler.Update)
			bens.GET("/:id/historico", bemHandler.Historico)
			bens.GET("/:id/campos", bemHandler.Campos)
			bens.POST("/:id/aprovar", middleware.GestorRequired(), bemHandler.Aprovar)
			bens.POST("/:id/reprovar", middleware.GestorRequired(), bemHandler.Reprovar)
		}

		// Movimentações
		movimentacoes := v1.Group("/movimentacoes")
		movimentacoes.Use(requireAuth)
		{
			movimentacoes.GET("", movimentacaoHandler.List)
			movimentacoes.POST("", movimentacaoHandler.Create)
			movimentacoes.GET("/:id", movimentacaoHandler.Get)
			movimentacoes.POST("/:id/aprovar", movimentacaoHandler.Aprovar)
			movimentacoes.POST("/:id/rejeitar", movimentacaoHandler.Rejeitar)
			movimentacoes.POST("/:id/cancelar", movimentacaoHandler.Cancelar)

			acoes := movimentacoes.Group("/acoes")
			acoes.Use(middleware.BulkRateLimit())
			{
				acoes.POST("/aprovar", movimentacaoHandler.AprovarLote)
				acoes.POST("/rejeitar", movimentacaoHandler.RejeitarLote)
				acoes.POST("/cancelar", movimentacaoHandler.CancelarLote)
			}
		}

		v1.GET("/documento-cimbpm/:id/download/", requireAuth, documentoHandler.Download)
	}

	return r
}
