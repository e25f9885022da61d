package server

import (
	"net/http"
	"regexp"

	"solardesk/internal/config"
	"solardesk/internal/handlers"
	"solardesk/internal/identity"
	"solardesk/internal/middleware"
	"solardesk/internal/models"
	"solardesk/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var pinRe = regexp.MustCompile(`^[0-9]{6}$`)

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return pinRe.MatchString(fl.Field().String())
		})
	}
}

// NewRouter wires the full HTTP surface: staff endpoints behind cookie
// sessions, the worker surface behind identity-provider JWTs.
func NewRouter(cfg *config.Config, idp *identity.Client, store storage.Provider) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions("solardesk_session", sessionStore))
	r.Use(middleware.InjectUser())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	files := handlers.NewFileHandlers(store)

	api := r.Group("/api")
	{
		api.POST("/auth/login", handlers.Login)
		api.POST("/auth/logout", handlers.Logout)
		api.POST("/worker-auth/login", handlers.WorkerLogin(idp))
	}

	staff := api.Group("", middleware.RequireAuth())
	{
		staff.GET("/auth/me", handlers.Me)

		staff.GET("/firms", handlers.ListFirms)
		staff.GET("/firms/:id", handlers.GetFirm)

		staff.GET("/clients", handlers.ListClients)
		staff.POST("/clients", handlers.CreateClient)
		staff.GET("/clients/:id", handlers.GetClient)
		staff.PATCH("/clients/:id", handlers.UpdateClient)
		staff.DELETE("/clients/:id", handlers.DeleteClient)

		staff.GET("/crews", handlers.ListCrews)
		staff.POST("/crews", handlers.CreateCrew)
		staff.GET("/crews/:id", handlers.GetCrew)
		staff.PATCH("/crews/:id", handlers.UpdateCrew)
		staff.POST("/crews/:id/members", handlers.CreateCrewMember)
		staff.PATCH("/crews/members/:memberId", handlers.UpdateCrewMember)

		staff.GET("/projects", handlers.ListProjects)
		staff.POST("/projects", handlers.CreateProject)
		staff.GET("/projects/export", handlers.ExportProjects)
		staff.GET("/projects/:id", handlers.GetProject)
		staff.PATCH("/projects/:id", handlers.UpdateProject)
		staff.POST("/projects/:id/status", handlers.ChangeProjectStatus)
		staff.GET("/projects/:id/history", handlers.ListProjectHistory)
		staff.POST("/projects/:id/notes", handlers.AddProjectNote)

		staff.POST("/projects/:id/reclamation", handlers.CreateReclamation)
		staff.GET("/projects/:id/reclamations", handlers.ListProjectReclamations)
		staff.GET("/reclamations", handlers.ListFirmReclamations)
		staff.GET("/reclamations/:id", handlers.GetReclamation)
		staff.GET("/reclamations/:id/history", handlers.GetReclamationHistory)
		staff.PATCH("/reclamations/:id", handlers.UpdateReclamation)
		staff.DELETE("/reclamations/:id", handlers.CancelReclamation)

		staff.POST("/projects/:id/files", files.Upload)
		staff.GET("/projects/:id/files", files.List)
		staff.GET("/files/:fileId", files.Download)
		staff.DELETE("/files/:fileId", files.Delete)

		staff.POST("/worker-auth/generate-pin", handlers.GeneratePin)
		staff.POST("/worker-auth/revoke-pin", handlers.RevokePin)
		staff.GET("/worker-auth/member-status/:memberId", handlers.MemberPinStatus)
	}

	// Firm creation and edits are reserved for admins.
	admin := api.Group("", middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/firms", handlers.CreateFirm)
		admin.PATCH("/firms/:id", handlers.UpdateFirm)
	}

	worker := api.Group("/worker", middleware.WorkerAuth(cfg.IdentityJWTSecret))
	{
		worker.GET("/me", handlers.WorkerMe)
		worker.GET("/reclamations", handlers.WorkerListReclamations)
		worker.POST("/reclamations/:id/accept", handlers.WorkerAcceptReclamation())
		worker.POST("/reclamations/:id/start", handlers.WorkerStartReclamation())
		worker.POST("/reclamations/:id/complete", handlers.WorkerCompleteReclamation())
	}

	return r
}
