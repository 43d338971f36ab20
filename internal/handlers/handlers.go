package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"workshops/internal/config"
	"workshops/internal/middleware"
	"workshops/internal/models"
	"workshops/internal/security"
	"workshops/internal/service"
)

// Services are the use cases the HTTP layer routes to.
type Services struct {
	Auth      *service.AuthService
	Accounts  *service.AccountService
	Workshops *service.WorkshopService
	Reviews   *service.ReviewService
	Favorites *service.FavoriteService
	Uploads   *service.UploadService
}

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HandlerSet struct {
	log    zerolog.Logger
	cfg    *config.AppConfig
	tokens *security.TokenIssuer
	svc    Services
	checks []HealthCheck
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, tokens *security.TokenIssuer, svc Services, checks ...HealthCheck) HandlerSet {
	return HandlerSet{
		log:    log,
		cfg:    cfg,
		tokens: tokens,
		svc:    svc,
		checks: checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	authed := middleware.Auth(h.tokens)
	admin := middleware.RequireRoles(models.RoleAdmin)
	// Favorites and reviews belong to rows in users, so admin subjects are refused.
	member := middleware.RequireRoles(models.RoleUser)

	router.GET("/healthz", h.Health)
	router.GET("/uploads/:filename", h.ServeUpload)

	router.POST("/auth/login", h.Login)

	register := router.Group("/register")
	{
		register.POST("/request", h.RegisterRequest)
		register.POST("/login", h.UserLogin)
		register.POST("/forgot-password", h.ForgotPassword)
		register.POST("/reset-password", h.ResetPassword)

		moderation := register.Group("", authed, admin)
		moderation.POST("", h.RegisterAdmin)
		moderation.GET("/pending", h.ListPending)
		moderation.PATCH("/approve/:id", h.Approve)
		moderation.PATCH("/deny/:id", h.Deny)
	}

	users := router.Group("/users", authed)
	{
		users.GET("/me", h.Me)
		users.PATCH("/me/avatar", h.UpdateAvatar)
		users.DELETE("/me", h.DeleteMe)
		users.GET("/approved", admin, h.ListApproved)
		users.DELETE("/:id", admin, h.DeleteUser)
	}

	workshops := router.Group("/workshops")
	{
		workshops.GET("", h.ListWorkshops)
		workshops.GET("/top-rated", h.TopRated)
		workshops.GET("/newest", h.Newest)
		workshops.GET("/:id", h.GetWorkshop)
		workshops.POST("", authed, admin, h.CreateWorkshop)
		workshops.PUT("/:id", authed, admin, h.UpdateWorkshop)
		workshops.DELETE("/:id", authed, admin, h.DeleteWorkshop)
	}

	favorites := router.Group("/favorites", authed, member)
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("", h.RemoveFavorite)
	}

	// The workshop id and the review id share the :id segment.
	reviews := router.Group("/reviews")
	{
		reviews.GET("/:id", h.ListReviews)
		reviews.GET("/:id/user", authed, member, h.MyReview)
		reviews.POST("", authed, member, h.SaveReview)
		reviews.POST("/:id/respond", authed, admin, h.RespondToReview)
	}

	files := router.Group("/files", authed)
	{
		files.POST("", admin, h.UploadStoredFile)
		files.GET("/:id", h.GetStoredFile)
	}
}
