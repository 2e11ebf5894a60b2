package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pgstay/api/internal/business/listing"
	"github.com/pgstay/api/internal/business/query"
	"github.com/pgstay/api/internal/business/session"
	"github.com/pgstay/api/internal/platform/media"
	"github.com/pgstay/api/pkg/model"
)

// Listings is the listing service used by the handlers.
type Listings interface {
	Browse(ctx context.Context, state *query.State) (query.Result, error)
	Get(ctx context.Context, id string) (model.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
	Delete(ctx context.Context, user session.User, id string) error
	Submit(ctx context.Context, owner session.User, d listing.Draft, photos []listing.File, proof *listing.File) (model.Listing, error)
	RefreshStats(ctx context.Context) (model.CatalogStats, error)
	Stats(ctx context.Context) (model.CatalogStats, error)
	CacheStats() query.CacheStats
}

// Sessions resolves bearer tokens and stores role choices.
type Sessions interface {
	Resolve(ctx context.Context, token string) (session.User, error)
	SetRole(ctx context.Context, user session.User, role model.Role) (session.User, error)
}

// SignOuter revokes a user's tokens at the identity provider.
type SignOuter interface {
	SignOut(ctx context.Context, uid string) error
}

// Deps groups the collaborators of the router.
type Deps struct {
	Listings       Listings
	Sessions       Sessions
	SignOut        SignOuter
	Registry       *session.Registry
	Logger         *slog.Logger
	AllowedOrigins string
}

// Router wires HTTP handlers.
type Router struct {
	listings Listings
	sessions Sessions
	signOut  SignOuter
	registry *session.Registry
	logger   *slog.Logger
	origins  string
}

// maxUploadMemory is held in memory while parsing a submission; the rest spills to disk.
const maxUploadMemory = 32 << 20

func NewRouter(deps Deps) *gin.Engine {
	r := &Router{
		listings: deps.Listings,
		sessions: deps.Sessions,
		signOut:  deps.SignOut,
		registry: deps.Registry,
		logger:   deps.Logger,
		origins:  deps.AllowedOrigins,
	}
	if r.registry == nil {
		r.registry = session.NewRegistry()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	router := gin.New()
	router.MaxMultipartMemory = maxUploadMemory
	router.Use(requestLogger(r.logger), gin.Recovery(), r.corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/stats", r.getStats)
		api.GET("/filters", r.getFilterOptions)
	}

	authed := api.Group("", r.requireUser())
	{
		authed.GET("/listings", r.browseListings)
		authed.GET("/listings/:id", r.getListing)
		authed.GET("/me", r.getMe)
		authed.PUT("/me/role", r.setRole)
		authed.POST("/logout", r.logout)

		owner := authed.Group("", requireOwner())
		owner.POST("/listings", r.submitListing)
		owner.DELETE("/listings/:id", r.deleteListing)
		owner.GET("/owner/listings", r.ownerListings)
		owner.POST("/stats/refresh", r.refreshStats)
	}

	return router
}

// corsMiddleware echoes the request origin only when it is on the allow-list
// (or the list holds "*"). Other origins get no Allow-Origin header.
func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		c.Header("Vary", "Origin")
		origin := c.GetHeader("Origin")
		if origin != "" {
			for _, o := range trimmed {
				if o == "*" || o == origin {
					c.Header("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+traceHeader)
		c.Header("Access-Control-Expose-Headers", traceHeader)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

// fail maps service errors onto HTTP statuses.
func (r *Router) fail(c *gin.Context, err error) {
	var verr *listing.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing", "step": verr.Step, "fields": verr.Fields})
	case errors.Is(err, session.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
	case errors.Is(err, listing.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, listing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, media.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, media.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	default:
		loggerFrom(c).Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
	_ = c.Error(err)
}
