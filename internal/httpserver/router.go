package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"rsvp-households/internal/domain"
	householdrepo "rsvp-households/internal/repository/household"
)

const requestIDHeader = "X-Request-ID"

// HouseholdService is the behaviour the household handlers depend on.
type HouseholdService interface {
	Create(ctx context.Context, people []domain.Person) ([]domain.Person, error)
	Read(ctx context.Context, householdID string) (domain.Household, bool, error)
	Update(ctx context.Context, householdID string, people []domain.Person) ([]domain.Person, error)
}

// Deps groups what the router needs.
type Deps struct {
	Households HouseholdService
	// Store is pinged by /readyz. Nil reports the service as not ready.
	Store          householdrepo.Pinger
	AllowOrigins   []string
	RequestTimeout time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Households == nil {
		return nil, errors.New("httpserver: household service is required")
	}

	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.Recovery())
	if len(deps.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  deps.AllowOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	h := &householdHandler{svc: deps.Households}
	households := router.Group("/households", requestTimeout(deps.RequestTimeout))
	households.POST("", h.create)
	households.GET("/:id", h.read)
	households.PUT("/:id", h.update)

	return router, nil
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = logger.Error()
		case status >= 400:
			evt = logger.Warn()
		default:
			evt = logger.Info()
		}
		evt.Str("request_id", c.GetString(requestIDHeader)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// requestTimeout bounds the context handed to the service. Zero disables it.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
