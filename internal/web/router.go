package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// loadTemplates parses the embedded page templates
func loadTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

// NewRouter builds the gin engine with all routes and middleware
func NewRouter(as *AppState) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(loadTemplates())

	router.Use(cors.Default())
	router.Use(RequestLoggingMiddleware(as))
	router.Use(gin.Recovery())

	router.GET("/health", health(as))
	router.GET("/metrics", gin.WrapH(as.Metrics.Handler()))

	store := cookie.NewStore(as.SessionSecret)
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	pages := router.Group("/")
	pages.Use(sessions.Sessions(as.CookieName, store))
	pages.Use(MaxRequestSizeMiddleware(as.MaxRequestSize))
	{
		pages.GET("/", listUsers(as))
		pages.POST("/add_user", addUser(as))
		pages.POST("/delete_user/:id", deleteUser(as))
		pages.GET("/tutorial", staticPage(as, "tutorial.html", "Tutorial"))
		pages.GET("/practice", staticPage(as, "practice.html", "Practice"))
	}

	return router
}

// RequestLoggingMiddleware logs each request with zap and records request metrics
func RequestLoggingMiddleware(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(startTime)
		status := c.Writer.Status()

		as.Metrics.ObserveRequest(c.Request.Method, route, status, elapsed)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("remote_addr", c.ClientIP()),
		}
		if status >= http.StatusInternalServerError {
			as.Logger.Error("Request failed", fields...)
			return
		}
		as.Logger.Info("Request handled", fields...)
	}
}

// MaxRequestSizeMiddleware caps request bodies at limit bytes; zero disables it
func MaxRequestSizeMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
