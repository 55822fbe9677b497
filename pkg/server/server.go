package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openswoop/coursebuilder/pkg/database"
	"github.com/openswoop/coursebuilder/pkg/grades"
	"github.com/openswoop/coursebuilder/pkg/schedule"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type Options struct {
	DB          database.Database
	Grades      grades.Store
	Cache       *CacheService
	CORSOrigins []string
	Release     bool
}

// New builds the HTTP API. The returned handler already has CORS applied.
func New(opts Options) http.Handler {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Cache == nil {
		opts.Cache = NewCacheService(10*time.Minute, 20*time.Minute)
	}

	h := &Handlers{
		db:       opts.DB,
		schedule: schedule.NewService(opts.DB),
		grades:   opts.Grades,
		cache:    opts.Cache,
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"time":   time.Now(),
			})
		})

		// Catalog
		api.GET("/courses", h.GetCourses)
		api.GET("/courses/search", h.SearchCourses)
		api.POST("/catalog/import", h.ImportCatalog)

		// Schedule
		api.GET("/schedule", h.GetSchedule)
		api.POST("/schedule", h.AddSection)
		api.POST("/schedule/children", h.AddChildren)
		api.POST("/schedule/remove/:id", h.RemoveSection)
		api.GET("/schedule/export", h.ExportSchedule)
		api.GET("/calendar", h.GetCalendar)

		// Grades
		api.GET("/grades", h.ListGrades)
		api.GET("/grades/:course", h.GetGrades)
		api.POST("/grades", h.PostGrades)

		api.POST("/cache/invalidate", h.InvalidateCache)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}
