package cmd

import (
	"log"
	"net/http"
	"time"

	"github.com/openswoop/coursebuilder/pkg/database"
	"github.com/openswoop/coursebuilder/pkg/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog, schedule, and grades API",
	Run: func(cmd *cobra.Command, args []string) {
		if err := database.Exists(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
			log.Fatalf("Error: %v (run \"coursebuilder import\" first)", err)
		}
		db := openDatabase()
		defer db.Close()

		cache := server.NewCacheService(cfg.CacheTTL, 2*cfg.CacheTTL)
		handler := server.New(server.Options{
			DB:          db,
			Grades:      openGrades(),
			Cache:       cache,
			CORSOrigins: cfg.CORSOrigins,
			Release:     cfg.Environment == "production",
		})

		srv := &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
