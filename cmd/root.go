package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/gocolly/colly/v2"
	"github.com/openswoop/coursebuilder/pkg/config"
	"github.com/openswoop/coursebuilder/pkg/database"
	"github.com/openswoop/coursebuilder/pkg/grades"
	"github.com/spf13/cobra"
)

var c *colly.Collector
var cfg *config.Config

var cacheDir = "/coursebuilder/web-cache"
var noCache bool
var dbFile, dbDriver string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coursebuilder",
	Short: "A course catalog and weekly schedule builder",
	Long: `Loads a university section catalog and serves an API for searching it,
building a conflict-free weekly schedule, and browsing grade distributions.
Schedules and grade statistics can be exported as CSV or sent to BigQuery.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initColly)

	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Bypass the web cache (default: false)")
	rootCmd.PersistentFlags().StringVar(&dbFile, "db", "", "Catalog database file or DSN (default: $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver, sqlite3 or postgres (default: $DATABASE_DRIVER)")
}

func initConfig() {
	cfg = config.Load()
	if dbFile != "" {
		cfg.DatabaseURL = dbFile
	}
	if dbDriver != "" {
		cfg.DatabaseDriver = dbDriver
	}
}

func initColly() {
	c = colly.NewCollector()
	c.AllowURLRevisit = true
	if !noCache {
		userCacheDir, _ := os.UserCacheDir()
		c.CacheDir = userCacheDir + cacheDir
	}
}

func openDatabase() *database.Store {
	store, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return store
}

// openGrades uses the MinIO bucket when one is configured and the local
// grades directory otherwise.
func openGrades() grades.Store {
	if cfg.GradesBucket == "" {
		return grades.NewDirStore(cfg.GradesDir)
	}
	store, err := grades.NewMinIOStore(grades.MinIOConfig{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.GradesBucket,
		UseSSL:    cfg.MinIOUseSSL,
		Prefix:    cfg.GradesPrefix,
	})
	if err != nil {
		log.Fatalf("Failed to initialize MinIO grade store: %v", err)
	}
	return store
}
