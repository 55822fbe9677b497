package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cloud.google.com/go/pubsub"
	"github.com/openswoop/coursebuilder/pkg/database"
	"github.com/openswoop/coursebuilder/pkg/grades"
	"github.com/openswoop/coursebuilder/pkg/report"
	"github.com/spf13/cobra"
)

var dryRun bool
var exportName string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the schedule and grade statistics",
	Long: `Writes the current schedule and the statistics of every grade file
to CSV. When a GCP project is configured the statistics are also merged
into BigQuery and an event is published to Pub/Sub.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		db := openDatabase()
		defer db.Close()

		entries, err := db.Entries()
		if err != nil {
			log.Fatalf("Failed to load schedule: %v", err)
		}
		if err := report.WriteSchedule(exportName+"_schedule", entries); err != nil {
			log.Fatalf("Failed to write schedule: %v", err)
		}
		log.Println("Wrote to file", exportName+"_schedule.csv")

		store := openGrades()
		keys, err := store.List(ctx)
		if err != nil {
			log.Fatalf("Failed to list grade files: %v", err)
		}
		var stats []grades.Stats
		for _, key := range keys {
			s, err := grades.Load(ctx, store, key)
			if err != nil {
				log.Println("Warning: skipping grade file", key+":", err)
				continue
			}
			stats = append(stats, s)
		}
		if err := report.WriteGrades(exportName+"_grades", stats); err != nil {
			log.Fatalf("Failed to write grades: %v", err)
		}
		log.Println("Wrote to file", exportName+"_grades.csv")

		if cfg.ProjectID == "" {
			return
		}

		// Connect to BigQuery
		bq, err := database.NewBigQuery(ctx, cfg.ProjectID, cfg.DatasetID)
		if err != nil {
			log.Fatalf("Failed to connect to bigquery: %v", err)
		}
		defer bq.Close()

		// Insert (merge) the grade statistics
		if !dryRun {
			if err := bq.InsertGradeStats(report.GradeRows(stats)); err != nil {
				log.Fatalf("Failed to insert grade stats: %v", err)
			}
		} else {
			fmt.Println("Dry run: data will not be inserted")
		}

		// Connect to PubSub
		client, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to create client: %v", err)
		}
		defer client.Close()

		msg, err := json.Marshal(struct {
			Courses int  `json:"courses"`
			DryRun  bool `json:"dryRun"`
		}{len(stats), dryRun})
		if err != nil {
			log.Fatalf("Failed to create message: %v", err)
		}

		// Publish an event
		topic := client.Topic(cfg.TopicID)
		res := topic.Publish(ctx, &pubsub.Message{Data: msg})
		if _, err := res.Get(ctx); err != nil {
			log.Fatalf("Failed to publish message: %v", err)
		}
		topic.Stop()

		fmt.Println("Done.")
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without modifying BigQuery (default: false)")
	exportCmd.Flags().StringVarP(&exportName, "name", "n", "coursebuilder", "Prefix of the CSV files to write")
}
