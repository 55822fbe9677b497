package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/openswoop/coursebuilder/pkg/grades"
	"github.com/spf13/cobra"
)

var seed int64

// gradesCmd represents the grades command
var gradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "Manage grade distribution files",
}

var gradesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write sample grade files for every lecture offering",
	Run: func(cmd *cobra.Command, args []string) {
		db := openDatabase()
		defer db.Close()

		offerings, err := db.Offerings()
		if err != nil {
			log.Fatalf("Failed to list offerings: %v", err)
		}

		rng := rand.New(rand.NewSource(seed))
		keys, err := grades.Generate(context.Background(), openGrades(), rng, offerings)
		if err != nil {
			log.Fatalf("Failed to generate grades: %v", err)
		}
		log.Printf("Generated %d grade files", len(keys))
	},
}

var gradesStatsCmd = &cobra.Command{
	Use:   "stats [course]",
	Short: "Print the grade distribution of a course offering",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := grades.Load(context.Background(), openGrades(), args[0])
		if err != nil {
			log.Fatalf("Failed to load grades for %s: %v", args[0], err)
		}
		for _, c := range stats.Counts {
			fmt.Printf("%-3s %d\n", c.Grade, c.Count)
		}
		fmt.Printf("Total: %d\nAverage GPA: %.2f (%s)\n", stats.Total, stats.AverageGPA, stats.AverageGrade)
	},
}

func init() {
	rootCmd.AddCommand(gradesCmd)
	gradesCmd.AddCommand(gradesGenerateCmd, gradesStatsCmd)

	gradesGenerateCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed")
}
