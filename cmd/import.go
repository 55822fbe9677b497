package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [dataset]",
	Short: "Load a section catalog into the database",
	Long: `Replaces the catalog with the sections listed in a comma-separated
dataset (Classes.txt by default). Malformed and duplicate rows are
skipped and logged.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := "Classes.txt"
		if len(args) > 0 {
			name = args[0]
		}

		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("Failed to open dataset: %v", err)
		}
		defer f.Close()

		db := openDatabase()
		defer db.Close()

		result, err := db.ImportCatalog(f)
		if err != nil {
			log.Fatalf("Failed to import catalog: %v", err)
		}
		log.Printf("Imported %d sections (%d skipped, %d duplicates) into %s",
			result.Imported, result.Skipped, result.Duplicates, cfg.DatabaseURL)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
