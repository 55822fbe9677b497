package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/openswoop/coursebuilder/pkg/scrape"
	"github.com/spf13/cobra"
)

var fetchOut string
var fetchImport bool

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Download a published section listing",
	Long: `Downloads a section listing, either the plain dataset or an HTML
table with one section per row, and writes it in dataset form. With
--import the listing is loaded into the database as well.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := scrape.FetchCatalog(c, args[0])
		if err != nil {
			log.Fatalf("Failed to fetch catalog: %v", err)
		}
		if data == "" {
			log.Fatalf("No sections found at %s", args[0])
		}

		if err := os.WriteFile(fetchOut, []byte(data), 0o644); err != nil {
			log.Fatalf("Failed to write dataset: %v", err)
		}
		log.Println("Wrote to file", fetchOut)

		if !fetchImport {
			return
		}
		db := openDatabase()
		defer db.Close()
		result, err := db.ImportCatalog(strings.NewReader(data))
		if err != nil {
			log.Fatalf("Failed to import catalog: %v", err)
		}
		log.Printf("Imported %d sections (%d skipped, %d duplicates)",
			result.Imported, result.Skipped, result.Duplicates)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "Classes.txt", "Dataset file to write")
	fetchCmd.Flags().BoolVar(&fetchImport, "import", false, "Import the listing after downloading (default: false)")
}
