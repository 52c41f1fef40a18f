package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/brainemulation/reftab/internal/config"
	"github.com/brainemulation/reftab/internal/storage"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search bibliography entries by keyword",
	Long: `Search the cached bibliography by keyword.

Query Syntax:
  Plain text     - Searches title and authors
  author:name    - Search author names only
  title:text     - Search title only

Examples:
  reftab search "connectomics"
  reftab search "author:Januszewski"
  reftab search "title:plasticity"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	if _, err := os.Stat(config.DBPath(repoRoot)); os.IsNotExist(err) {
		exitWithError(ExitConfigError, "Query cache not found\n\nRun 'reftab rebuild' to create it.")
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	query := args[0]
	var refs []storage.Reference
	var err error

	// Check for field-specific searches
	if strings.HasPrefix(query, "author:") {
		refs, err = db.SearchField("author", strings.TrimPrefix(query, "author:"), searchLimit)
	} else if strings.HasPrefix(query, "title:") {
		refs, err = db.SearchField("title", strings.TrimPrefix(query, "title:"), searchLimit)
	} else {
		refs, err = db.Search(query, searchLimit)
	}

	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	if refs == nil {
		refs = []storage.Reference{}
	}

	if humanOutput {
		if len(refs) == 0 {
			fmt.Println("No entries found")
		} else {
			fmt.Printf("Found %d entries:\n\n", len(refs))
			for i, ref := range refs {
				printRefSummary(i+1, ref)
			}
		}
	} else {
		outputJSON(refs)
	}

	return nil
}

func printRefSummary(num int, ref storage.Reference) {
	fmt.Printf("[%d] %s\n", num, ref.ID)
	fmt.Printf("    %s\n", truncateString(ref.Title, SummaryTitleLen))

	// Format authors
	if len(ref.Authors) > 0 {
		var authorNames []string
		for i, a := range ref.Authors {
			if i >= 3 {
				authorNames = append(authorNames, "et al.")
				break
			}
			switch {
			case a.Literal != "":
				authorNames = append(authorNames, a.Literal)
			case a.Given != "":
				authorNames = append(authorNames, a.Family+" "+string(a.Given[0]))
			default:
				authorNames = append(authorNames, a.Family)
			}
		}
		fmt.Printf("    %s\n", strings.Join(authorNames, ", "))
	}

	// Format venue and year
	if ref.ContainerTitle != "" {
		fmt.Printf("    %s (%d)\n", ref.ContainerTitle, ref.Year)
	} else {
		fmt.Printf("    (%d)\n", ref.Year)
	}
	fmt.Printf("    used in %d rows\n", ref.UsageCount)
	fmt.Println()
}
