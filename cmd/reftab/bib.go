package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/pdf"
	"github.com/spf13/cobra"
)

var bibAddPDFApply bool

func init() {
	bibAddPDFCmd.Flags().BoolVar(&bibAddPDFApply, "apply", false, "Append the draft entry (default is preview)")
	bibCmd.AddCommand(bibGetCmd)
	bibCmd.AddCommand(bibAddPDFCmd)
	rootCmd.AddCommand(bibCmd)
}

var bibCmd = &cobra.Command{
	Use:   "bib",
	Short: "Inspect and extend the bibliography",
}

var bibGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a single bibliography entry",
	Long: `Print one entry from bibliography.json, including any fields the
curation jobs do not read.

Example:
  reftab bib get sobe_2025`,
	Args: cobra.ExactArgs(1),
	RunE: runBibGet,
}

func runBibGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	store := mustLoadBibliography(cfg, repoRoot)

	id := args[0]
	entry, ok := store.FindByID(id)
	if !ok {
		exitWithError(ExitError, "entry not found: %s", id)
	}

	if humanOutput {
		printEntryDetail(entry)
	} else {
		outputJSON(entry)
	}
	return nil
}

func printEntryDetail(e *bib.Entry) {
	fmt.Printf("ID: %s\n", e.ID)
	if e.Type != "" {
		fmt.Printf("Type: %s\n", e.Type)
	}
	if e.Title != "" {
		fmt.Printf("Title: %s\n", e.Title)
	}
	if len(e.Authors) > 0 {
		var names []string
		for _, a := range e.Authors {
			names = append(names, a.String())
		}
		fmt.Printf("Authors: %s\n", strings.Join(names, "; "))
	}
	if e.ContainerTitle != "" {
		fmt.Printf("Container: %s\n", e.ContainerTitle)
	}
	if year := e.Issued.Year(); year != 0 {
		fmt.Printf("Year: %d\n", year)
	}
	if e.Volume != "" {
		fmt.Printf("Volume: %s\n", e.Volume)
	}
	if e.Page != "" {
		fmt.Printf("Pages: %s\n", e.Page)
	}
	if e.DOI != "" {
		fmt.Printf("DOI: %s\n", e.DOI)
	}
	if e.URL != "" {
		fmt.Printf("URL: %s\n", e.URL)
	}
}

var bibAddPDFCmd = &cobra.Command{
	Use:   "add-pdf <pdf-path>",
	Short: "Draft a bibliography entry from a local PDF",
	Long: `Extract a DOI (and a best-effort title) from a PDF file and draft a
bibliography entry from them. The draft gets type article-journal and
an ID derived from the DOI suffix; fill in the remaining fields by
hand.

Preview by default; --apply appends the draft to bibliography.json.
PDFs whose DOI is already in the bibliography are refused.`,
	Args: cobra.ExactArgs(1),
	RunE: runBibAddPDF,
}

// BibAddResult is the JSON output for the add-pdf command.
type BibAddResult struct {
	Action string     `json:"action"` // added, preview
	Entry  *bib.Entry `json:"entry"`
}

func runBibAddPDF(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(args[0])
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		exitWithError(ExitError, "PDF not found: %s", absPath)
	}

	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	store := mustLoadBibliography(cfg, repoRoot)

	meta, err := pdf.Extract(absPath)
	if err != nil {
		exitWithError(ExitDataError, "reading PDF: %v", err)
	}
	if meta.DOI == "" {
		exitWithError(ExitDataError, "no DOI found in %s", absPath)
	}

	if existingID, ok := bib.NewIndex(store.References).LookupDOI(meta.DOI); ok {
		exitWithError(ExitDataError, "DOI %s already in bibliography as %s", meta.DOI, existingID)
	}

	draft := bib.Entry{
		ID:    deriveDraftID(store.IDSet(), meta.DOI),
		Type:  "article-journal",
		Title: meta.Title,
		DOI:   meta.DOI,
	}

	action := "preview"
	if bibAddPDFApply {
		store.References = append(store.References, draft)
		if err := store.Save(cfg.BibliographyPath(repoRoot)); err != nil {
			exitWithError(ExitError, "saving bibliography: %v", err)
		}
		action = "added"
	}

	if humanOutput {
		fmt.Printf("%s: %s\n", capitalizeFirst(action), draft.ID)
		fmt.Printf("  DOI: %s\n", draft.DOI)
		if draft.Title != "" {
			fmt.Printf("  Title: %s\n", draft.Title)
		}
		if !bibAddPDFApply {
			fmt.Println("\nRun with --apply to append the draft")
		}
	} else {
		outputJSON(BibAddResult{Action: action, Entry: &draft})
	}
	return nil
}

// deriveDraftID builds an entry ID from the DOI's suffix (the part
// after the registrant slash), lowercased, with dots turned into
// underscores and other punctuation dropped. Collisions get a numeric
// suffix.
func deriveDraftID(existing map[string]bool, doi string) string {
	suffix := doi
	if i := strings.LastIndex(doi, "/"); i >= 0 {
		suffix = doi[i+1:]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(suffix) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == '.':
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" {
		id = "pdf_import"
	}

	if !existing[id] {
		return id
	}
	// Start at 2: id is taken, so the first collision becomes id-2
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", id, i)
		if !existing[candidate] {
			return candidate
		}
	}
}
