package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anythingbutmetric/abm/internal/config"
	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/extract"
	"github.com/anythingbutmetric/abm/internal/feed"
	"github.com/anythingbutmetric/abm/internal/fetch"
	"github.com/anythingbutmetric/abm/internal/storage"
	"github.com/anythingbutmetric/abm/internal/unit"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	scrapeURLs          []string
	scrapeTextFile      string
	scrapePDFFile       string
	scrapeDumpTextTo    string
	scrapeMaxFeeds      int
	scrapeMaxEntries    int
	scrapeMaxAgeHours   int
	scrapeFilterBothNew bool
	scrapeDryRun        bool
)

func init() {
	scrapeCmd.Flags().StringArrayVar(&scrapeURLs, "url", nil, "Scrape a single article URL (repeatable; skips the feed list)")
	scrapeCmd.Flags().StringVar(&scrapeTextFile, "text", "", "Extract from a local text file instead of fetching")
	scrapeCmd.Flags().StringVar(&scrapePDFFile, "pdf", "", "Extract from a local PDF file instead of fetching")
	scrapeCmd.Flags().StringVar(&scrapeDumpTextTo, "dump-text-to", "", "Directory to write fetched article text into, for debugging extraction")
	scrapeCmd.Flags().IntVar(&scrapeMaxFeeds, "max-feeds", 0, "Limit how many feeds to read (0 = all)")
	scrapeCmd.Flags().IntVar(&scrapeMaxEntries, "max-entries", 10, "Limit how many entries to take per feed")
	scrapeCmd.Flags().IntVar(&scrapeMaxAgeHours, "max-age-hours", 26, "Skip feed entries older than this (0 = no age filter)")
	scrapeCmd.Flags().BoolVar(&scrapeFilterBothNew, "filter-both-new", false, "Drop edges where both units are new this run")
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "Extract and report but do not write anything")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape news feeds for new comparisons",
	Long: `Fetch recent articles from the configured RSS/Atom feeds, run LLM
extraction over any that contain comparison language, and fold the
surviving comparisons into the dataset as unverified edges.

Requires a Groq API key via GROQ_API_KEY, a .env file in the working
directory, or the global config.

Prints NEW_EDGES=<n> on stdout so automation (e.g. a scheduled CI job)
can decide whether there is anything to commit.

Examples:
  abm scrape
  abm scrape --url https://example.com/whale-story
  abm scrape --text article.txt --dump-text-to /tmp/abm
  abm scrape --max-feeds 2 --max-entries 5 --filter-both-new`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	// Optional; real deployments set GROQ_API_KEY in the environment
	godotenv.Load()

	repoRoot := mustFindRepository()

	apiKey := config.GetGroqAPIKey()
	if apiKey == "" {
		exitWithError(ExitConfigError, "no Groq API key: set GROQ_API_KEY or groq_api_key in %s", config.GlobalConfigPath())
	}

	unitsPath := config.UnitsPath(repoRoot)
	edgesPath := config.EdgesPath(repoRoot)
	units, err := storage.ReadUnits(unitsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading units: %v", err)
	}
	edges, err := storage.ReadEdges(edgesPath)
	if err != nil {
		exitWithError(ExitDataError, "reading edges: %v", err)
	}

	extractor := extract.NewLLMExtractor(apiKey, config.GetGroqBaseURL(), config.GetExtractModel())
	pipeline := extract.NewPipeline(units, edges, extractor)
	pipeline.FilterBothNew = scrapeFilterBothNew

	ctx := cmd.Context()
	client := fetch.NewClient()
	articlesSeen := 0
	switch {
	case scrapeTextFile != "":
		articlesSeen = scrapeLocalFile(ctx, pipeline, scrapeTextFile, false)
	case scrapePDFFile != "":
		articlesSeen = scrapeLocalFile(ctx, pipeline, scrapePDFFile, true)
	case len(scrapeURLs) > 0:
		entries := make([]feed.Entry, len(scrapeURLs))
		for i, u := range scrapeURLs {
			entries[i] = feed.Entry{Link: u}
		}
		articlesSeen = scrapeArticles(ctx, pipeline, client, entries)
	default:
		urls, err := feed.ReadSourceList(config.FeedsPath(repoRoot))
		if err != nil {
			exitWithError(ExitConfigError, "reading feed list: %v", err)
		}
		if len(urls) == 0 {
			exitWithError(ExitConfigError, "no feeds configured in %s", config.FeedsPath(repoRoot))
		}
		entries := collectFeedEntries(ctx, urls, edge.SourceURLSet(edges))
		articlesSeen = scrapeArticles(ctx, pipeline, client, entries)
	}

	newEdges := pipeline.NewEdges()
	newUnits := pipeline.NewUnits()

	if !scrapeDryRun && (len(newEdges) > 0 || len(newUnits) > 0) {
		if err := storage.WriteUnits(unitsPath, append(units, newUnits...)); err != nil {
			exitWithError(ExitDataError, "writing units: %v", err)
		}
		if err := storage.WriteEdges(edgesPath, append(edges, newEdges...)); err != nil {
			exitWithError(ExitDataError, "writing edges: %v", err)
		}
		db := mustOpenDatabase(repoRoot)
		defer db.Close()
		if _, err := db.RebuildUnitsFromJSON(unitsPath); err != nil {
			exitWithError(ExitDataError, "updating index: %v", err)
		}
		if _, err := db.RebuildEdgesFromJSON(edgesPath); err != nil {
			exitWithError(ExitDataError, "updating index: %v", err)
		}
	}

	if humanOutput {
		fmt.Fprintf(os.Stderr, "Processed %d article(s): %d new edge(s), %d new unit(s)\n",
			articlesSeen, len(newEdges), len(newUnits))
		for _, e := range newEdges {
			fmt.Fprintf(os.Stderr, "  %s: %s -> %s ×%g (%s)\n", e.ID, e.From, e.To, e.Factor, e.SourceURL)
		}
	} else {
		outputJSON(ScrapeResult{
			Articles: articlesSeen,
			NewEdges: newEdges,
			NewUnits: newUnits,
			DryRun:   scrapeDryRun,
		})
	}

	// Stable marker for automation regardless of output mode
	fmt.Printf("NEW_EDGES=%d\n", len(newEdges))
	return nil
}

// ScrapeResult is the response for the scrape command.
type ScrapeResult struct {
	Articles int         `json:"articles"`
	NewEdges []edge.Edge `json:"new_edges"`
	NewUnits []unit.Unit `json:"new_units"`
	DryRun   bool        `json:"dry_run"`
}

// collectFeedEntries fetches each feed and gathers recent entries,
// honoring the feed and entry limits. Entries whose link already appears
// as a source_url in the dataset are skipped before any article fetch; a
// daily run should not pay the fetch and extraction cost for articles it
// ingested yesterday. A source list line that is not a feed at all is
// treated as a direct article URL.
func collectFeedEntries(ctx context.Context, feedURLs []string, knownURLs map[string]bool) []feed.Entry {
	if scrapeMaxFeeds > 0 && len(feedURLs) > scrapeMaxFeeds {
		feedURLs = feedURLs[:scrapeMaxFeeds]
	}

	maxAge := time.Duration(scrapeMaxAgeHours) * time.Hour
	now := time.Now()

	var entries []feed.Entry
	seen := make(map[string]bool)
	for _, u := range feedURLs {
		f, err := feed.Fetch(ctx, nil, u)
		if errors.Is(err, feed.ErrNotAFeed) {
			if !seen[u] && !knownURLs[u] {
				seen[u] = true
				entries = append(entries, feed.Entry{Link: u})
			}
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping feed %s: %v\n", u, err)
			continue
		}
		taken := 0
		for _, entry := range f.Entries {
			if scrapeMaxEntries > 0 && taken >= scrapeMaxEntries {
				break
			}
			if entry.Link == "" || seen[entry.Link] || knownURLs[entry.Link] || !entry.IsRecent(now, maxAge) {
				continue
			}
			seen[entry.Link] = true
			entries = append(entries, entry)
			taken++
		}
	}
	return entries
}

// scrapeArticles fetches and processes each article. When the article
// itself cannot be fetched, the feed entry's summary stands in as a last
// resort; it is often enough to carry the comparison. Returns how many
// articles were actually run through extraction.
func scrapeArticles(ctx context.Context, pipeline *extract.Pipeline, client *fetch.Client, entries []feed.Entry) int {
	processed := 0
	for _, entry := range entries {
		text, err := client.ArticleText(ctx, entry.Link)
		if err != nil {
			if entry.Summary == "" {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", entry.Link, err)
				continue
			}
			fmt.Fprintf(os.Stderr, "%s: using feed summary: %v\n", entry.Link, err)
			text = entry.Summary
		}
		dumpArticleText(entry.Link, text)
		if !extract.HasComparisonPhrase(text) {
			continue
		}
		added, err := pipeline.ProcessArticle(ctx, entry.Link, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", entry.Link, err)
			continue
		}
		processed++
		if added > 0 {
			fmt.Fprintf(os.Stderr, "%s: %d edge(s)\n", entry.Link, added)
		}
	}
	return processed
}

// scrapeLocalFile runs extraction over a local text or PDF file. The
// file path doubles as the source URL of any resulting edges.
func scrapeLocalFile(ctx context.Context, pipeline *extract.Pipeline, path string, isPDF bool) int {
	var text string
	var err error
	if isPDF {
		text, err = fetch.PDFText(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	dumpArticleText(path, text)
	if _, err := pipeline.ProcessArticle(ctx, path, text); err != nil {
		exitWithError(ExitError, "extracting from %s: %v", path, err)
	}
	return 1
}

// dumpArticleText writes fetched text to the --dump-text-to directory
// for offline inspection of what the extractor saw.
func dumpArticleText(source, text string) {
	if scrapeDumpTextTo == "" {
		return
	}
	if err := os.MkdirAll(scrapeDumpTextTo, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "dump dir: %v\n", err)
		return
	}
	name := unit.Slugify(source)
	if len(name) > 100 {
		name = name[:100]
	}
	path := filepath.Join(scrapeDumpTextTo, name+".txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "dumping %s: %v\n", source, err)
	}
}
