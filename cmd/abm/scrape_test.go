package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anythingbutmetric/abm/internal/extract"
	"github.com/anythingbutmetric/abm/internal/feed"
	"github.com/anythingbutmetric/abm/internal/fetch"
	"github.com/anythingbutmetric/abm/internal/unit"
)

const scrapeFeedSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Metric Watch</title>
<item>
<title>Whale surfaces off the coast</title>
<link>https://news.test/whale</link>
<description>The whale was as long as three double-decker buses.</description>
</item>
<item>
<title>New bus fleet announced</title>
<link>https://news.test/bus</link>
<description>The new fleet is twice the size of the old one.</description>
</item>
</channel>
</rss>`

func TestCollectFeedEntries_SkipsKnownSourceURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(scrapeFeedSample))
	}))
	defer srv.Close()

	known := map[string]bool{"https://news.test/whale": true}
	entries := collectFeedEntries(t.Context(), []string{srv.URL}, known)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (already ingested article skipped)", len(entries))
	}
	if entries[0].Link != "https://news.test/bus" {
		t.Errorf("Link = %q, want the unseen article", entries[0].Link)
	}
	if entries[0].Summary == "" {
		t.Error("entry summary was dropped on the way to the article loop")
	}
}

func TestCollectFeedEntries_DirectArticleURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>just an article, not a feed</body></html>"))
	}))
	defer srv.Close()

	entries := collectFeedEntries(t.Context(), []string{srv.URL}, nil)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want the non-feed URL as a direct article", len(entries))
	}
	if entries[0].Link != srv.URL {
		t.Errorf("Link = %q, want %q", entries[0].Link, srv.URL)
	}

	entries = collectFeedEntries(t.Context(), []string{srv.URL}, map[string]bool{srv.URL: true})
	if len(entries) != 0 {
		t.Fatalf("got %d entries for an already ingested direct URL, want 0", len(entries))
	}
}

type stubExtractor struct {
	comparisons []extract.Comparison
}

func (s stubExtractor) Extract(_ context.Context, _ string, _ []unit.Unit) ([]extract.Comparison, error) {
	return s.comparisons, nil
}

func TestScrapeArticles_FeedSummaryFallback(t *testing.T) {
	// Every fetch fails, direct and Jina alike; only the feed summary
	// can carry the article.
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer down.Close()

	catalogue := []unit.Unit{
		{ID: "blue_whale", Label: "Blue Whale"},
		{ID: "double_decker_bus", Label: "Double-Decker Bus"},
	}
	stub := stubExtractor{comparisons: []extract.Comparison{{
		From:        extract.UnitRef{ID: "blue_whale"},
		To:          extract.UnitRef{ID: "double_decker_bus"},
		Factor:      3,
		SourceQuote: "the whale is three times the length of a double-decker bus",
	}}}
	pipeline := extract.NewPipeline(catalogue, nil, stub)

	client := fetch.NewClient(fetch.WithRateLimit(1000), fetch.WithJinaBaseURL(down.URL+"/"))
	entries := []feed.Entry{
		{Link: down.URL + "/whale-story", Summary: "A blue whale is three times the length of a double-decker bus."},
		{Link: down.URL + "/no-summary"},
	}

	processed := scrapeArticles(t.Context(), pipeline, client, entries)
	if processed != 1 {
		t.Fatalf("processed %d articles, want 1 (only the entry with a summary)", processed)
	}
	edges := pipeline.NewEdges()
	if len(edges) != 1 {
		t.Fatalf("got %d new edges, want 1", len(edges))
	}
	if want := down.URL + "/whale-story"; edges[0].SourceURL != want {
		t.Errorf("SourceURL = %q, want %q", edges[0].SourceURL, want)
	}
}
