// Package feed parses RSS and Atom feeds and the feeds.txt source list.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultMaxAge is how old an entry may be before the scraper skips it.
// A fresh daily run only needs a little over a day of history; 0 disables
// the filter (useful when backfilling a newly added feed).
const DefaultMaxAge = 26 * time.Hour

// Entry is one article reference from a feed.
type Entry struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time // Zero when the feed carries no usable date
}

// Feed is a parsed RSS or Atom document.
type Feed struct {
	Title   string
	Entries []Entry
}

// rssDoc covers RSS 2.0 and the fields we need from RSS 1.0.
type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// atomDoc covers Atom 1.0.
type atomDoc struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title string `xml:"title"`
	Links []struct {
		Rel  string `xml:"rel,attr"`
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Summary string `xml:"summary"`
	Content string `xml:"content"`
	Updated string `xml:"updated"`
	Publish string `xml:"published"`
}

// ErrNotAFeed is returned when a document parses as neither RSS nor Atom.
// Callers treat the URL as a direct article link instead.
var ErrNotAFeed = fmt.Errorf("document is not an RSS or Atom feed")

// Parse parses an RSS or Atom document.
func Parse(data []byte) (*Feed, error) {
	var rss rssDoc
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		f := &Feed{Title: rss.Channel.Title}
		for _, item := range rss.Channel.Items {
			f.Entries = append(f.Entries, Entry{
				Title:     strings.TrimSpace(item.Title),
				Link:      strings.TrimSpace(item.Link),
				Summary:   item.Description,
				Published: parseDate(item.PubDate),
			})
		}
		return f, nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		f := &Feed{Title: atom.Title}
		for _, entry := range atom.Entries {
			e := Entry{
				Title:   strings.TrimSpace(entry.Title),
				Link:    atomLink(entry),
				Summary: entry.Summary,
			}
			if e.Summary == "" {
				e.Summary = entry.Content
			}
			date := entry.Publish
			if date == "" {
				date = entry.Updated
			}
			e.Published = parseDate(date)
			f.Entries = append(f.Entries, e)
		}
		return f, nil
	}

	return nil, ErrNotAFeed
}

// Fetch downloads and parses a feed URL. A nil client falls back to a
// default with a sane timeout.
func Fetch(ctx context.Context, client *http.Client, url string) (*Feed, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("User-Agent", "AnythingButMetric-Scraper/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed %s: %w", url, err)
	}
	return Parse(data)
}

// atomLink picks the alternate (or first) link of an Atom entry.
func atomLink(e atomEntry) string {
	for _, l := range e.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(e.Links) > 0 {
		return strings.TrimSpace(e.Links[0].Href)
	}
	return ""
}

// dateLayouts are the timestamp formats seen across real news feeds.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IsRecent reports whether an entry is younger than maxAge. Entries with
// no parseable date pass: an article we cannot date is never silently
// dropped. maxAge 0 disables the filter.
func (e Entry) IsRecent(now time.Time, maxAge time.Duration) bool {
	if maxAge == 0 || e.Published.IsZero() {
		return true
	}
	return now.Sub(e.Published) <= maxAge
}

// ReadSourceList reads a feeds.txt file: one URL per line, blank lines
// and #-comments ignored.
func ReadSourceList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feeds file: %w", err)
	}

	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, nil
}
