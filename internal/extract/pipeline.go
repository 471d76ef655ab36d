package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/unit"
)

// MaxEdgesPerArticle caps how many edges one article may contribute. A
// single piece rarely makes more than a couple of genuine comparisons;
// more usually means the model is reaching.
const MaxEdgesPerArticle = 3

// Pipeline accumulates new units and edges across a scraper run:
// extraction, validation, unit resolution, and dedup against both the
// existing dataset and earlier articles in the same run.
type Pipeline struct {
	extractor Extractor
	catalogue []unit.Unit
	resolver  *Resolver

	dedupKeys  map[edge.Key]bool
	maxEdgeNum int
	newEdges   []edge.Edge

	// FilterBothNew rejects edges where both endpoints were created this
	// run. Useful once the catalogue is large; off by default.
	FilterBothNew bool
}

// NewPipeline creates a pipeline over the current dataset.
func NewPipeline(units []unit.Unit, edges []edge.Edge, extractor Extractor) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		catalogue:  units,
		resolver:   NewResolver(units),
		dedupKeys:  edge.KeySet(edges),
		maxEdgeNum: edge.MaxIDNum(edges),
	}
}

// ProcessArticle extracts comparisons from one article's text and folds
// the surviving ones into the run's accumulated edges. Returns how many
// edges the article added.
func (p *Pipeline) ProcessArticle(ctx context.Context, articleURL, text string) (int, error) {
	comparisons, err := p.extractor.Extract(ctx, text, p.resolver.AllKnownUnits(p.catalogue))
	if err != nil {
		return 0, fmt.Errorf("extracting from %s: %w", articleURL, err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	added := 0
	for _, comp := range comparisons {
		if added >= MaxEdgesPerArticle {
			break
		}
		if !comp.Valid() {
			continue
		}

		fromID := p.resolver.Resolve(comp.From)
		toID := p.resolver.Resolve(comp.To)
		if fromID == "" || toID == "" || fromID == toID {
			continue
		}
		if p.FilterBothNew && p.resolver.IsNewUnit(fromID) && p.resolver.IsNewUnit(toID) {
			continue
		}

		key := edge.Key{From: fromID, To: toID, Factor: comp.Factor, SourceURL: articleURL}
		if p.dedupKeys[key] {
			continue
		}
		p.dedupKeys[key] = true

		p.maxEdgeNum++
		p.newEdges = append(p.newEdges, edge.Edge{
			ID:          edge.FormatID(p.maxEdgeNum),
			From:        fromID,
			To:          toID,
			Factor:      comp.Factor,
			SourceURL:   articleURL,
			SourceQuote: comp.SourceQuote,
			DateScraped: today,
			Verified:    false,
		})
		added++
	}
	return added, nil
}

// NewEdges returns the edges accumulated so far, in discovery order.
func (p *Pipeline) NewEdges() []edge.Edge {
	return p.newEdges
}

// NewUnits returns the units created so far, in creation order.
func (p *Pipeline) NewUnits() []unit.Unit {
	return p.resolver.NewUnits()
}
