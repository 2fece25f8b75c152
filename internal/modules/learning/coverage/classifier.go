package coverage

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/keys"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/search"
	"github.com/yungbote/quantpath-backend/internal/observability"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

const (
	DefaultThreshold = 0.58
	DefaultTopK      = 50

	// KeywordMargin widens the threshold for the keyword fallback: a best
	// topic score below threshold+KeywordMargin triggers keyword searches.
	KeywordMargin       = 0.05
	MaxFallbackKeywords = 3
	MaxChunksPerSource  = 5
	fingerprintLen      = 100
)

type Config struct {
	Threshold   float64
	TopK        int
	Namespaces  []string
	Concurrency int
}

type Classifier interface {
	// Check never fails: search errors count as zero matches. A threshold
	// <= 0 selects the configured default.
	Check(ctx context.Context, topic string, keywords []string, threshold float64) learning.CoverageResult
	// CheckAll returns one result per topic in input order.
	CheckAll(ctx context.Context, topics []learning.Topic, threshold float64) []learning.CoverageResult
	Threshold() float64
}

type classifier struct {
	log      *logger.Logger
	searcher search.Searcher
	table    *FallbackTable
	cfg      Config
}

func New(log *logger.Logger, searcher search.Searcher, table *FallbackTable, cfg Config) Classifier {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &classifier{
		log:      log.With("service", "CoverageClassifier"),
		searcher: searcher,
		table:    table,
		cfg:      cfg,
	}
}

func (c *classifier) Threshold() float64 { return c.cfg.Threshold }

func (c *classifier) Check(ctx context.Context, topic string, keywords []string, threshold float64) learning.CoverageResult {
	start := time.Now()
	if threshold <= 0 {
		threshold = c.cfg.Threshold
	}
	topic = strings.TrimSpace(topic)
	ctx, span := observability.StartSpan(ctx, "coverage.check", attribute.String("topic", topic))
	defer span.End()

	res := c.classify(ctx, topic, keywords, threshold)

	span.SetAttributes(
		attribute.Bool("covered", res.Covered),
		attribute.Float64("confidence", res.Confidence),
		attribute.String("matched_via", string(res.MatchedVia)),
	)
	observability.Current().ObserveCoverage(res.Covered, string(res.MatchedVia), time.Since(start))
	return res
}

func (c *classifier) classify(ctx context.Context, topic string, keywords []string, threshold float64) learning.CoverageResult {
	if topic == "" {
		return learning.CoverageResult{Topic: topic, Sources: []learning.SourceMatch{}}
	}

	matches := c.search(ctx, topic)
	topicBest := bestScore(matches)

	if topicBest < threshold+KeywordMargin {
		for _, kw := range fallbackKeywords(keywords, topic) {
			matches = append(matches, c.search(ctx, kw)...)
		}
	}
	matches = dedupe(matches)

	sources := groupSources(matches, threshold)
	if len(sources) == 0 {
		return learning.CoverageResult{
			Topic:             topic,
			Covered:           false,
			Confidence:        bestScore(matches),
			Sources:           []learning.SourceMatch{},
			FallbackResources: c.table.Lookup(topic),
		}
	}

	via := learning.MatchedViaKeyword
	if topicBest >= threshold {
		via = learning.MatchedViaTopic
	}
	return learning.CoverageResult{
		Topic:      topic,
		Covered:    true,
		Confidence: sources[0].Confidence,
		Sources:    sources,
		MatchedVia: via,
	}
}

func (c *classifier) search(ctx context.Context, query string) []search.Match {
	matches, err := c.searcher.Search(ctx, query, c.cfg.TopK, c.cfg.Namespaces)
	if err != nil {
		c.log.Warn("coverage search failed; treating as no matches", "query", query, "error", err)
		return nil
	}
	return matches
}

func (c *classifier) CheckAll(ctx context.Context, topics []learning.Topic, threshold float64) []learning.CoverageResult {
	out := make([]learning.CoverageResult, len(topics))
	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)
	for i := range topics {
		g.Go(func() error {
			out[i] = c.Check(ctx, topics[i].Name, topics[i].Keywords, threshold)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// fallbackKeywords returns up to MaxFallbackKeywords distinct keywords that
// differ from the topic itself.
func fallbackKeywords(keywords []string, topic string) []string {
	topicNorm := keys.Normalize(topic)
	seen := map[string]bool{topicNorm: true}
	out := make([]string, 0, MaxFallbackKeywords)
	for _, kw := range keywords {
		norm := keys.Normalize(kw)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, strings.TrimSpace(kw))
		if len(out) == MaxFallbackKeywords {
			break
		}
	}
	return out
}

// dedupe keeps the highest scoring match per text fingerprint. Matches with
// no text are keyed by id.
func dedupe(matches []search.Match) []search.Match {
	idx := map[string]int{}
	out := make([]search.Match, 0, len(matches))
	for _, m := range matches {
		fp := keys.Fingerprint(m.Text, fingerprintLen)
		if fp == "" {
			fp = "id:" + m.Namespace + ":" + m.ID
		}
		if i, ok := idx[fp]; ok {
			if m.Score > out[i].Score {
				out[i] = m
			}
			continue
		}
		idx[fp] = len(out)
		out = append(out, m)
	}
	return out
}

type sourceAgg struct {
	name   string
	best   float64
	isWeb  bool
	chunks []search.Match
}

// groupSources returns the sources whose best match reaches threshold, best
// first, each with its qualifying chunks.
func groupSources(matches []search.Match, threshold float64) []learning.SourceMatch {
	aggs := map[string]*sourceAgg{}
	var order []string
	for _, m := range matches {
		a, ok := aggs[m.Source]
		if !ok {
			a = &sourceAgg{name: m.Source}
			aggs[m.Source] = a
			order = append(order, m.Source)
		}
		if m.Score > a.best {
			a.best = m.Score
		}
		if m.IsWeb {
			a.isWeb = true
		}
		if m.Score >= threshold {
			a.chunks = append(a.chunks, m)
		}
	}

	out := make([]learning.SourceMatch, 0, len(order))
	for _, name := range order {
		a := aggs[name]
		if a.best < threshold {
			continue
		}
		sort.SliceStable(a.chunks, func(i, j int) bool { return a.chunks[i].Score > a.chunks[j].Score })
		texts := make([]string, 0, MaxChunksPerSource)
		for _, ch := range a.chunks {
			if len(texts) == MaxChunksPerSource {
				break
			}
			if strings.TrimSpace(ch.Text) != "" {
				texts = append(texts, ch.Text)
			}
		}
		out = append(out, learning.SourceMatch{
			SourceName: a.name,
			Confidence: a.best,
			ChunkCount: len(a.chunks),
			IsWeb:      a.isWeb,
			Chunks:     texts,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].SourceName < out[j].SourceName
	})
	return out
}

func bestScore(matches []search.Match) float64 {
	best := 0.0
	for _, m := range matches {
		if m.Score > best {
			best = m.Score
		}
	}
	return best
}
