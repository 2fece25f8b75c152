package services

import (
	"context"
	"sync"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/content"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/pathbuild"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/topics"
	"github.com/yungbote/quantpath-backend/internal/realtime"
)

type fakeExtractor struct {
	out *topics.Extraction
	err error
}

func (f *fakeExtractor) Extract(context.Context, string) (*topics.Extraction, error) {
	return f.out, f.err
}

// fakeClassifier covers topics listed in scores at the given confidence.
type fakeClassifier struct {
	mu     sync.Mutex
	scores map[string]float64
	chunks map[string][]string
	calls  []string
}

func (f *fakeClassifier) Check(_ context.Context, topic string, _ []string, _ float64) learning.CoverageResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, topic)
	score, ok := f.scores[learning.NormalizeName(topic)]
	if !ok || score < 0.58 {
		return learning.CoverageResult{Topic: topic, Confidence: score, Sources: []learning.SourceMatch{}}
	}
	return learning.CoverageResult{
		Topic:      topic,
		Covered:    true,
		Confidence: score,
		MatchedVia: learning.MatchedViaTopic,
		Sources: []learning.SourceMatch{{
			SourceName: "ESL",
			Confidence: score,
			ChunkCount: len(f.chunks[learning.NormalizeName(topic)]),
			Chunks:     f.chunks[learning.NormalizeName(topic)],
		}},
	}
}

func (f *fakeClassifier) CheckAll(ctx context.Context, ts []learning.Topic, threshold float64) []learning.CoverageResult {
	out := make([]learning.CoverageResult, 0, len(ts))
	for _, t := range ts {
		out = append(out, f.Check(ctx, t.Name, t.Keywords, threshold))
	}
	return out
}

func (f *fakeClassifier) Threshold() float64 { return 0.58 }

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeDrafter struct {
	draft *pathbuild.Draft
	err   error
}

func (f *fakeDrafter) Draft(context.Context, []learning.TopicNode, learning.RoleContext) (*pathbuild.Draft, error) {
	return f.draft, f.err
}

type recordingBus struct {
	mu     sync.Mutex
	events []realtime.Event
	err    error
}

func (b *recordingBus) Publish(_ context.Context, evt realtime.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
	return b.err
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) types() []realtime.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]realtime.EventType, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeGenerator struct {
	mu          sync.Mutex
	err         error
	calls       int
	lastExcerpt []string
}

func (g *fakeGenerator) record(excerpts []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastExcerpt = excerpts
	return g.err
}

func (g *fakeGenerator) Explanation(_ context.Context, req content.ExplanationRequest) (content.Explanation, error) {
	if err := g.record(req.Excerpts); err != nil {
		return content.Explanation{}, err
	}
	return content.Explanation{Markdown: req.Topic + " " + req.Difficulty, KeyPoints: []string{"k"}}, nil
}

func (g *fakeGenerator) TopicStructure(_ context.Context, req content.StructureRequest) (content.TopicStructure, error) {
	if err := g.record(req.Excerpts); err != nil {
		return content.TopicStructure{}, err
	}
	return content.TopicStructure{Topic: req.Topic, Overview: "o", Sections: []content.Section{{ID: "a", Title: "A"}}}, nil
}

func (g *fakeGenerator) SectionContent(_ context.Context, req content.SectionRequest) (content.SectionContent, error) {
	if err := g.record(req.Excerpts); err != nil {
		return content.SectionContent{}, err
	}
	return content.SectionContent{SectionID: req.SectionID, Title: req.SectionTitle, Markdown: "body"}, nil
}
