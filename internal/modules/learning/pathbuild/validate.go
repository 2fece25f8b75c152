package pathbuild

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
)

// Reasons a drafted edge is dropped.
const (
	DropUnknownTopic = "unknown_topic"
	DropNotForward   = "not_forward"
	DropSoftSkill    = "soft_skill"
	DropDuplicate    = "duplicate"
)

// ValidationReport counts what repair and validation discarded. It is
// diagnostic only.
type ValidationReport struct {
	DraftStages       int            `json:"draft_stages"`
	DraftEdges        int            `json:"draft_edges"`
	AcceptedEdges     int            `json:"accepted_edges"`
	DroppedEdges      map[string]int `json:"dropped_edges"`
	UnknownStageNames int            `json:"unknown_stage_names"`
	UnplacedTopics    int            `json:"unplaced_topics"`
}

func newReport() ValidationReport {
	return ValidationReport{DroppedEdges: map[string]int{}}
}

func (r *ValidationReport) drop(reason string) {
	r.DroppedEdges[reason]++
}

// TotalDropped sums dropped edges across reasons.
func (r ValidationReport) TotalDropped() int {
	n := 0
	for _, v := range r.DroppedEdges {
		n += v
	}
	return n
}

// orderByPriority returns the distinct topics sorted HIGH, MEDIUM, LOW with
// input order kept inside a priority.
func orderByPriority(topics []learning.TopicNode) []learning.TopicNode {
	out := make([]learning.TopicNode, 0, len(topics))
	seen := map[string]bool{}
	for _, t := range topics {
		key := learning.NormalizeName(t.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		t.Name = strings.TrimSpace(t.Name)
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

// repairStages turns drafted stages into stages over the known topics. Every
// known topic ends up in exactly one stage. It returns nil when no drafted
// stage keeps a known topic.
func repairStages(draft []DraftStage, ordered []learning.TopicNode, report *ValidationReport) []learning.Stage {
	index := make(map[string]int, len(ordered))
	for i, t := range ordered {
		index[learning.NormalizeName(t.Name)] = i
	}

	sorted := append([]DraftStage(nil), draft...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StageNumber < sorted[j].StageNumber })

	placed := make([]bool, len(ordered))
	var stages []learning.Stage
	for _, ds := range sorted {
		var nodes []learning.TopicNode
		for _, name := range ds.Topics {
			i, ok := index[learning.NormalizeName(name)]
			if !ok {
				report.UnknownStageNames++
				continue
			}
			if placed[i] {
				continue
			}
			placed[i] = true
			nodes = append(nodes, ordered[i])
		}
		if len(nodes) == 0 {
			continue
		}
		stages = append(stages, learning.Stage{StageName: strings.TrimSpace(ds.StageName), Topics: nodes})
	}
	if len(stages) == 0 {
		return nil
	}

	last := &stages[len(stages)-1]
	for i, t := range ordered {
		if !placed[i] {
			report.UnplacedTopics++
			last.Topics = append(last.Topics, t)
		}
	}

	for i := range stages {
		stages[i].StageNumber = i + 1
		if stages[i].StageName == "" {
			stages[i].StageName = fmt.Sprintf("Stage %d", i+1)
		}
		nodes := stages[i].Topics
		sort.SliceStable(nodes, func(a, b int) bool {
			return nodes[a].Priority.Rank() < nodes[b].Priority.Rank()
		})
	}
	return stages
}

// validateEdges keeps only strict forward edges between placed topics whose
// source is not a soft skill. Names are rewritten to the placed spelling.
func validateEdges(edges []learning.DependencyEdge, stages []learning.Stage, report *ValidationReport) []learning.DependencyEdge {
	stageOf := map[string]int{}
	canonical := map[string]string{}
	for _, s := range stages {
		for _, t := range s.Topics {
			key := learning.NormalizeName(t.Name)
			stageOf[key] = s.StageNumber
			canonical[key] = t.Name
		}
	}

	out := make([]learning.DependencyEdge, 0, len(edges))
	seen := map[[2]string]bool{}
	for _, e := range edges {
		from := learning.NormalizeName(e.FromTopic)
		to := learning.NormalizeName(e.ToTopic)
		fromStage, okFrom := stageOf[from]
		toStage, okTo := stageOf[to]
		switch {
		case !okFrom || !okTo:
			report.drop(DropUnknownTopic)
			continue
		case fromStage >= toStage:
			report.drop(DropNotForward)
			continue
		case IsSoftSkill(canonical[from]):
			report.drop(DropSoftSkill)
			continue
		}
		pair := [2]string{from, to}
		if seen[pair] {
			report.drop(DropDuplicate)
			continue
		}
		seen[pair] = true
		out = append(out, learning.DependencyEdge{
			FromTopic: canonical[from],
			ToTopic:   canonical[to],
			Reason:    strings.TrimSpace(e.Reason),
		})
	}
	report.AcceptedEdges = len(out)
	return out
}
