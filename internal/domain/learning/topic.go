package learning

import (
	"strings"
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Rank orders priorities for sorting; lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

func ParsePriority(s string) Priority {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

type Tier string

const (
	TierExplicit Tier = "EXPLICIT"
	TierImplicit Tier = "IMPLICIT"
)

func ParseTier(s string) Tier {
	if Tier(strings.ToUpper(strings.TrimSpace(s))) == TierExplicit {
		return TierExplicit
	}
	return TierImplicit
}

// Topic is produced by topic extraction and is not modified during a single
// path generation run.
type Topic struct {
	Name     string   `json:"name"`
	Priority Priority `json:"priority"`
	Tier     Tier     `json:"tier"`
	Keywords []string `json:"keywords"`
}

type TopicNode struct {
	Topic
	Covered    bool    `json:"covered"`
	Confidence float64 `json:"confidence"`
}

type RoleContext struct {
	RoleType    string `json:"role_type"`
	Seniority   string `json:"seniority"`
	DomainFocus string `json:"domain_focus"`
}

type Stage struct {
	StageNumber int         `json:"stage_number"`
	StageName   string      `json:"stage_name"`
	Topics      []TopicNode `json:"topics"`
}

type DependencyEdge struct {
	FromTopic string `json:"from_topic"`
	ToTopic   string `json:"to_topic"`
	Reason    string `json:"reason"`
}

// NormalizeName lowercases, trims and collapses inner whitespace so topic
// names from different collaborators can be joined.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
