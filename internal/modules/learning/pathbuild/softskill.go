package pathbuild

import (
	"strings"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
)

// softSkillPhrases are matched as whole words anywhere in the normalized
// topic.
var softSkillPhrases = []string{
	"leadership",
	"teamwork",
	"team work",
	"cross team",
	"stakeholder management",
	"public speaking",
	"presentation skills",
	"communication skills",
	"verbal communication",
	"written communication",
	"negotiation",
	"mentoring",
	"mentorship",
	"interpersonal",
	"emotional intelligence",
	"people management",
	"conflict resolution",
}

// softSkillNames only count when they are the whole topic. As modifiers they
// name technical work, e.g. "Data Presentation" or "Data Storytelling".
var softSkillNames = map[string]struct{}{
	"communication":  {},
	"communications": {},
	"collaboration":  {},
	"stakeholders":   {},
	"presentation":   {},
	"presentations":  {},
	"storytelling":   {},
}

// IsSoftSkill reports whether a topic is a soft skill. Soft skills never act
// as technical prerequisites.
func IsSoftSkill(topic string) bool {
	norm := learning.NormalizeName(topic)
	if norm == "" {
		return false
	}
	words := strings.Join(strings.Fields(strings.NewReplacer("-", " ", "/", " ", ",", " ").Replace(norm)), " ")
	if _, ok := softSkillNames[words]; ok {
		return true
	}
	padded := " " + words + " "
	for _, term := range softSkillPhrases {
		if strings.Contains(padded, " "+term+" ") {
			return true
		}
	}
	return false
}
