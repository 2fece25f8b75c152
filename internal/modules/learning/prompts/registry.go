package prompts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai/jsonschema"
)

type Template struct {
	Name       PromptName
	Version    int
	SchemaName string
	Schema     func() *jsonschema.Definition
	System     func(Input) string
	User       func(Input) string
	Validate   Validator
}

// Prompt is a rendered template ready for openai.GenerateJSON.
type Prompt struct {
	Name       string
	Version    int
	SchemaName string
	Schema     *jsonschema.Definition
	System     string
	User       string
}

var (
	registryMu   sync.RWMutex
	registry     = map[PromptName]Template{}
	registerOnce sync.Once
)

func Register(t Template) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.Name] = t
}

func lookup(name PromptName) (Template, bool) {
	registerOnce.Do(RegisterAll)
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

func Build(name PromptName, in Input) (Prompt, error) {
	t, ok := lookup(name)
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.System == nil || t.User == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system/user renderers", string(name))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
		}
	}
	return Prompt{
		Name:       string(t.Name),
		Version:    t.Version,
		SchemaName: strings.TrimSpace(t.SchemaName),
		Schema:     t.Schema(),
		System:     t.System(in),
		User:       t.User(in),
	}, nil
}
