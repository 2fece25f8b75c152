package pathbuild

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
)

type fakeLLM struct {
	raw        string
	err        error
	user       string
	schemaName string
}

func (f *fakeLLM) Embed(context.Context, []string) ([][]float32, error) { return nil, nil }

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, user string, schemaName string, _ *jsonschema.Definition) (json.RawMessage, error) {
	f.user = user
	f.schemaName = schemaName
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.raw), nil
}

func TestLLMDrafter_DecodesDraft(t *testing.T) {
	llm := &fakeLLM{raw: `{"stages":[{"stage_number":1,"stage_name":"Foundations","topics":["Probability"]}],"dependencies":[{"from_topic":"Probability","to_topic":"Backtesting","reason":"stats first"}]}`}
	d := NewLLMDrafter(logger.Nop(), llm)

	draft, err := d.Draft(context.Background(), quantTopics(), learning.RoleContext{RoleType: "quant researcher", Seniority: "junior"})
	require.NoError(t, err)
	require.Len(t, draft.Stages, 1)
	assert.Equal(t, []string{"Probability"}, draft.Stages[0].Topics)
	require.Len(t, draft.Dependencies, 1)
	assert.Equal(t, "stats first", draft.Dependencies[0].Reason)

	assert.Equal(t, "path_draft", llm.schemaName)
	assert.Contains(t, llm.user, `"name":"Backtesting"`)
	assert.Contains(t, llm.user, "seniority=junior")
}

func TestLLMDrafter_MalformedOutputFallsBack(t *testing.T) {
	llm := &fakeLLM{raw: `{"stages": "soon"}`}
	_, err := NewLLMDrafter(logger.Nop(), llm).Draft(context.Background(), quantTopics(), learning.RoleContext{})
	require.Error(t, err)
	assert.Equal(t, openai.KindMalformed, openai.KindOf(err))

	res := New(logger.Nop(), NewLLMDrafter(logger.Nop(), llm)).Build(context.Background(), quantTopics(), learning.RoleContext{})
	assert.True(t, res.Fallback)
	assertEveryTopicOnce(t, res.Stages, quantTopics())
}
