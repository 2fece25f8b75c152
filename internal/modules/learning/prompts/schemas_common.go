package prompts

import (
	"sort"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Strict json_schema mode requires every property listed as required and
// additionalProperties=false on every object.

func ObjectSchema(props map[string]jsonschema.Definition) jsonschema.Definition {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	sort.Strings(required)
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

func StringSchema() jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String}
}

func IntSchema() jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Integer}
}

func EnumSchema(values ...string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Enum: values}
}

func ArraySchema(items jsonschema.Definition) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Array, Items: &items}
}

func StringArraySchema() jsonschema.Definition {
	return ArraySchema(StringSchema())
}
