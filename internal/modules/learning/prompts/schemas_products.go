package prompts

import "github.com/sashabaranov/go-openai/jsonschema"

func TopicExtractionSchema() *jsonschema.Definition {
	topic := ObjectSchema(map[string]jsonschema.Definition{
		"name":     StringSchema(),
		"priority": EnumSchema("HIGH", "MEDIUM", "LOW"),
		"tier":     EnumSchema("EXPLICIT", "IMPLICIT"),
		"keywords": StringArraySchema(),
	})
	s := ObjectSchema(map[string]jsonschema.Definition{
		"role_type":    StringSchema(),
		"seniority":    StringSchema(),
		"domain_focus": StringSchema(),
		"topics":       ArraySchema(topic),
	})
	return &s
}

func PathDraftSchema() *jsonschema.Definition {
	stage := ObjectSchema(map[string]jsonschema.Definition{
		"stage_number": IntSchema(),
		"stage_name":   StringSchema(),
		"topics":       StringArraySchema(),
	})
	edge := ObjectSchema(map[string]jsonschema.Definition{
		"from_topic": StringSchema(),
		"to_topic":   StringSchema(),
		"reason":     StringSchema(),
	})
	s := ObjectSchema(map[string]jsonschema.Definition{
		"stages":       ArraySchema(stage),
		"dependencies": ArraySchema(edge),
	})
	return &s
}

func ExplanationSchema() *jsonschema.Definition {
	s := ObjectSchema(map[string]jsonschema.Definition{
		"markdown":   StringSchema(),
		"key_points": StringArraySchema(),
	})
	return &s
}

func TopicStructureSchema() *jsonschema.Definition {
	section := ObjectSchema(map[string]jsonschema.Definition{
		"id":      StringSchema(),
		"title":   StringSchema(),
		"summary": StringSchema(),
	})
	s := ObjectSchema(map[string]jsonschema.Definition{
		"topic":    StringSchema(),
		"overview": StringSchema(),
		"sections": ArraySchema(section),
	})
	return &s
}

func SectionContentSchema() *jsonschema.Definition {
	s := ObjectSchema(map[string]jsonschema.Definition{
		"section_id": StringSchema(),
		"title":      StringSchema(),
		"markdown":   StringSchema(),
		"key_points": StringArraySchema(),
	})
	return &s
}
