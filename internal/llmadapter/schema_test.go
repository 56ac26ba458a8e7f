package llmadapter

import (
	"testing"

	"github.com/windlgrass/om1agent/pkg/models"
)

func TestBuildFunctionSchemasTypeMapping(t *testing.T) {
	actions := []models.AgentAction{
		{LLMLabel: "move", Interface: models.ActionInterface{Doc: "move forward", Kind: models.KindFloat}},
		{LLMLabel: "count", Interface: models.ActionInterface{Doc: "count", Kind: models.KindInteger}},
		{LLMLabel: "emotion", Interface: models.ActionInterface{Doc: "emote", Kind: models.KindEnum, Enum: []string{"happy", "sad"}}},
		{LLMLabel: "blink", Interface: models.ActionInterface{Doc: "blink", Kind: models.KindBool}},
		{LLMLabel: "waypoints", Interface: models.ActionInterface{Doc: "waypoints", Kind: models.KindList, ElementKind: models.KindString}},
		{LLMLabel: "hidden", ExcludeFromPrompt: true, Interface: models.ActionInterface{Doc: "never shown", Kind: models.KindString}},
	}

	schemas := BuildFunctionSchemas(actions)
	if len(schemas) != 5 {
		t.Fatalf("expected excluded action to be omitted, got %d schemas", len(schemas))
	}

	byName := map[string]ToolSchema{}
	for _, s := range schemas {
		byName[s.Name] = s
	}

	if byName["move"].Parameter.Type != "number" {
		t.Errorf("expected float -> number, got %s", byName["move"].Parameter.Type)
	}
	if byName["count"].Parameter.Type != "integer" {
		t.Errorf("expected integer -> integer, got %s", byName["count"].Parameter.Type)
	}
	if byName["emotion"].Parameter.Type != "string" || len(byName["emotion"].Parameter.Enum) != 2 {
		t.Errorf("expected enum -> string with enum values, got %+v", byName["emotion"].Parameter)
	}
	if byName["blink"].Parameter.Type != "boolean" {
		t.Errorf("expected bool -> boolean, got %s", byName["blink"].Parameter.Type)
	}
	if byName["waypoints"].Parameter.Type != "array" || byName["waypoints"].Parameter.Items == nil {
		t.Errorf("expected list -> array of items, got %+v", byName["waypoints"].Parameter)
	}
	if _, ok := byName["hidden"]; ok {
		t.Error("expected excluded action to not appear in schemas")
	}
}
