package llmadapter

import "github.com/windlgrass/om1agent/pkg/models"

// BuildFunctionSchemas derives one ToolSchema per registered AgentAction
// whose ExcludeFromPrompt is false (spec §4.5). Name is the action's
// LLMLabel, Description is the interface docstring, and the single
// parameter is extracted from the input type per the fixed mapping:
// string->string, integer->integer, float->number, bool->boolean,
// enum->string with an enum constraint, list[T]->array of T. There is no
// optional[T] wrapper type in this corpus's ActionInterface, so every
// field is required; Nullable is always false here and kept on
// ToolParameter only so a future optional field has somewhere to go.
func BuildFunctionSchemas(actions []models.AgentAction) []ToolSchema {
	schemas := make([]ToolSchema, 0, len(actions))
	for _, a := range actions {
		if a.ExcludeFromPrompt {
			continue
		}
		schemas = append(schemas, ToolSchema{
			Name:        a.LLMLabel,
			Description: a.Interface.Doc,
			Parameter:   buildParameter("value", a.Interface),
		})
	}
	return schemas
}

func buildParameter(name string, ai models.ActionInterface) ToolParameter {
	switch ai.Kind {
	case models.KindString:
		return ToolParameter{Name: name, Type: "string", Description: ai.Doc}
	case models.KindInteger:
		return ToolParameter{Name: name, Type: "integer", Description: ai.Doc}
	case models.KindFloat:
		return ToolParameter{Name: name, Type: "number", Description: ai.Doc}
	case models.KindBool:
		return ToolParameter{Name: name, Type: "boolean", Description: ai.Doc}
	case models.KindEnum:
		return ToolParameter{Name: name, Type: "string", Description: ai.Doc, Enum: ai.Enum}
	case models.KindList:
		elem := buildParameter(name, models.ActionInterface{Kind: ai.ElementKind, Doc: ai.Doc})
		return ToolParameter{Name: name, Type: "array", Description: ai.Doc, Items: &elem}
	default:
		// Everything else (free text, unrecognized kinds) stringifies,
		// matching spec §4.5: "everything else -> string".
		return ToolParameter{Name: name, Type: "string", Description: ai.Doc}
	}
}
