package plugins

import "github.com/windlgrass/om1agent/pkg/models"

// BuiltinInterfaces maps each built-in connector's config type name to the
// ActionInterface the LLM sees for it — the single scalar argument's kind,
// its docstring, and (for enums) its permitted values. Config carries only
// {name, llm_label, connector, config}; the interface itself is fixed per
// connector, the same way original_source's action classes each hard-code
// one LLMQueryType rather than reading it from YAML.
var BuiltinInterfaces = map[string]models.ActionInterface{
	"arm": {
		Name: "arm",
		Doc:  "command the robot arm to a named pose",
		Kind: models.KindEnum,
		Enum: []string{"wave", "point", "retract", "grasp", "release"},
	},
	"navigate": {
		Name: "navigate",
		Doc:  "drive to a raw navigation goal string understood by the robot base",
		Kind: models.KindString,
	},
	"navigate_location": {
		Name: "navigate_location",
		Doc:  "drive to a previously remembered named location",
		Kind: models.KindString,
	},
	"remember_location": {
		Name: "remember_location",
		Doc:  "remember the robot's current position under a name",
		Kind: models.KindString,
	},
	"led": {
		Name: "led",
		Doc:  "set the status LED color",
		Kind: models.KindEnum,
		Enum: []string{"red", "green", "blue", "yellow", "white", "off"},
	},
	"emergency_alert": {
		Name: "emergency_alert",
		Doc:  "raise a critical incident alert with a short description",
		Kind: models.KindString,
	},
	"speak": {
		Name: "speak",
		Doc:  "say something out loud through the robot's speaker",
		Kind: models.KindString,
	},
	"tweet": {
		Name: "tweet",
		Doc:  "post a tweet",
		Kind: models.KindString,
	},
	"telegram": {
		Name: "telegram",
		Doc:  "send a message to the configured Telegram chat",
		Kind: models.KindString,
	},
	"greeting_conversation": {
		Name: "greeting_conversation",
		Doc:  "report the current state of an in-progress greeting conversation",
		Kind: models.KindEnum,
		Enum: []string{"engaging", "conversing", "concluding", "finished"},
	},
}
