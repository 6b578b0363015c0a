package catalog

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jask/cutscenes/internal/token"
)

func builtins() []token.TypeSpec {
	black, _ := colorful.Hex("#000000")
	amber, _ := colorful.Hex("#ff8800")
	return []token.TypeSpec{
		{Tag: "wait", Label: "Wait", Fields: []token.FieldDef{
			{Name: "seconds", Kind: token.KindFloat, Default: 1.0},
		}},
		{Tag: "dialogue", Label: "Dialogue", Fields: []token.FieldDef{
			{Name: "speaker", Kind: token.KindReference},
			{Name: "line", Kind: token.KindText},
			{Name: "voice", Kind: token.KindString, AllowEmpty: true},
			{Name: "mood", Kind: token.KindChoice, Options: []string{"neutral", "happy", "angry", "sad"}},
		}},
		{Tag: "play_animation", Label: "Play Animation", Produces: true, Fields: []token.FieldDef{
			{Name: "target", Kind: token.KindReference},
			{Name: "animation", Kind: token.KindString},
			{Name: "loop", Kind: token.KindBool},
			{Name: "done", Kind: token.KindFuture, Nullable: true},
		}},
		{Tag: "move_to", Label: "Move To", Produces: true, Fields: []token.FieldDef{
			{Name: "target", Kind: token.KindReference},
			{Name: "position", Kind: token.KindVector2},
			{Name: "speed", Kind: token.KindFloat, Default: 4.0},
			{Name: "done", Kind: token.KindFuture, Nullable: true},
		}},
		{Tag: "set_flag", Label: "Set Flag", Fields: []token.FieldDef{
			{Name: "flag", Kind: token.KindString},
			{Name: "value", Kind: token.KindBool, Default: true},
		}},
		{Tag: "fade", Label: "Fade", Fields: []token.FieldDef{
			{Name: "direction", Kind: token.KindChoice, Options: []string{"out", "in"}},
			{Name: "color", Kind: token.KindColor, Default: black},
			{Name: "duration", Kind: token.KindFloat, Default: 0.5},
		}},
		{Tag: "camera_shake", Label: "Camera Shake", Fields: []token.FieldDef{
			{Name: "strength", Kind: token.KindFloat, Default: 0.3},
			{Name: "duration", Kind: token.KindFloat, Default: 0.25},
		}},
		{Tag: "spawn", Label: "Spawn", Fields: []token.FieldDef{
			{Name: "prefab", Kind: token.KindString},
			{Name: "position", Kind: token.KindVector2},
			{Name: "count", Kind: token.KindInt, Default: 1},
		}},
		{Tag: "await_future", Label: "Await", Fields: []token.FieldDef{
			{Name: "future", Kind: token.KindFuture},
		}},
		{Tag: "tint", Label: "Tint", Fields: []token.FieldDef{
			{Name: "target", Kind: token.KindReference},
			{Name: "color", Kind: token.KindColor, Default: amber},
			{Name: "duration", Kind: token.KindFloat, Default: 0.5},
		}},
	}
}
