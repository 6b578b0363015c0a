package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jask/cutscenes/internal/token"
)

// MarshalFields encodes t's field values as a JSON object keyed by field name.
func MarshalFields(t *token.Token) ([]byte, error) {
	out := make(map[string]any, t.NumFields())
	for _, f := range t.Fields() {
		out[f.Def.Name] = encodeValue(f)
	}
	return json.Marshal(out)
}

func encodeValue(f token.Field) any {
	switch v := f.Value.(type) {
	case nil:
		return nil
	case token.Vec2:
		return [2]float64{v.X, v.Y}
	case colorful.Color:
		return v.Hex()
	case *token.Reference:
		if v == nil {
			return nil
		}
		return v.ID
	case *token.FutureRef:
		if v == nil {
			return nil
		}
		return v.ID
	}
	return f.Value
}

// UnmarshalFields sets t's fields from a JSON object produced by MarshalFields. Names
// match case-insensitively; unknown names are ignored and missing ones keep their value.
func UnmarshalFields(t *token.Token, data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	for name, msg := range raw {
		i := t.FieldByName(name)
		if i < 0 {
			continue
		}
		v, err := decodeValue(t.Field(i).Def, msg)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if err := t.Set(i, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeValue(def token.FieldDef, msg json.RawMessage) (any, error) {
	isNull := strings.TrimSpace(string(msg)) == "null"
	switch def.Kind {
	case token.KindString, token.KindText, token.KindChoice:
		var s string
		err := json.Unmarshal(msg, &s)
		return s, err
	case token.KindInt:
		var n int
		err := json.Unmarshal(msg, &n)
		return n, err
	case token.KindFloat:
		var n float64
		err := json.Unmarshal(msg, &n)
		return n, err
	case token.KindBool:
		var b bool
		err := json.Unmarshal(msg, &b)
		return b, err
	case token.KindVector2:
		var xy [2]float64
		if err := json.Unmarshal(msg, &xy); err != nil {
			return nil, err
		}
		return token.Vec2{X: xy[0], Y: xy[1]}, nil
	case token.KindColor:
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, err
		}
		return colorful.Hex(s)
	case token.KindReference:
		if isNull {
			return (*token.Reference)(nil), nil
		}
		var id string
		if err := json.Unmarshal(msg, &id); err != nil {
			return nil, err
		}
		return &token.Reference{ID: id}, nil
	case token.KindFuture:
		if isNull {
			return (*token.FutureRef)(nil), nil
		}
		var id int
		if err := json.Unmarshal(msg, &id); err != nil {
			return nil, err
		}
		return &token.FutureRef{ID: id}, nil
	}
	if isNull {
		return nil, nil
	}
	var v any
	err := json.Unmarshal(msg, &v)
	return v, err
}
