package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueKind is the JSON type of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseValueKind maps a schema type name to a ValueKind.
func ParseValueKind(name string) (ValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bool", "boolean":
		return KindBool, nil
	case "number":
		return KindNumber, nil
	case "string", "":
		return KindString, nil
	case "object":
		return KindObject, nil
	case "array":
		return KindArray, nil
	default:
		return KindNull, fmt.Errorf("unknown value kind %q", name)
	}
}

// MarshalText renders the kind name.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name; an empty name means string.
func (k *ValueKind) UnmarshalText(text []byte) error {
	kind, err := ParseValueKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// UnmarshalYAML parses a kind name from a YAML scalar.
func (k *ValueKind) UnmarshalYAML(node *yaml.Node) error {
	return k.UnmarshalText([]byte(node.Value))
}

// Value is a decoded JSON document or fragment.
type Value struct {
	kind ValueKind
	b    bool
	n    json.Number
	s    string
	obj  map[string]Value
	arr  []Value
}

// DecodeValue parses a single JSON document.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("unexpected data after JSON document")
	}
	return FromAny(raw), nil
}

// FromAny converts the output of encoding/json (or a literal built from the
// same types) into a Value.
func FromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{kind: KindNull}
	case bool:
		return Value{kind: KindBool, b: v}
	case json.Number:
		return Value{kind: KindNumber, n: v}
	case float64:
		return Value{kind: KindNumber, n: json.Number(strconv.FormatFloat(v, 'f', -1, 64))}
	case int:
		return Value{kind: KindNumber, n: json.Number(strconv.Itoa(v))}
	case string:
		return Value{kind: KindString, s: v}
	case map[string]any:
		obj := make(map[string]Value, len(v))
		for key, item := range v {
			obj[key] = FromAny(item)
		}
		return Value{kind: KindObject, obj: obj}
	case []any:
		arr := make([]Value, len(v))
		for i, item := range v {
			arr[i] = FromAny(item)
		}
		return Value{kind: KindArray, arr: arr}
	default:
		return Value{kind: KindString, s: fmt.Sprint(v)}
	}
}

// Kind returns the JSON type of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is JSON null (or the zero Value).
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the string payload; other kinds report false.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Bool returns the boolean payload; other kinds report false.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Float returns the numeric payload; other kinds report false.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Get returns the member key of an object or the element at a decimal index
// of an array.
func (v Value) Get(key string) (Value, bool) {
	switch v.kind {
	case KindObject:
		item, ok := v.obj[key]
		return item, ok
	case KindArray:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v.arr) {
			return Value{}, false
		}
		return v.arr[i], true
	default:
		return Value{}, false
	}
}

// Path follows a dot-separated path such as "connection.isp". Any missing
// step, including stepping through null, reports false.
func (v Value) Path(path string) (Value, bool) {
	current := v
	for _, segment := range strings.Split(path, ".") {
		next, ok := current.Get(segment)
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// Equals compares v with a scalar literal (bool, string or number).
func (v Value) Equals(literal any) bool {
	switch lit := literal.(type) {
	case bool:
		b, ok := v.Bool()
		return ok && b == lit
	case string:
		s, ok := v.Text()
		return ok && s == lit
	case int:
		f, ok := v.Float()
		return ok && f == float64(lit)
	case float64:
		f, ok := v.Float()
		return ok && f == lit
	case nil:
		return v.IsNull()
	default:
		return false
	}
}
