// Package jsonval provides a dynamically-typed JSON value as a tagged union.
// Unlike map-based decoding it preserves object key order and number
// literals, which the page-merge rules depend on.
package jsonval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the kind name, for error messages.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Member is a single key/value pair of an object. Objects are stored as
// ordered member slices so insertion order survives a decode/encode cycle.
type Member struct {
	Key   string
	Value Value
}

// Value is one JSON value of any type. The zero value is JSON null.
type Value struct {
	Kind Kind
	Bool bool
	Num  json.Number // set when Kind == Number, literal preserved
	Str  string      // set when Kind == String
	Arr  []Value     // set when Kind == Array
	Obj  []Member    // set when Kind == Object, key order significant
}

// NewObject returns an empty JSON object.
func NewObject() Value {
	return Value{Kind: Object}
}

// NewString returns a JSON string value.
func NewString(s string) Value {
	return Value{Kind: String, Str: s}
}

// Get returns the value stored under key and whether the key exists.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Set stores val under key. An existing key keeps its position; a new key
// is appended.
func (v *Value) Set(key string, val Value) {
	for i := range v.Obj {
		if v.Obj[i].Key == key {
			v.Obj[i].Value = val
			return
		}
	}
	v.Obj = append(v.Obj, Member{Key: key, Value: val})
}

// Parse decodes data into a Value. Object key order and number literals are
// preserved; duplicate keys follow last-writer-wins like encoding/json.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case string:
		return Value{Kind: String, Str: t}, nil
	case json.Number:
		return Value{Kind: Number, Num: t}, nil
	case bool:
		return Value{Kind: Bool, Bool: t}, nil
	case nil:
		return Value{Kind: Null}, nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (Value, error) {
	obj := Value{Kind: Object}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		val, err := parseValue(dec)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return Value{}, err
	}
	return obj, nil
}

func parseArray(dec *json.Decoder) (Value, error) {
	arr := Value{Kind: Array}
	for dec.More() {
		val, err := parseValue(dec)
		if err != nil {
			return Value{}, err
		}
		arr.Arr = append(arr.Arr, val)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return Value{}, err
	}
	return arr, nil
}

// MarshalJSON serializes the value compactly, keeping object key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.Kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if v.Num == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(v.Num.String())
		}
	case String:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.Obj {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode value of kind %s", v.Kind)
	}
	return nil
}
