package pricing

import (
	"encoding/json"
	"math"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

type Field struct {
	Key   string
	Value *Node
}

// Node is a generic tree representation of a loosely typed remote record.
// Nodes may be shared or even cyclic when built by hand, walkers keep a
// visited set.
type Node struct {
	Kind   Kind
	Bool   bool
	Number float64
	String string
	Items  []*Node
	Fields []Field
}

func Null() *Node                { return &Node{Kind: KindNull} }
func Bool(v bool) *Node          { return &Node{Kind: KindBool, Bool: v} }
func Number(v float64) *Node     { return &Node{Kind: KindNumber, Number: v} }
func String(v string) *Node      { return &Node{Kind: KindString, String: v} }
func Array(items ...*Node) *Node { return &Node{Kind: KindArray, Items: items} }

func Object(fields ...Field) *Node {
	return &Node{Kind: KindObject, Fields: fields}
}

func F(key string, value *Node) Field {
	return Field{Key: key, Value: value}
}

func (n *Node) IsContainer() bool {
	return n != nil && (n.Kind == KindArray || n.Kind == KindObject)
}

// Get returns the first field with the given key.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (n *Node) GetString(key string) string {
	v, ok := n.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch v.Kind {
	case KindString:
		return v.String
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return ""
}

// FromValue converts a decoded JSON value (maps, slices, scalars) into a
// tree. Map keys are sorted to keep the walk deterministic.
func FromValue(v any) *Node {
	switch typed := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(typed)
	case float64:
		return Number(typed)
	case float32:
		return Number(float64(typed))
	case int:
		return Number(float64(typed))
	case int64:
		return Number(float64(typed))
	case uint32:
		return Number(float64(typed))
	case uint64:
		return Number(float64(typed))
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return String(typed.String())
		}
		return Number(f)
	case string:
		return String(typed)
	case []any:
		items := make([]*Node, len(typed))
		for i, item := range typed {
			items[i] = FromValue(item)
		}
		return Array(items...)
	case map[string]any:
		fields := make([]Field, 0, len(typed))
		for _, k := range sortedKeys(typed) {
			fields = append(fields, F(k, FromValue(typed[k])))
		}
		return Object(fields...)
	}
	return Null()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
