package memory

import (
	"fmt"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// compiledFilter holds a filter whose value has been normalized to stored form.
type compiledFilter struct {
	field string
	op    repository.Operator
	value any
}

func compile(f repository.Filter) (compiledFilter, error) {
	c, err := clone(bson.M{"v": f.Value})
	if err != nil {
		return compiledFilter{}, fmt.Errorf("filter %q: %w", f.Field, err)
	}
	if f.Op == repository.OpIn || f.Op == repository.OpNotIn {
		if _, ok := c["v"].(primitive.A); !ok {
			return compiledFilter{}, fmt.Errorf("filter %q: %s needs a list value", f.Field, f.Op)
		}
	}
	return compiledFilter{field: f.Field, op: f.Op, value: c["v"]}, nil
}

func matchesAll(doc bson.M, filters []compiledFilter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

// matches follows MongoDB semantics: ordering operators only match values of the same
// kind, and != / not-in also match documents missing the field.
func matches(doc bson.M, f compiledFilter) bool {
	v, present := doc[f.field]
	switch f.op {
	case repository.OpEqual:
		return present && equal(v, f.value)
	case repository.OpNotEqual:
		return !present || !equal(v, f.value)
	case repository.OpLess, repository.OpLessOrEqual, repository.OpGreater, repository.OpGreaterOrEqual:
		if !present {
			return false
		}
		c, ok := compareValues(v, f.value)
		if !ok {
			return false
		}
		switch f.op {
		case repository.OpLess:
			return c < 0
		case repository.OpLessOrEqual:
			return c <= 0
		case repository.OpGreater:
			return c > 0
		default:
			return c >= 0
		}
	case repository.OpIn:
		return present && contains(f.value.(primitive.A), v)
	case repository.OpNotIn:
		return !present || !contains(f.value.(primitive.A), v)
	case repository.OpArrayContains:
		arr, ok := v.(primitive.A)
		return ok && contains(arr, f.value)
	}
	return false
}

func contains(list primitive.A, v any) bool {
	for _, item := range list {
		if equal(item, v) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	c, ok := compareValues(a, b)
	return ok && c == 0
}

type kind int

const (
	kindNull kind = iota
	kindNumber
	kindString
	kindBool
	kindTime
	kindOther
)

type sortKey struct {
	kind kind
	num  float64
	str  string
}

func keyOf(v any) sortKey {
	switch x := v.(type) {
	case nil:
		return sortKey{kind: kindNull}
	case int32:
		return sortKey{kind: kindNumber, num: float64(x)}
	case int64:
		return sortKey{kind: kindNumber, num: float64(x)}
	case int:
		return sortKey{kind: kindNumber, num: float64(x)}
	case float64:
		return sortKey{kind: kindNumber, num: x}
	case float32:
		return sortKey{kind: kindNumber, num: float64(x)}
	case string:
		return sortKey{kind: kindString, str: x}
	case bool:
		if x {
			return sortKey{kind: kindBool, num: 1}
		}
		return sortKey{kind: kindBool}
	case primitive.DateTime:
		return sortKey{kind: kindTime, num: float64(x)}
	case time.Time:
		return sortKey{kind: kindTime, num: float64(x.UnixMilli())}
	case primitive.ObjectID:
		return sortKey{kind: kindString, str: x.Hex()}
	}
	return sortKey{kind: kindOther}
}

// compareValues orders two stored values; ok is false when they are not comparable.
func compareValues(a, b any) (int, bool) {
	ka, kb := keyOf(a), keyOf(b)
	if ka.kind != kb.kind || ka.kind == kindOther {
		return 0, false
	}
	switch ka.kind {
	case kindNull:
		return 0, true
	case kindString:
		switch {
		case ka.str < kb.str:
			return -1, true
		case ka.str > kb.str:
			return 1, true
		}
		return 0, true
	default:
		switch {
		case ka.num < kb.num:
			return -1, true
		case ka.num > kb.num:
			return 1, true
		}
		return 0, true
	}
}
