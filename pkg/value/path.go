package value

import (
	"strconv"
	"strings"
)

// Segment is one step of a path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns a key step.
func KeySegment(key string) Segment {
	return Segment{Key: key}
}

// IndexSegment returns an index step.
func IndexSegment(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// FormatPath renders segments as a.b[0].c.
func FormatPath(path []Segment) string {
	var sb strings.Builder
	for i, seg := range path {
		if !seg.IsIndex && i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// ParsePath parses dotted paths with bracketed indexes or quoted keys:
// user.tags[0], items['first name'].
func ParsePath(path string) ([]Segment, error) {
	var segs []Segment
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, newError(ErrorInvalidExpression, "unterminated '[' in path %q", path)
			}
			inner := strings.TrimSpace(path[i+1 : i+end])
			i += end + 1
			if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
				segs = append(segs, KeySegment(inner[1:len(inner)-1]))
				continue
			}
			idx, err := strconv.Atoi(inner)
			if err != nil {
				return nil, wrapError(ErrorInvalidExpression, err, "invalid index %q in path %q", inner, path)
			}
			segs = append(segs, IndexSegment(idx))
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			segs = append(segs, KeySegment(path[i:j]))
			i = j
		}
	}
	return segs, nil
}

// Get applies a single step. Index steps work on arrays (negative indexes
// count from the end); key steps work on objects and groups.
func (v Value) Get(seg Segment) (Value, bool) {
	if seg.IsIndex {
		items, ok := v.AsArray()
		if !ok {
			return Value{}, false
		}
		idx := seg.Index
		if idx < 0 {
			idx += len(items)
		}
		if idx < 0 || idx >= len(items) {
			return Value{}, false
		}
		return items[idx], true
	}
	obj, ok := v.AsObject()
	if !ok {
		return Value{}, false
	}
	return obj.Get(seg.Key)
}

// Lookup walks path from v.
func Lookup(v Value, path []Segment) (Value, error) {
	cur := v
	for i, seg := range path {
		next, ok := cur.Get(seg)
		if ok {
			cur = next
			continue
		}
		at := FormatPath(path[:i+1])
		switch {
		case seg.IsIndex && cur.IsArray():
			return Value{}, newError(ErrorIndexOutOfBounds, "index out of bounds at %s", at)
		case !seg.IsIndex && (cur.IsObject() || cur.IsGroup()):
			return Value{}, newError(ErrorKeyNotFound, "key not found at %s", at)
		default:
			return Value{}, newError(ErrorTypeConversion, "cannot step into %s at %s", cur.Kind(), at)
		}
	}
	return cur, nil
}
