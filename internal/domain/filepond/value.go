package filepond

import "strings"

// ValueKind tells whether a submitted field carried nothing, one server id
// or a list of them.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindSingle
	KindMultiple
)

func (k ValueKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMultiple:
		return "multiple"
	}
	return "empty"
}

// FieldValue is the raw value of a form field as submitted by the browser.
// The shape, not a schema, decides multiplicity.
type FieldValue struct {
	kind ValueKind
	ids  []string
}

func Empty() FieldValue {
	return FieldValue{kind: KindEmpty}
}

func Single(id string) FieldValue {
	id = strings.TrimSpace(id)
	if id == "" {
		return Empty()
	}
	return FieldValue{kind: KindSingle, ids: []string{id}}
}

// Multiple keeps submission order and drops blank and repeated entries.
func Multiple(ids ...string) FieldValue {
	kept := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		return Empty()
	}
	return FieldValue{kind: KindMultiple, ids: kept}
}

// ValueOf converts a decoded request value: nil, a string, []string or a
// JSON array.
func ValueOf(raw any) FieldValue {
	switch v := raw.(type) {
	case nil:
		return Empty()
	case FieldValue:
		return v
	case string:
		return Single(v)
	case []string:
		return Multiple(v...)
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			}
		}
		return Multiple(ids...)
	}
	return Empty()
}

func (v FieldValue) Kind() ValueKind { return v.kind }

func (v FieldValue) IsEmpty() bool { return v.kind == KindEmpty }

func (v FieldValue) IsMultiple() bool { return v.kind == KindMultiple }

// IDs returns a copy of the submitted server ids.
func (v FieldValue) IDs() []string {
	return append([]string(nil), v.ids...)
}
