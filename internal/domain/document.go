package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kapu/planning-center-groups-go/pkg/errors"
)

type documentJSON struct {
	Data     json.RawMessage `json:"data"`
	Included json.RawMessage `json:"included"`
}

// ParseGroupsDocument decodes a groups list body. Malformed JSON at the top
// level is an error; malformed individual records are skipped and counted in
// Skipped so one bad record cannot hide the rest. A record is malformed only
// when it is not a JSON object; wrong-typed fields inside it fall back to
// empty values. An included section that is not a list counts as one skipped
// entry and leaves the lookups empty.
func ParseGroupsDocument(body []byte) (*GroupsDocument, error) {
	var raw documentJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.NewDataShapeError("response is not a JSON document", "$", err)
	}

	doc := &GroupsDocument{}

	if !isNull(raw.Data) {
		var records []json.RawMessage
		if err := json.Unmarshal(raw.Data, &records); err == nil {
			doc.HasData = true
			doc.Data = make([]GroupRecord, 0, len(records))
			for _, rec := range records {
				var group GroupRecord
				if err := json.Unmarshal(rec, &group); err != nil {
					doc.Skipped++
					continue
				}
				doc.Data = append(doc.Data, group)
			}
		}
	}

	if !isNull(raw.Included) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw.Included, &items); err != nil {
			doc.Skipped++
			items = nil
		}
		doc.Included = make([]IncludedResource, 0, len(items))
		for _, item := range items {
			var res IncludedResource
			if err := json.Unmarshal(item, &res); err != nil {
				doc.Skipped++
				continue
			}
			doc.Included = append(doc.Included, res)
		}
	}

	return doc, nil
}

func (d *GroupsDocument) String() string {
	return fmt.Sprintf("GroupsDocument{data=%d included=%d hasData=%t skipped=%d}",
		len(d.Data), len(d.Included), d.HasData, d.Skipped)
}

// objectFields splits a JSON object into its members. ok is false for
// anything that is not an object.
func objectFields(raw json.RawMessage) (fields map[string]json.RawMessage, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// looseString reads a string member. Numbers keep their literal text; every
// other type yields ok=false.
func looseString(raw json.RawMessage) (value string, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	switch c := trimmed[0]; {
	case c == '"':
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return "", false
		}
		return value, true
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return "", false
		}
		return n.String(), true
	default:
		return "", false
	}
}

// stringOrEmpty is looseString without the ok flag.
func stringOrEmpty(raw json.RawMessage) string {
	value, _ := looseString(raw)
	return value
}

// truthyLiteral returns the literal text of a non-string member when it
// holds a set value (true, a non-zero number, a non-empty list or object).
// Null, false, zero and empty containers yield nil.
func truthyLiteral(raw json.RawMessage) *string {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return nil
	}
	switch trimmed[0] {
	case 't':
		v := "true"
		return &v
	case 'f':
		return nil
	case '[', '{':
		var container []json.RawMessage
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &container); err != nil || len(container) == 0 {
				return nil
			}
		} else if fields, ok := objectFields(trimmed); !ok || len(fields) == 0 {
			return nil
		}
		v := string(trimmed)
		return &v
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return nil
	}
	if f, err := n.Float64(); err != nil || f == 0 {
		return nil
	}
	v := n.String()
	return &v
}
