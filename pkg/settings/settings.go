// Package settings implements the selective merge for shared single-file
// JSON settings targets. The engine's keys are brought up to date while
// everything the user added on their own is preserved, so a settings file
// can be co-owned by the engine and the user.
package settings

import (
	"bytes"
	"encoding/json"

	"github.com/agentsync-dev/agentsync/pkg/errors"
)

// Merger implements types.SettingsMerger for JSON settings documents.
type Merger struct{}

// NewMerger returns a JSON settings merger.
func NewMerger() *Merger {
	return &Merger{}
}

// Merge combines the user's existing settings with the engine's incoming
// ones. Keys present in incoming win; user-only keys survive; nested objects
// merge recursively; arrays merge as an order-preserving union so hook lists
// never accumulate duplicates.
func (m *Merger) Merge(existing, incoming []byte) ([]byte, error) {
	incomingDoc, err := parse(incoming)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMergeFailed, "incoming settings are not valid JSON")
	}
	if len(bytes.TrimSpace(existing)) == 0 {
		return render(incomingDoc)
	}
	existingDoc, err := parse(existing)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMergeFailed, "existing settings are not valid JSON")
	}
	return render(mergeObjects(existingDoc, incomingDoc))
}

func parse(data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}

func render(doc map[string]interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMergeFailed, "failed to encode merged settings")
	}
	return append(out, '\n'), nil
}

func mergeObjects(existing, incoming map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		prev, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		prevObj, prevIsObj := prev.(map[string]interface{})
		nextObj, nextIsObj := v.(map[string]interface{})
		if prevIsObj && nextIsObj {
			out[k] = mergeObjects(prevObj, nextObj)
			continue
		}
		prevArr, prevIsArr := prev.([]interface{})
		nextArr, nextIsArr := v.([]interface{})
		if prevIsArr && nextIsArr {
			out[k] = unionArrays(prevArr, nextArr)
			continue
		}
		out[k] = v
	}
	return out
}

// unionArrays keeps the user's entries in place and appends engine entries
// not already present. Entry identity is the canonical JSON encoding.
func unionArrays(existing, incoming []interface{}) []interface{} {
	seen := make(map[string]bool, len(existing))
	out := make([]interface{}, 0, len(existing)+len(incoming))
	for _, v := range existing {
		out = append(out, v)
		seen[canon(v)] = true
	}
	for _, v := range incoming {
		if key := canon(v); !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

func canon(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
