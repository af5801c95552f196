package snapshot

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"slices"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/meta"
	"github.com/argonsync/argon/internal/reflection"
)

// structuredKeys are the Rojo-style "structured" schema's reserved keys,
// ported from original_source/src/middleware/data.rs's RojoData check
// (`data.get("className").is_some() || data.get("properties").is_some() ||
// data.get("attributes").is_some() || data.get("ignoreUnknownInstances").is_some()`).
var structuredKeys = []string{"className", "properties", "attributes", "ignoreUnknownInstances"}

type structuredData struct {
	ClassName             string                     `json:"className,omitempty"`
	Properties            map[string]json.RawMessage `json:"properties,omitempty"`
	Attributes            json.RawMessage            `json:"attributes,omitempty"`
	Tags                  []string                   `json:"tags,omitempty"`
	IgnoreUnknownInstance bool                        `json:"ignoreUnknownInstances,omitempty"`
}

// snapshotData implements spec.md §4.2 rule 3: a JSON data sidecar in
// either the structured or flat schema, ported from data.rs's
// `snapshot_data`. Property values are resolved against the enclosing
// class's reflection descriptor (§4.2.1); resolution failures are logged
// and the property dropped, never fatal, matching spec.md §7's "Middleware
// property-resolution errors are logged and skipped."
func (s *Snapshotter) snapshotData(path string, m meta.Meta) (*diff.PendingSnapshot, error) {
	raw, err := s.VFS.ReadText(path)
	if err != nil {
		return nil, err
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidData, path, err)
	}

	class, err := resolveDataClass(path, generic)
	if err != nil {
		return nil, err
	}

	props := map[string]api.TaggedValue{}

	if isStructuredSchema(generic) {
		var sd structuredData
		if err := json.Unmarshal([]byte(raw), &sd); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidData, path, err)
		}
		for name, rawVal := range sd.Properties {
			resolveInto(props, class, name, rawVal)
		}
		if len(sd.Attributes) > 0 {
			resolveInto(props, class, "Attributes", sd.Attributes)
		}
		if len(sd.Tags) > 0 {
			props["Tags"] = api.TaggedValue{Type: api.TypeTags, Value: sd.Tags}
		}
		// Structured wins: top-level keys only the flat schema would read
		// are ignored, with a warning.
		for name := range generic {
			if name != "ClassName" && name != "tags" && !slices.Contains(structuredKeys, name) {
				log.Printf("snapshot: %s: structured schema takes precedence, ignoring top-level key %q", path, name)
			}
		}
	} else {
		// Flat schema: every top-level key except ClassName is a property.
		for name, rawVal := range generic {
			if name == "ClassName" {
				continue
			}
			resolveInto(props, class, name, rawVal)
		}
	}

	return &diff.PendingSnapshot{
		Name:       InstanceName(path, KindData),
		Class:      class,
		Properties: props,
		Paths:      []string{path},
	}, nil
}

// resolveDataClass implements data.rs's class-resolution precedence: an
// explicit ClassName/className key in the data file, else the parent
// directory's name if it's a service, else Folder. Only a non-string
// ClassName is fatal (ErrInvalidData); a missing ClassName is not.
func resolveDataClass(path string, generic map[string]json.RawMessage) (string, error) {
	for _, key := range []string{"ClassName", "className"} {
		if raw, ok := generic[key]; ok {
			var class string
			if err := json.Unmarshal(raw, &class); err != nil {
				return "", fmt.Errorf("%w: %s: ClassName property is not a string", ErrInvalidData, path)
			}
			return class, nil
		}
	}

	parentName := filepath.Base(filepath.Dir(path))
	if reflection.IsService(parentName) {
		return parentName, nil
	}
	return "Folder", nil
}

func isStructuredSchema(generic map[string]json.RawMessage) bool {
	for _, k := range structuredKeys {
		if _, ok := generic[k]; ok {
			return true
		}
	}
	return false
}

// resolveInto resolves rawVal against class/property via
// internal/reflection, logging and skipping on failure rather than
// aborting the whole snapshot (spec.md §7).
func resolveInto(props map[string]api.TaggedValue, class, property string, rawVal json.RawMessage) {
	var opaque any
	if err := json.Unmarshal(rawVal, &opaque); err != nil {
		log.Printf("snapshot: failed to parse property %s.%s: %v", class, property, err)
		return
	}
	val, err := reflection.Resolve(class, property, opaque)
	if err != nil {
		log.Printf("snapshot: failed to resolve property %s.%s: %v", class, property, err)
		return
	}
	props[property] = val
}
