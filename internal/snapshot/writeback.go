package snapshot

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/argonsync/argon/api"
)

// WriteBack implements spec.md §4.2.2: the inverse operation. For a
// writable instance kind, it removes the writable properties (e.g. a
// script's Source) and persists them to the path of record, returning the
// remaining properties for the caller to fold into a sidecar data file.
// path must already have had any disambiguating suffix stripped by the
// caller (writeback undoes the read-side disambiguation from directory.go).
func (s *Snapshotter) WriteBack(path, class string, properties map[string]api.TaggedValue) (remaining map[string]api.TaggedValue, err error) {
	switch class {
	case "Script", "LocalScript", "ModuleScript":
		return s.writeBackScript(path, properties)
	default:
		return properties, nil
	}
}

// writeBackScript ports luau.rs's `write_luau`: pull Source out of the
// property map and write it to the script's own file; everything else is
// returned for the sidecar.
func (s *Snapshotter) writeBackScript(path string, properties map[string]api.TaggedValue) (map[string]api.TaggedValue, error) {
	remaining := make(map[string]api.TaggedValue, len(properties))
	var source string
	hasSource := false

	for name, val := range properties {
		if name == "Source" {
			if s, ok := val.Value.(string); ok {
				source = s
				hasSource = true
				continue
			}
		}
		remaining[name] = val
	}

	if hasSource {
		if err := s.VFS.Write(path, []byte(source)); err != nil {
			return nil, err
		}
	}

	return remaining, nil
}

// WriteBackSidecar persists remaining (non-path-based) properties into the
// data sidecar for path, matching the schema the sidecar was read with
// (structured vs. flat), per spec.md §4.2.2's "sidecar schema chosen on
// write matches the schema detected on read for that path."
func (s *Snapshotter) WriteBackSidecar(sidecarPath, class string, remaining map[string]api.TaggedValue, structured bool) error {
	if len(remaining) == 0 {
		return nil
	}

	var out any
	if structured {
		sd := structuredWire{ClassName: class, Properties: map[string]json.RawMessage{}}
		for name, val := range remaining {
			if name == "Attributes" || name == "Tags" {
				continue
			}
			raw, err := json.Marshal(val.Value)
			if err != nil {
				continue
			}
			sd.Properties[name] = raw
		}
		if attrs, ok := remaining["Attributes"]; ok {
			sd.Attributes, _ = json.Marshal(attrs.Value)
		}
		if tags, ok := remaining["Tags"]; ok {
			if ts, ok := tags.Value.([]string); ok {
				sd.Tags = ts
			}
		}
		out = sd
	} else {
		flat := map[string]any{"ClassName": class}
		for name, val := range remaining {
			flat[name] = val.Value
		}
		out = flat
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return s.VFS.Write(sidecarPath, encoded)
}

type structuredWire struct {
	ClassName  string                     `json:"className,omitempty"`
	Properties map[string]json.RawMessage `json:"properties,omitempty"`
	Attributes json.RawMessage            `json:"attributes,omitempty"`
	Tags       []string                   `json:"tags,omitempty"`
}

// ResolveWriteCollision implements spec.md §4.2.3's name-collision
// write-back policy: "appending a class suffix on the file system side at
// write-back time; read-back undoes this" (directory.go's disambiguate is
// the read-back side). Given an in-memory instance name that disambiguate
// already suffixed (e.g. "Foo.modulescript"), it strips the suffix back off
// before computing the on-disk path.
func ResolveWriteCollision(name, class string) string {
	suffix := "." + strings.ToLower(class)
	return strings.TrimSuffix(name, suffix)
}

// SidecarPathFor returns the conventional data-sidecar path for an
// instance living at dir with the given name, per the ".data.json"
// extension snapshot.go's Classify recognizes on read. Used by
// internal/processor to materialize a sidecar for a patch-originated
// instance that has no path of record yet.
func SidecarPathFor(dir, name string) string {
	return filepath.Join(dir, name+".data.json")
}

// SidecarIsStructured reports whether the data sidecar already at path uses
// the structured schema, so write-back can match the schema it was read
// with (spec.md §4.2.2). A sidecar that does not exist yet (a brand new
// instance's first write-back) defaults to structured, matching the shape
// WriteBackSidecar itself prefers.
func (s *Snapshotter) SidecarIsStructured(path string) bool {
	raw, err := s.VFS.ReadText(path)
	if err != nil {
		return true
	}
	var generic map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return true
	}
	return isStructuredSchema(generic)
}
