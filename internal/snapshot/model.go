package snapshot

import (
	"path/filepath"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/meta"
)

// ModelCodec decodes a binary or XML model file into a subtree, per
// spec.md §4.2 rule 4 ("Model file (binary or XML) -> parsed into an
// instance subtree, inserted as-is"). The concrete binary/XML formats are
// out of scope (spec.md §1's "specific serialization formats for the model
// file"); this is a function-variable seam a caller can install a real
// rbxm/rbxmx codec into, matching the scoping original_source keeps behind
// a separate crate (rbx_binary/rbx_xml).
var ModelCodec func(data []byte) (*diff.PendingSnapshot, error)

// LocalizationCodec decodes a localization table file (CSV, per Roblox's
// LocalizationTable export format) into a subtree, per spec.md §4.2 rule
// 5. Left as a seam for the same out-of-scope reason as ModelCodec.
var LocalizationCodec func(data []byte) (*diff.PendingSnapshot, error)

func (s *Snapshotter) snapshotModel(path string, _ meta.Meta) (*diff.PendingSnapshot, error) {
	data, err := s.VFS.Read(path)
	if err != nil {
		return nil, err
	}

	if ModelCodec == nil {
		// No codec installed: insert an empty placeholder rather than fail
		// the whole snapshot, matching spec.md §4.2.3's "a folder with no
		// recognized contents still yields ... an instance" generosity.
		return &diff.PendingSnapshot{
			Name:  InstanceName(path, KindModel),
			Class: "Model",
			Paths: []string{path},
		}, nil
	}

	snap, err := ModelCodec(data)
	if err != nil {
		return nil, err
	}
	snap.Paths = append(snap.Paths, path)
	return snap, nil
}

func (s *Snapshotter) snapshotLocalizationTable(path string, _ meta.Meta) (*diff.PendingSnapshot, error) {
	data, err := s.VFS.Read(path)
	if err != nil {
		return nil, err
	}

	if LocalizationCodec == nil {
		return &diff.PendingSnapshot{
			Name:  InstanceName(path, KindLocalizationTable),
			Class: "LocalizationTable",
			Paths: []string{path},
		}, nil
	}

	snap, err := LocalizationCodec(data)
	if err != nil {
		return nil, err
	}
	snap.Paths = append(snap.Paths, path)
	return snap, nil
}

// snapshotPlainValue implements spec.md §4.2 rule 5's "toml/csv/json as
// StringValue etc." — a file matched by one of Meta's sync rules (§3,
// §4.2.3) becomes an instance of the rule's configured class, with its raw
// text contents as its Value property (or the rule's Child property name,
// when set).
func (s *Snapshotter) snapshotPlainValue(path string, m meta.Meta) (*diff.PendingSnapshot, error) {
	text, err := s.VFS.ReadText(path)
	if err != nil {
		return nil, err
	}

	name := InstanceName(path, KindPlainValue)
	rule, matched := m.MatchSyncRule(filepath.Base(path))

	class := "StringValue"
	propName := "Value"
	if matched {
		class = rule.Class
		if rule.Child != "" {
			propName = rule.Child
		}
	}

	return &diff.PendingSnapshot{
		Name:  name,
		Class: class,
		Properties: map[string]api.TaggedValue{
			propName: {Type: api.TypeString, Value: text},
		},
		Paths: []string{path},
	}, nil
}
