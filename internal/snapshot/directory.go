package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/meta"
	"github.com/argonsync/argon/internal/reflection"
)

// initSidecarNames are the data-sidecar file names that describe the
// *enclosing directory* rather than a sibling child, the Rojo/Argon "init"
// convention original_source's data.rs relies on implicitly via
// `path.get_parent()` classification.
var initSidecarNames = []string{"init.data.json", "init.meta.json"}

// snapshotDirectory implements spec.md §4.2 rule 1: descend into children;
// synthesize a container instance whose class comes from (a) an explicit
// sidecar data file, or (b) a parent-directory name matching a service name
// from the reflection database, or else defaults to Folder.
func (s *Snapshotter) snapshotDirectory(path string, parentMeta meta.Meta) (*diff.PendingSnapshot, error) {
	m, err := meta.WithOverride(parentMeta, path)
	if err != nil {
		return nil, err
	}

	entries, err := s.VFS.List(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	snap := &diff.PendingSnapshot{
		Name:       name,
		Class:      directoryClass(name),
		Properties: map[string]api.TaggedValue{},
		Paths:      []string{path},
	}

	var childPaths []string
	for _, entry := range entries {
		base := filepath.Base(entry)
		if isInitSidecar(base) {
			dataSnap, err := s.snapshotData(entry, m)
			if err != nil {
				continue
			}
			if dataSnap != nil {
				snap.Class = dataSnap.Class
				for k, v := range dataSnap.Properties {
					snap.Properties[k] = v
				}
				snap.Paths = append(snap.Paths, entry)
			}
			continue
		}
		childPaths = append(childPaths, entry)
	}

	seen := map[identity]bool{}
	for _, childPath := range childPaths {
		childSnap, err := s.Snapshot(childPath, m)
		if err != nil || childSnap == nil {
			continue
		}
		disambiguate(childSnap, seen)
		snap.Children = append(snap.Children, childSnap)
	}

	return snap, nil
}

// directoryClass applies spec.md §4.2 rule 1(b): a directory whose name
// matches a service in the reflection database takes that service's class;
// otherwise it defaults to Folder (rule 1(c)) unless overridden later by an
// init sidecar (rule 1(a), applied by the caller after this returns).
func directoryClass(name string) string {
	if reflection.IsService(name) {
		return name
	}
	return "Folder"
}

func isInitSidecar(base string) bool {
	for _, n := range initSidecarNames {
		if base == n {
			return true
		}
	}
	return false
}

// identity is the (name, class) pairing key spec.md §3 invariant 3 requires
// siblings to be disambiguated on before they reach the tree/diff layer.
type identity struct{ name, class string }

// disambiguate implements spec.md §4.2.3's sibling name-collision policy on
// the read side: a second sibling sharing (name, class) with an
// already-seen one gets its class folded into its name so the uniqueness
// invariant holds in memory. Write-back (writeback.go) undoes this.
func disambiguate(snap *diff.PendingSnapshot, seen map[identity]bool) {
	key := identity{snap.Name, snap.Class}
	if !seen[key] {
		seen[key] = true
		return
	}
	suffix := "." + strings.ToLower(snap.Class)
	for n := 1; ; n++ {
		candidate := identity{snap.Name + suffix, snap.Class}
		if !seen[candidate] {
			snap.Name += suffix
			seen[candidate] = true
			return
		}
		suffix = suffix + string(rune('0'+n))
	}
}
