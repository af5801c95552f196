package diff

import (
	"reflect"

	"github.com/argonsync/argon/api"
)

// OldChild is the minimal recursive view Diff needs of the tree's current
// state for one subtree. internal/tree builds this view under its read
// lock before calling Diff, so Diff itself never touches tree internals or
// locks — it is a pure function over two subtree descriptions.
type OldChild struct {
	Ref        uint64
	Name       string
	Class      string
	Properties map[string]api.TaggedValue
	Children   []OldChild
}

// identityKey is the (name, class) pairing key spec.md §4.4 specifies:
// "Pair old and new children by (name, class) as the identity key."
type identityKey struct {
	name  string
	class string
}

// Diff computes the change set that transforms old into new, rooted at
// parentRef (the already-existing referent both old and new are children
// of). Sibling order in the result follows new, per spec.md §4.4
// ("Ordering within siblings follows the new snapshot").
func Diff(parentRef uint64, old []OldChild, new []*PendingSnapshot) ChangeSet {
	var cs ChangeSet

	oldByKey := make(map[identityKey]OldChild, len(old))
	oldMatched := make(map[identityKey]bool, len(old))
	for _, o := range old {
		oldByKey[identityKey{o.Name, o.Class}] = o
	}

	for _, n := range new {
		key := identityKey{n.Name, n.Class}
		o, matched := oldByKey[key]
		if !matched || oldMatched[key] {
			// Either genuinely new, or a second sibling sharing (name,
			// class) with one already claimed by an earlier new sibling —
			// spec.md §3 invariant 3 says the middleware disambiguates
			// these before they reach Diff, so this is always "genuinely
			// new" in practice.
			cs = append(cs, Change{Kind: api.Added, ParentRef: parentRef, Snapshot: n})
			continue
		}
		oldMatched[key] = true

		if delta := propertyDelta(o.Properties, n.Properties); len(delta) > 0 {
			cs = append(cs, Change{Kind: api.Updated, Ref: o.Ref, Delta: delta})
		}

		cs = append(cs, Diff(o.Ref, o.Children, n.Children)...)
	}

	for _, o := range old {
		key := identityKey{o.Name, o.Class}
		if !oldMatched[key] {
			cs = append(cs, Change{Kind: api.Removed, Ref: o.Ref})
		}
	}

	return cs
}

// propertyDelta computes the property-name -> new-value map that takes
// oldProps to newProps, including api.Deleted() entries for properties
// present in oldProps but absent from newProps (spec.md §3's
// property_delta sentinel for deletion).
func propertyDelta(oldProps, newProps map[string]api.TaggedValue) map[string]api.TaggedValue {
	delta := map[string]api.TaggedValue{}

	for name, newVal := range newProps {
		oldVal, existed := oldProps[name]
		if !existed || !reflect.DeepEqual(oldVal, newVal) {
			delta[name] = newVal
		}
	}
	for name := range oldProps {
		if _, stillPresent := newProps[name]; !stillPresent {
			delta[name] = api.Deleted()
		}
	}

	return delta
}
