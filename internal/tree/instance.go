// Package tree implements spec.md §4.3: the in-memory instance DAG, with a
// bijective path<->referent index. Its path index is a
// map[string]*roaring.Bitmap of internal uint32 IDs, the same shape
// internal/graph.MemoryStore's fileToNodes/nodeIntID/intToNodeID triple
// uses to go from "file path" to "AST node IDs" in O(k) instead of O(n) —
// adapted here to go from "filesystem path" to "instance referents".
package tree

import "github.com/argonsync/argon/api"

// Ref is the opaque, process-unique instance identifier spec.md §3 and
// GLOSSARY call a "referent".
type Ref uint64

// Instance is the tree's unit, per spec.md §3.
type Instance struct {
	Ref        Ref
	Name       string
	Class      string
	Properties map[string]api.TaggedValue
	Children   []Ref
	Parent     *Ref // nil for the root only; place roots point at the root
}

// clone returns a deep-enough copy for safe external use (a View): the
// Properties map and Children slice are copied so callers can't mutate the
// tree's internal state through a returned Instance.
func (i *Instance) clone() Instance {
	c := Instance{Ref: i.Ref, Name: i.Name, Class: i.Class, Parent: i.Parent}
	if i.Properties != nil {
		c.Properties = make(map[string]api.TaggedValue, len(i.Properties))
		for k, v := range i.Properties {
			c.Properties[k] = v
		}
	}
	if i.Children != nil {
		c.Children = append([]Ref(nil), i.Children...)
	}
	return c
}
