package snapshot

import (
	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/meta"
)

// ScriptFlavor is original_source/src/middleware/luau.rs's ScriptType,
// renamed to avoid colliding with the Kind enum's own naming.
type ScriptFlavor int

const (
	ScriptServer ScriptFlavor = iota
	ScriptClient
	ScriptModule
)

// runContext values mirror Roblox's RunContext enum, ported verbatim from
// luau.rs's `Enum::from_u32` call sites: Legacy=0, Server=1, Client=2.
const (
	runContextLegacy = 0
	runContextServer = 1
	runContextClient = 2
)

// snapshotScript implements spec.md §4.2 rule 2: a recognized script suffix
// maps to Script/LocalScript/ModuleScript with Source set to the file
// contents; the modern convention folds client/server into a RunContext
// enum property, ported from luau.rs's `read_luau`.
func (s *Snapshotter) snapshotScript(path string, flavor ScriptFlavor, m meta.Meta) (*diff.PendingSnapshot, error) {
	source, err := s.VFS.ReadText(path)
	if err != nil {
		return nil, err
	}

	class, runContext := classAndRunContext(m.UseLegacyScripts, flavor)

	props := map[string]api.TaggedValue{
		"Source": {Type: api.TypeString, Value: source},
	}
	if flavor != ScriptModule && runContext != nil {
		props["RunContext"] = *runContext
	}

	kind := kindForFlavor(flavor)
	return &diff.PendingSnapshot{
		Name:       InstanceName(path, kind),
		Class:      class,
		Properties: props,
		Paths:      []string{path},
	}, nil
}

func kindForFlavor(flavor ScriptFlavor) Kind {
	switch flavor {
	case ScriptServer:
		return KindServerScript
	case ScriptClient:
		return KindClientScript
	default:
		return KindModuleScript
	}
}

// classAndRunContext ports luau.rs's `(use_legacy_scripts, script_type)`
// match table exactly:
//
//	(false, Server) -> ("Script", RunContext(Server))
//	(false, Client) -> ("Script", RunContext(Client))
//	(true,  Server) -> ("Script", RunContext(Legacy))
//	(true,  Client) -> ("LocalScript", nil)
//	(_,     Module) -> ("ModuleScript", nil)
func classAndRunContext(legacy bool, flavor ScriptFlavor) (string, *api.TaggedValue) {
	enumVal := func(v uint32) *api.TaggedValue {
		return &api.TaggedValue{Type: api.TypeEnum, Value: v}
	}

	switch {
	case !legacy && flavor == ScriptServer:
		return "Script", enumVal(runContextServer)
	case !legacy && flavor == ScriptClient:
		return "Script", enumVal(runContextClient)
	case legacy && flavor == ScriptServer:
		return "Script", enumVal(runContextLegacy)
	case legacy && flavor == ScriptClient:
		return "LocalScript", nil
	default:
		return "ModuleScript", nil
	}
}
