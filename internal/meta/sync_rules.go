package meta

import (
	"path/filepath"

	"github.com/argonsync/argon/api"
)

// MatchSyncRule finds the first sync rule in m whose Pattern matches name
// (a single path segment), per GLOSSARY's "sync rule: a pattern mapping
// filesystem-layout conventions to instance classes." Rules are tried in
// order; the first match wins.
func (m Meta) MatchSyncRule(name string) (api.SyncRule, bool) {
	for _, rule := range m.SyncRules {
		if ok, _ := filepath.Match(rule.Pattern, name); ok {
			return rule, true
		}
	}
	return api.SyncRule{}, false
}
