package meta

import (
	"fmt"
	"os"
	"strings"

	"github.com/argonsync/argon/api"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// OverrideFileName is the per-directory Meta override file spec.md's §3
// "overridable per node" invariant is implemented with — see SPEC_FULL.md
// §4.2 for the rationale (the project file alone only carries one, root
// level, Meta).
const OverrideFileName = ".argon.hcl"

// Override is the decoded shape of an .argon.hcl file. A nil field (for
// IgnoreGlobs/SyncRules) or nil pointer (for UseLegacyScripts) means "no
// override, inherit from parent" — see Meta.Join.
type Override struct {
	IgnoreGlobs      []string
	SyncRules        []api.SyncRule
	UseLegacyScripts *bool
}

// syncRuleBlock is the HCL block shape for one sync rule:
//
//	sync_rule "StringValue" {
//	  pattern = "*.txt"
//	  child   = "Value"
//	}
type syncRuleBlock struct {
	Class   string `hcl:"class,label"`
	Pattern string `hcl:"pattern"`
	Child   string `hcl:"child,optional"`
}

type overrideFile struct {
	IgnoreGlobs      []string        `hcl:"ignore_globs,optional"`
	UseLegacyScripts *bool           `hcl:"use_legacy_scripts,optional"`
	SyncRules        []syncRuleBlock `hcl:"sync_rule,block"`
}

// LoadOverride reads and decodes path's .argon.hcl, if present. A missing
// file is not an error: it returns (nil, nil), meaning "no override here."
func LoadOverride(path string) (*Override, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var f overrideFile
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	o := &Override{
		IgnoreGlobs:      f.IgnoreGlobs,
		UseLegacyScripts: f.UseLegacyScripts,
	}
	for _, rule := range f.SyncRules {
		o.SyncRules = append(o.SyncRules, api.SyncRule{
			Pattern: rule.Pattern,
			Class:   rule.Class,
			Child:   rule.Child,
		})
	}
	return o, nil
}

// RenderOverride serializes o back into .argon.hcl text, formatted with
// hclwrite.Format — the same formatter internal/writeback/format.go applies
// to .tf/.hcl files during write-back, given a concrete home here instead
// of being dropped for lack of a Go/HCL write-back target elsewhere in the
// domain.
func RenderOverride(o *Override) []byte {
	var b strings.Builder

	if len(o.IgnoreGlobs) > 0 {
		b.WriteString("ignore_globs = [")
		for i, g := range o.IgnoreGlobs {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q", g)
		}
		b.WriteString("]\n")
	}

	if o.UseLegacyScripts != nil {
		fmt.Fprintf(&b, "use_legacy_scripts = %v\n", *o.UseLegacyScripts)
	}

	for _, rule := range o.SyncRules {
		fmt.Fprintf(&b, "\nsync_rule %q {\n  pattern = %q\n", rule.Class, rule.Pattern)
		if rule.Child != "" {
			fmt.Fprintf(&b, "  child   = %q\n", rule.Child)
		}
		b.WriteString("}\n")
	}

	return hclwrite.Format([]byte(b.String()))
}
