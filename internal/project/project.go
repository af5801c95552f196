// Package project implements the one external-collaborator boundary
// spec.md §1 keeps explicitly out of core scope: loading the project file
// (JSON) described in spec.md §6. It is a thin decode-only layer, grounded
// on original_source/src/core/mod.rs's project-loading call sites, which
// likewise do nothing beyond deserialize and resolve the path.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/argonsync/argon/api"
)

// Load reads and decodes the project file at path into an api.Project,
// resolving its Path field to an absolute path relative to the project
// file's own directory when it is given as relative.
func Load(path string) (*api.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}

	var p api.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("project: decode %s: %w", path, err)
	}

	if p.Path == "" {
		p.Path = "."
	}
	if !filepath.IsAbs(p.Path) {
		p.Path = filepath.Join(filepath.Dir(path), p.Path)
	}

	return &p, nil
}
