// Package embedded provides the checklist templates and probe sets
// compiled into the aigov binary, so init and probe runs work without a
// network or a repo checkout.
package embedded

import "embed"

// Checklists contains one Markdown checklist body per framework.
// Frontmatter is attached when a checklist is materialized into a library.
//
//go:embed checklists
var Checklists embed.FS

// Probes contains the built-in probe set definitions as YAML.
//
//go:embed probes
var Probes embed.FS
