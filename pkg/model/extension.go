// Package model provides the data structures shared between the catalog
// builder, the acquisition orchestrator and the mirror server: extension
// metadata, the wrapped JSON envelope used by the upstream API, and release
// version manifests.
package model

import "strings"

// Extension is an immutable snapshot of an extension's marketplace metadata.
// A later catalog fetch replaces the whole value; individual fields are never
// mutated in place.
type Extension struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Description    string   `json:"description"`
	Authors        []string `json:"authors"`
	Repository     string   `json:"repository,omitempty"`
	SchemaVersion  int      `json:"schema_version"`
	WasmAPIVersion string   `json:"wasm_api_version,omitempty"`
	PublishedAt    string   `json:"published_at,omitempty"`
	DownloadCount  int      `json:"download_count"`
	Provides       []string `json:"provides"`
}

// ProvidesCapability reports whether the extension declares the given
// capability tag.
func (e *Extension) ProvidesCapability(capability string) bool {
	for _, p := range e.Provides {
		if p == capability {
			return true
		}
	}
	return false
}

// Extensions is a collection of extension snapshots.
type Extensions []Extension

// WrappedExtensions is the JSON envelope the upstream API wraps extension
// lists in. The same envelope is used for the persisted catalog and the
// per-extension versions.json files.
type WrappedExtensions struct {
	Data Extensions `json:"data"`
}

// FilterOptions collects the criteria accepted by the catalog listing and
// update-check endpoints. Zero values mean "no bound".
type FilterOptions struct {
	// Text is matched case-insensitively against id, name and description.
	Text string
	// MinSchemaVersion / MaxSchemaVersion bound the schema version when the
	// corresponding Has flag is set.
	MinSchemaVersion    int
	HasMinSchemaVersion bool
	MaxSchemaVersion    int
	HasMaxSchemaVersion bool
	// MinWasmAPIVersion / MaxWasmAPIVersion are compared as plain strings,
	// matching the upstream behavior. Extensions without a wasm_api_version
	// always pass these bounds.
	MinWasmAPIVersion string
	MaxWasmAPIVersion string
	// Provides requires the extension to declare the capability tag.
	Provides string
	// IDs restricts the result to the given extension ids. A nil slice means
	// no restriction; callers that want an empty result for an empty id set
	// must short-circuit before filtering.
	IDs []string
}

// Filter returns the extensions matching every criterion in opts. The input
// slice is not modified.
func (exts Extensions) Filter(opts FilterOptions) Extensions {
	out := make(Extensions, 0, len(exts))

	idSet := make(map[string]struct{}, len(opts.IDs))
	for _, id := range opts.IDs {
		idSet[id] = struct{}{}
	}

	needle := strings.ToLower(opts.Text)

	for _, ext := range exts {
		if opts.HasMaxSchemaVersion && ext.SchemaVersion > opts.MaxSchemaVersion {
			continue
		}
		if opts.HasMinSchemaVersion && ext.SchemaVersion < opts.MinSchemaVersion {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(ext.Name), needle) &&
			!strings.Contains(strings.ToLower(ext.ID), needle) &&
			!strings.Contains(strings.ToLower(ext.Description), needle) {
			continue
		}
		if opts.Provides != "" && !ext.ProvidesCapability(opts.Provides) {
			continue
		}
		if len(idSet) > 0 {
			if _, ok := idSet[ext.ID]; !ok {
				continue
			}
		}
		if ext.WasmAPIVersion != "" {
			// Lexicographic on purpose: this mirrors the upstream comparison
			// exactly, multi-digit components and all.
			if opts.MinWasmAPIVersion != "" && ext.WasmAPIVersion < opts.MinWasmAPIVersion {
				continue
			}
			if opts.MaxWasmAPIVersion != "" && ext.WasmAPIVersion > opts.MaxWasmAPIVersion {
				continue
			}
		}
		out = append(out, ext)
	}

	return out
}
