package unpkg

import "strings"

// DefaultEntry is used when a manifest names no entry point at all.
const DefaultEntry = "index.js"

// Manifest is the subset of package.json the bundler reads.
type Manifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Exports          any               `json:"exports"`
	Module           string            `json:"module"`
	Main             string            `json:"main"`
	Dependencies     map[string]string `json:"dependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`

	// Raw is the document as served by the registry.
	Raw []byte `json:"-"`
}

// EntryPoint returns the manifest's importable module root.
func (m *Manifest) EntryPoint() string { return EntryPoint(m) }

// Requires returns the union of dependencies and peerDependencies.
// A name present in both keeps its dependencies spec.
func (m *Manifest) Requires() map[string]string {
	out := make(map[string]string, len(m.Dependencies)+len(m.PeerDependencies))
	for name, spec := range m.PeerDependencies {
		out[name] = spec
	}
	for name, spec := range m.Dependencies {
		out[name] = spec
	}
	return out
}

// EntryPoint resolves the entry file of m. A nil manifest resolves to
// [DefaultEntry].
func EntryPoint(m *Manifest) string {
	if m == nil {
		return DefaultEntry
	}
	return strings.TrimPrefix(entryPoint(m), "./")
}

func entryPoint(m *Manifest) string {
	switch exp := m.Exports.(type) {
	case map[string]any:
		if s, ok := exp["import"].(string); ok && s != "" {
			return s
		}
		if dot, ok := exp["."].(map[string]any); ok {
			if s, ok := dot["import"].(string); ok && s != "" {
				return s
			}
			if s, ok := dot["default"].(string); ok && s != "" {
				return s
			}
		}
		if s, ok := exp["."].(string); ok && s != "" {
			return s
		}
	case string:
		if exp != "" {
			return exp
		}
	}
	if m.Module != "" {
		return m.Module
	}
	if m.Main != "" {
		return m.Main
	}
	return DefaultEntry
}
