package unpkg

import (
	"testing"
)

func TestEntryPointPrecedence(t *testing.T) {
	full := func() *Manifest {
		return &Manifest{
			Exports: map[string]any{
				"import": "./esm/top.js",
				".": map[string]any{
					"import":  "./esm/dot.js",
					"default": "./dist/dot.cjs",
				},
			},
			Module: "./module.js",
			Main:   "./main.js",
		}
	}

	tests := []struct {
		name   string
		mutate func(m *Manifest)
		want   string
	}{
		{"exports.import wins", func(m *Manifest) {}, "esm/top.js"},
		{"exports dot import", func(m *Manifest) {
			delete(m.Exports.(map[string]any), "import")
		}, "esm/dot.js"},
		{"exports dot default", func(m *Manifest) {
			exp := m.Exports.(map[string]any)
			delete(exp, "import")
			delete(exp["."].(map[string]any), "import")
		}, "dist/dot.cjs"},
		{"module", func(m *Manifest) { m.Exports = nil }, "module.js"},
		{"main", func(m *Manifest) {
			m.Exports = nil
			m.Module = ""
		}, "main.js"},
		{"fallback", func(m *Manifest) {
			m.Exports = nil
			m.Module = ""
			m.Main = ""
		}, "index.js"},
		{"string exports", func(m *Manifest) { m.Exports = "./lib/index.mjs" }, "lib/index.mjs"},
		{"string dot export", func(m *Manifest) {
			m.Exports = map[string]any{".": "./lib/dot.mjs"}
		}, "lib/dot.mjs"},
		{"unrelated exports map", func(m *Manifest) {
			m.Exports = map[string]any{"./package.json": "./package.json"}
		}, "module.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := full()
			tt.mutate(m)
			if got := EntryPoint(m); got != tt.want {
				t.Errorf("EntryPoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntryPointEmptyManifest(t *testing.T) {
	if got := EntryPoint(&Manifest{}); got != DefaultEntry {
		t.Errorf("EntryPoint(empty) = %q, want %q", got, DefaultEntry)
	}
	if got := EntryPoint(nil); got != DefaultEntry {
		t.Errorf("EntryPoint(nil) = %q, want %q", got, DefaultEntry)
	}
}

func TestEntryPointKeepsNestedDotSlash(t *testing.T) {
	m := &Manifest{Main: "lib/./x.js"}
	if got := m.EntryPoint(); got != "lib/./x.js" {
		t.Errorf("EntryPoint() = %q, want %q", got, "lib/./x.js")
	}
}

func TestParseManifestDecodesExports(t *testing.T) {
	raw := []byte(`{
		"name": "lit",
		"version": "3.1.0",
		"exports": {".": {"import": "./index.js", "default": "./index.cjs"}},
		"dependencies": {"lit-html": "^3.1.0"},
		"peerDependencies": {"react": "*"}
	}`)

	m, err := ParseManifest(raw)
	if err != nil {
		t.Fatalf("ParseManifest() error: %v", err)
	}
	if m.EntryPoint() != "index.js" {
		t.Errorf("EntryPoint() = %q, want index.js", m.EntryPoint())
	}
	if string(m.Raw) != string(raw) {
		t.Error("Raw should hold the original document")
	}
	if m.Dependencies["lit-html"] != "^3.1.0" {
		t.Errorf("Dependencies = %v", m.Dependencies)
	}
}

func TestRequiresUnion(t *testing.T) {
	m := &Manifest{
		Dependencies:     map[string]string{"a": "^1.0.0", "shared": "^2.0.0"},
		PeerDependencies: map[string]string{"b": "*", "shared": "^1.0.0"},
	}

	got := m.Requires()
	want := map[string]string{"a": "^1.0.0", "b": "*", "shared": "^2.0.0"}
	if len(got) != len(want) {
		t.Fatalf("Requires() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Requires()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
