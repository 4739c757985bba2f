package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// Test Plan for path utilities:
// - Relative returns "./" paths inside the root and "../" paths outside
// - Module and declaration FQNs carry both forms
// - LocalForm rewrites only project-internal global FQNs
// - Node module detection covers bare, relative, absolute and drive paths
// - PackageOf keeps scoped package names
// - Candidates lists extension and index fallbacks in order
// - PackageNames reads package.json names, maps @types and caches misses

func TestRelative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		root, target, want string
	}{
		{"/p", "/p/src/a.ts", "./src/a.ts"},
		{"/p/app", "/p/lib/b.ts", "../lib/b.ts"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Relative(tt.root, tt.target), tt.target)
	}
}

func TestFQNs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, concept.NewFQN(`"/p/src/a.ts"`, `"./src/a.ts"`), ModuleFQN("/p", "/p/src/a.ts"))
	assert.Equal(t, concept.NewFQN(`"/p/src/a.ts".A.m`, `"./src/a.ts".A.m`), DeclarationFQN("/p", "/p/src/a.ts", "A.m"))
	assert.Equal(t, concept.NewFQN(`"/p/lib"`, `"./lib"`), ModuleFQN("/p", "/p/lib/index.ts"))
}

func TestLocalForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, global, want string
	}{
		{"inside", `"/p/src/a.ts".A`, `"./src/a.ts".A`},
		{"module", `"/p/src/a.ts"`, `"./src/a.ts"`},
		{"outside", `"/other/b.ts".B`, `"/other/b.ts".B`},
		{"package", `"react".useState`, `"react".useState`},
		{"identifier", `Promise`, `Promise`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LocalForm("/p", tt.global))
			assert.Equal(t, concept.NewFQN(tt.global, tt.want), ToFQN("/p", tt.global))
		})
	}
}

func TestIsNodeModule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		specifier string
		want      bool
	}{
		{"react", true},
		{"@scope/pkg/sub", true},
		{"./a", false},
		{"../a", false},
		{"/abs/a", false},
		{`C:/x/a`, false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNodeModule(tt.specifier), tt.specifier)
	}

	assert.True(t, IsNodeModuleFQN(`"lodash".map`))
	assert.False(t, IsNodeModuleFQN(`"/p/a.ts".A`))
	assert.False(t, IsNodeModuleFQN(`Array`))
}

func TestPackageOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "react", PackageOf("react/jsx-runtime"))
	assert.Equal(t, "@scope/pkg", PackageOf("@scope/pkg/sub/path"))
	assert.Equal(t, "lodash", PackageOf("lodash"))
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	got := Candidates("/p/src/a.js")
	require.NotEmpty(t, got)
	assert.Equal(t, "/p/src/a.js", got[0])
	assert.Equal(t, "/p/src/a.ts", got[1])
	assert.Contains(t, got, "/p/src/a.js/index.ts")

	assert.Equal(t, "/p/a", StripSourceExtension("/p/a.d.ts"))
	assert.Equal(t, "/p/a", StripSourceExtension("/p/a.tsx"))
	assert.Equal(t, "/p/a.json", StripSourceExtension("/p/a.json"))
	assert.Equal(t, "/src/a.ts", GraphPath("./src/a.ts"))
}

func TestPackageNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pkgDir := filepath.Join(root, "node_modules", "alias")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(`{"name": "real-name"}`), 0o644))

	names, err := NewPackageNames(16)
	require.NoError(t, err)

	slashRoot := filepath.ToSlash(root)
	assert.Equal(t, "real-name", names.ForSpecifier(slashRoot, "alias/sub"))
	assert.Equal(t, "missing", names.ForSpecifier(slashRoot, "missing"))

	assert.Equal(t, "real-name", names.ForPath(slashRoot, slashRoot+"/node_modules/alias/lib/index.d.ts"))
	assert.Equal(t, "node", names.ForPath(slashRoot, slashRoot+"/node_modules/@types/node/fs.d.ts"))
	assert.Equal(t, "@scope/pkg", names.ForPath(slashRoot, slashRoot+"/node_modules/@types/scope__pkg/index.d.ts"))
	assert.Equal(t, "", names.ForPath(slashRoot, slashRoot+"/src/a.ts"))
}
