package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjhan/stagesync/internal/layout"
)

func TestDefault(t *testing.T) {
	root := t.TempDir()
	cfg := Default(root)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, root, cfg.Root)
	assert.Len(t, cfg.Stages, 5)
	assert.Len(t, cfg.Areas, 5)
	assert.Empty(t, cfg.Exclude)
}

func TestDefault_DoesNotAliasPackageTables(t *testing.T) {
	cfg := Default(t.TempDir())

	cfg.Stages[0] = "mutated"
	cfg.Areas[0] = layout.AreaMapping{Area: "Mutated", Dest: "elsewhere"}

	assert.Equal(t, "S1_기획", layout.DefaultStages[0])
	assert.Equal(t, layout.AreaMapping{Area: "Frontend", Dest: "pages"}, layout.DefaultAreas[0])
}

func TestLoad_OverridesTables(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "stagesync.yaml")
	content := []byte(`stages:
  - P1_alpha
  - P2_beta
areas:
  - area: Web
    dest: pages
  - area: Server
    dest: api/server
exclude:
  - dist
  - coverage
`)
	require.NoError(t, os.WriteFile(cfgPath, content, 0o600))

	cfg, err := Load(cfgPath, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"P1_alpha", "P2_beta"}, cfg.Stages)
	assert.Equal(t, []layout.AreaMapping{
		{Area: "Web", Dest: "pages"},
		{Area: "Server", Dest: "api/server"},
	}, cfg.Areas)
	assert.Equal(t, []string{"dist", "coverage"}, cfg.Exclude)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "stagesync.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("exclude: [build]\n"), 0o600))

	cfg, err := Load(cfgPath, root)
	require.NoError(t, err)

	assert.Equal(t, layout.DefaultStages, cfg.Stages)
	assert.Equal(t, layout.DefaultAreas, cfg.Areas)
	assert.Equal(t, []string{"build"}, cfg.Exclude)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "stagesync.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("stages: [unclosed"), 0o600))

	_, err := Load(cfgPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestValidate(t *testing.T) {
	root := t.TempDir()

	valid := func() *Config { return Default(root) }

	for _, tc := range []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty root",
			mutate:  func(c *Config) { c.Root = "" },
			wantErr: "root is required",
		},
		{
			name:    "relative root",
			mutate:  func(c *Config) { c.Root = "some/dir" },
			wantErr: "absolute",
		},
		{
			name:    "no stages",
			mutate:  func(c *Config) { c.Stages = nil },
			wantErr: "at least one stage",
		},
		{
			name:    "stage with separator",
			mutate:  func(c *Config) { c.Stages = []string{"a/b"} },
			wantErr: "path separators",
		},
		{
			name:    "no areas",
			mutate:  func(c *Config) { c.Areas = nil },
			wantErr: "at least one area",
		},
		{
			name:    "empty area name",
			mutate:  func(c *Config) { c.Areas = []layout.AreaMapping{{Area: "", Dest: "pages"}} },
			wantErr: "invalid area name",
		},
		{
			name:    "empty destination",
			mutate:  func(c *Config) { c.Areas = []layout.AreaMapping{{Area: "Web", Dest: ""}} },
			wantErr: "must not be empty",
		},
		{
			name:    "absolute destination",
			mutate:  func(c *Config) { c.Areas = []layout.AreaMapping{{Area: "Web", Dest: "/pages"}} },
			wantErr: "relative",
		},
		{
			name:    "escaping destination",
			mutate:  func(c *Config) { c.Areas = []layout.AreaMapping{{Area: "Web", Dest: "../outside"}} },
			wantErr: "escape",
		},
		{
			name:    "sneaky escaping destination",
			mutate:  func(c *Config) { c.Areas = []layout.AreaMapping{{Area: "Web", Dest: "pages/../../outside"}} },
			wantErr: "escape",
		},
		{
			name:    "exclude with separator",
			mutate:  func(c *Config) { c.Exclude = []string{`build\cache`} },
			wantErr: "path separators",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPathHelpers(t *testing.T) {
	root := t.TempDir()
	cfg := Default(root)
	m := layout.AreaMapping{Area: "Backend", Dest: "api/backend"}

	assert.Equal(t, filepath.Join(root, "S2_개발-1차"), cfg.StageDir("S2_개발-1차"))
	assert.Equal(t, filepath.Join(root, "S2_개발-1차", "Backend"), cfg.AreaDir("S2_개발-1차", m))
	assert.Equal(t, filepath.Join(root, "api", "backend"), cfg.DestDir(m))
}

func TestDestRoots(t *testing.T) {
	cfg := Default(t.TempDir())
	assert.Equal(t, []string{"pages", "api"}, cfg.DestRoots())

	cfg.Areas = []layout.AreaMapping{
		{Area: "Web", Dest: "public"},
		{Area: "Server", Dest: "public/server"},
	}
	assert.Equal(t, []string{"public"}, cfg.DestRoots())
}
