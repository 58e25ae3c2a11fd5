package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gaiac/pkg/gaia"
	"github.com/leapstack-labs/gaiac/pkg/ism"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	assert.Equal(t, gaia.DefaultEngine, cfg.Compile.Engine)
	assert.Equal(t, gaia.DefaultPSM, cfg.Compile.PSM)
	assert.Equal(t, ism.DefaultFieldOverlapThreshold, cfg.Merge.FieldOverlapThreshold)
	assert.Equal(t, OutputTable, cfg.Output)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Compile: CompileConfig{Engine: "clickhouse", PSM: "var:OTHER_DSN"},
		Merge:   MergeConfig{FieldOverlapThreshold: 0.8},
		Output:  OutputJSON,
	}
	ApplyDefaults(&cfg)

	assert.Equal(t, "clickhouse", cfg.Compile.Engine)
	assert.Equal(t, "var:OTHER_DSN", cfg.Compile.PSM)
	assert.Equal(t, 0.8, cfg.Merge.FieldOverlapThreshold)
	assert.Equal(t, OutputJSON, cfg.Output)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errSubstr string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:      "threshold zero",
			mutate:    func(c *Config) { c.Merge.FieldOverlapThreshold = -0.1 },
			wantErr:   true,
			errSubstr: "field_overlap_threshold",
		},
		{
			name:      "threshold above one",
			mutate:    func(c *Config) { c.Merge.FieldOverlapThreshold = 1.5 },
			wantErr:   true,
			errSubstr: "field_overlap_threshold",
		},
		{
			name:      "unknown output",
			mutate:    func(c *Config) { c.Output = "xml" },
			wantErr:   true,
			errSubstr: "output must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			ApplyDefaults(&cfg)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildTables_LayersOverrides(t *testing.T) {
	cfg := Config{Tables: TablesConfig{
		ExpressionLexicon: map[string]string{"国家": "country"},
		NameSynonyms:      map[string]string{"消耗月报": "consumption_monthly"},
		TimeKeywords:      []string{"周期"},
		RequiredKeywords:  []string{"编码"},
	}}

	tables := cfg.BuildTables()

	// Overrides are present.
	assert.Equal(t, "country", tables.ExpressionLexicon["国家"])
	assert.Equal(t, "consumption_monthly", tables.NameSynonyms["消耗月报"])
	assert.True(t, tables.IsTimeLike("周期"))
	assert.True(t, tables.IsRequiredName("素材编码"))

	// Defaults stay in place alongside them.
	assert.Equal(t, "cost", tables.ExpressionLexicon["消耗"])
	assert.True(t, tables.IsTimeLike("日期"))
}

func TestBuildTables_DoesNotMutateDefaults(t *testing.T) {
	cfg := Config{Tables: TablesConfig{
		ExpressionLexicon: map[string]string{"消耗": "spend"},
	}}
	_ = cfg.BuildTables()

	fresh := ism.DefaultTables()
	assert.Equal(t, "cost", fresh.ExpressionLexicon["消耗"])
}

func TestMergeOptions(t *testing.T) {
	cfg := Config{Merge: MergeConfig{FieldOverlapThreshold: 0.7}}
	opts := cfg.MergeOptions()

	assert.Equal(t, 0.7, opts.FieldOverlapThreshold)
	require.NotNil(t, opts.Tables)
	assert.Equal(t, "cost", opts.Tables.ExpressionLexicon["消耗"])
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, gaia.DefaultEngine, cfg.Compile.Engine)
	assert.Equal(t, gaia.DefaultPSM, cfg.Compile.PSM)
	assert.Equal(t, ism.DefaultFieldOverlapThreshold, cfg.Merge.FieldOverlapThreshold)
	assert.Equal(t, OutputTable, cfg.Output)
	assert.False(t, cfg.Verbose)
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, ConfigFileName)
	cfgContent := `compile:
  engine: clickhouse
  psm: var:OTHER_DSN
merge:
  field_overlap_threshold: 0.7
output: json
tables:
  expression_lexicon:
    国家: country
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0600))

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "clickhouse", cfg.Compile.Engine)
	assert.Equal(t, "var:OTHER_DSN", cfg.Compile.PSM)
	assert.Equal(t, 0.7, cfg.Merge.FieldOverlapThreshold)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, "country", cfg.Tables.ExpressionLexicon["国家"])
	assert.Equal(t, tmpDir, cfg.ProjectRoot)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, ConfigFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("compile:\n  engine: from_file\n"), 0600))

	require.NoError(t, os.Setenv("GAIAC_ENGINE", "from_env"))
	defer func() { _ = os.Unsetenv("GAIAC_ENGINE") }()

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Compile.Engine)
}

func TestLoad_FlagPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, ConfigFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("compile:\n  engine: from_file\n"), 0600))

	require.NoError(t, os.Setenv("GAIAC_ENGINE", "from_env"))
	defer func() { _ = os.Unsetenv("GAIAC_ENGINE") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("engine", "", "query engine")
	require.NoError(t, flags.Set("engine", "from_flag"))

	cfg, err := Load(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.Compile.Engine)
}

func TestLoad_UnchangedFlagFallsBackToEnv(t *testing.T) {
	require.NoError(t, os.Setenv("GAIAC_PSM", "var:ENV_DSN"))
	defer func() { _ = os.Unsetenv("GAIAC_PSM") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("psm", "", "cluster reference")

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "var:ENV_DSN", cfg.Compile.PSM)
}

func TestLoad_NestedEnvKey(t *testing.T) {
	require.NoError(t, os.Setenv("GAIAC_COMPILE__ENGINE", "starrocks"))
	defer func() { _ = os.Unsetenv("GAIAC_COMPILE__ENGINE") }()

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "starrocks", cfg.Compile.Engine)
}

func TestLoad_ThresholdFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("overlap-threshold", 0, "merge threshold")
	require.NoError(t, flags.Set("overlap-threshold", "0.9"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Merge.FieldOverlapThreshold)
}

func TestLoad_InvalidThresholdRejected(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, ConfigFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("merge:\n  field_overlap_threshold: 2.0\n"), 0600))

	_, err := Load(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field_overlap_threshold")
}
