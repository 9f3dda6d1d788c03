package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AdguardTeam/golibs/testutil"
	"github.com/lootkeeper/lootfilter/filterlist"
	"github.com/lootkeeper/lootfilter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile writes data into the file name in dir and returns its path.
func writeFile(tb testing.TB, dir, name, data string) (path string) {
	tb.Helper()

	path = filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, []byte(data), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		want       *config.Config
		name       string
		data       string
		wantErrMsg string
	}{{
		want:       config.Default(),
		name:       "empty",
		data:       "",
		wantErrMsg: "",
	}, {
		want: &config.Config{
			InsertionMarker: "[[0200]]",
			StackedVariants: []*config.StackedVariant{{
				Type:         "currency->stackedten",
				SourceType:   "currency",
				MinStackSize: 10,
			}},
			ManagementRules: false,
		},
		name: "full",
		data: `insertion_marker: '[[0200]]'
stacked_variants:
  - type: 'currency->stackedten'
    source_type: 'currency'
    min_stack_size: 10
management_rules: false
`,
		wantErrMsg: "",
	}, {
		want:       nil,
		name:       "unknown_field",
		data:       "insertion_markr: '[[0200]]'\n",
		wantErrMsg: "",
	}, {
		want:       nil,
		name:       "empty_marker",
		data:       "insertion_marker: ''\n",
		wantErrMsg: "insertion_marker: empty value",
	}, {
		want: nil,
		name: "bad_variant",
		data: `stacked_variants:
  - type: 'a'
    min_stack_size: 3
  - type: 'b'
    source_type: 'c'
    min_stack_size: -1
`,
		wantErrMsg: "stacked_variants: at index 0: source_type: empty value\n" +
			"stacked_variants: at index 1: min_stack_size: negative value: -1",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), "config.yaml", tc.data)

			c, err := config.Load(path)
			if tc.want == nil {
				require.Error(t, err)
				assert.Nil(t, c)

				if tc.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tc.wantErrMsg)
				}

				return
			}

			require.NoError(t, err)

			assert.Equal(t, tc.want.InsertionMarker, c.InsertionMarker)
			assert.Equal(t, tc.want.StackedVariants, c.StackedVariants)
			assert.Equal(t, tc.want.ManagementRules, c.ManagementRules)
		})
	}
}

func TestLoad_noPath(t *testing.T) {
	t.Parallel()

	c, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, filterlist.DefaultInsertionMarker, c.InsertionMarker)
	assert.True(t, c.ManagementRules)
	assert.Len(t, c.StackedVariants, len(filterlist.DefaultStackedVariants))

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_ImportConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "custom.filter", "Show # $type->custom $tier->a\n\tRarity Unique\n")
	path := writeFile(t, dir, "config.yaml", "custom_rules_path: 'custom.filter'\n")

	c, err := config.Load(path)
	require.NoError(t, err)

	conf, err := c.ImportConfig()
	require.NoError(t, err)

	assert.Equal(t, "Show # $type->custom $tier->a\n\tRarity Unique\n", conf.CustomRules)
	assert.True(t, conf.ManagementRules)
	assert.Equal(t, filterlist.DefaultStackedVariants, conf.StackedVariants)

	c.CustomRulesPath = "missing.filter"
	_, err = c.ImportConfig()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	var c *config.Config
	testutil.AssertErrorMsg(t, "no value", c.Validate())

	c = config.Default()
	c.StackedVariants = append(c.StackedVariants, nil)
	testutil.AssertErrorMsg(t, "stacked_variants: at index 2: no value", c.Validate())
}
