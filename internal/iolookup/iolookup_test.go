package iolookup_test

import (
	"os"
	"testing"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/internal/iolookup"
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/errcode"
	"github.com/growthcenter/esdash/pkg/lookup"
	"github.com/growthcenter/esdash/pkg/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tests := []struct {
		msg     string
		content string
		write   bool
		layers  int
		errCode gn.ErrorCode
	}{
		{
			msg:    "missing file uses defaults",
			layers: len(lookup.Default().Layers),
		},
		{
			msg:     "embedded template",
			content: templates.LookupsYAML,
			write:   true,
			layers:  len(lookup.Default().Layers),
		},
		{
			msg: "custom layers",
			content: `
layers:
  - {code: G1, label: Top}
  - {code: G2, label: Bottom}
tenure:
  edges: [0, 5]
  labels: ["<5", "5+"]
`,
			write:  true,
			layers: 2,
		},
		{
			msg:     "broken tenure",
			content: "tenure:\n  edges: [5, 1]\n  labels: [a, b]\n",
			write:   true,
			errCode: errcode.LookupsConfigError,
		},
	}

	for _, v := range tests {
		home := t.TempDir()
		if v.write {
			require.NoError(t, os.MkdirAll(config.ConfigDir(home), 0755), v.msg)
			err := os.WriteFile(config.LookupsFilePath(home), []byte(v.content), 0644)
			require.NoError(t, err, v.msg)
		}

		res, err := iolookup.Load(home)
		if v.errCode != 0 {
			require.Error(t, err, v.msg)
			gnErr, ok := err.(*gn.Error)
			require.True(t, ok, v.msg)
			assert.Equal(t, v.errCode, gnErr.Code, v.msg)
			continue
		}
		require.NoError(t, err, v.msg)
		assert.Len(t, res.Layers, v.layers, v.msg)
	}
}
