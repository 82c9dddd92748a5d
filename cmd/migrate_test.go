package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrateCmd(t *testing.T) {
	cmd := getMigrateCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "migrate", cmd.Use)
	assert.Contains(t, cmd.Long, "GORM AutoMigrate")

	views := cmd.Flags().Lookup("no-views")
	require.NotNil(t, views)
	assert.Equal(t, "false", views.DefValue)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "esdash migrate")
}

func TestGetExportCmd(t *testing.T) {
	cmd := getExportCmd()
	assert.Equal(t, "export", cmd.Use)
	for _, f := range []string{"years", "refresh", "no-progress"} {
		assert.NotNil(t, cmd.Flags().Lookup(f), f)
	}
}
