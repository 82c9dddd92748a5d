package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCreateCmd(t *testing.T) {
	cmd := getCreateCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "create", cmd.Use)
	assert.Contains(t, cmd.Short, "schema")
	assert.Contains(t, cmd.Long, "GORM AutoMigrate")
	assert.Contains(t, cmd.Long, "collation")
	assert.NotNil(t, cmd.RunE)

	forceFlag := cmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "f", forceFlag.Shorthand)
	assert.Equal(t, "false", forceFlag.DefValue)
	assert.Contains(t, forceFlag.Usage, "drop")
}

func TestGetCreateCmd_HelpText(t *testing.T) {
	cmd := getCreateCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	help := buf.String()
	assert.Contains(t, help, "esdash create --force")
	assert.Contains(t, help, "Examples:")
}

func TestGetCreateCmd_IndependentInstances(t *testing.T) {
	cmd1 := getCreateCmd()
	cmd2 := getCreateCmd()
	assert.NotSame(t, cmd1, cmd2)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		msg, input string
		res        bool
	}{
		{"yes", "yes\n", true},
		{"y", "Y\n", true},
		{"no", "no\n", false},
		{"empty line", "\n", false},
		{"no newline", "yes", true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		res, err := confirm(strings.NewReader(tt.input), &out)
		require.NoError(t, err, tt.msg)
		assert.Equal(t, tt.res, res, tt.msg)
		assert.Contains(t, out.String(), "continue?", tt.msg)
	}

	_, err := confirm(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}
