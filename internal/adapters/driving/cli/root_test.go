package cli

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "passel", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	setupTestServices(t)
	defer logger.SetVerbose(false)

	_, _, err := execute("version", "--verbose")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestRootCmd_ConfigFlagReachesOpener(t *testing.T) {
	ws, _ := setupTestServices(t)
	var got string
	opener = func(path string) (*Services, error) {
		got = path
		return &Services{Workspace: ws}, nil
	}

	_, _, err := execute("config", "path", "--config", "/etc/passel.toml")

	require.NoError(t, err)
	assert.Equal(t, "/etc/passel.toml", got)
}

func TestOpenServices_OpenerError(t *testing.T) {
	setupTestServices(t)
	opener = func(string) (*Services, error) {
		return nil, errors.New("permission denied")
	}

	_, _, err := execute("config", "path")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestExecute_ClosesServices(t *testing.T) {
	ws, _ := setupTestServices(t)
	closed := false
	opener = func(string) (*Services, error) {
		return &Services{Workspace: ws, Close: func() error {
			closed = true
			return nil
		}}, nil
	}
	rootCmd.SetOut(io.Discard)
	rootCmd.SetArgs([]string{"config", "path"})

	err := Execute()

	require.NoError(t, err)
	assert.True(t, closed)
	assert.Nil(t, services)
}

func TestExecute_ReportsCloseError(t *testing.T) {
	ws, _ := setupTestServices(t)
	opener = func(string) (*Services, error) {
		return &Services{Workspace: ws, Close: func() error {
			return errors.New("close failed")
		}}, nil
	}
	rootCmd.SetOut(io.Discard)
	rootCmd.SetArgs([]string{"config", "path"})

	err := Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
}
