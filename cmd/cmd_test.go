package cmd

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommand(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	t.Setenv("LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"migrate"})
	require.NoError(t, rootCmd.Execute())
}

func TestMigrateCommand_Memory(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"migrate"})
	assert.NoError(t, rootCmd.Execute())
}

func TestMigrateCommand_BadDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"migrate"})
	assert.ErrorContains(t, rootCmd.Execute(), "unsupported database driver")
}

func TestServeCommandRegistered(t *testing.T) {
	serve, _, err := rootCmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	assert.NotNil(t, serve.Flags().Lookup("consume-events"))
}
