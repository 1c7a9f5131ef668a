package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageCmd_Use(t *testing.T) {
	assert.Equal(t, "storage", storageCmd.Use)
}

func TestStorageCmd_HasSubcommands(t *testing.T) {
	commands := storageCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "count")
	assert.Contains(t, commandNames, "clear")
}

func TestStorageCountCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"storage", "count"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "42 records stored.")
}

func TestStorageCountCmd_ServiceNotConfigured(t *testing.T) {
	oldService := storageService
	storageService = nil
	defer func() {
		storageService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"storage", "count"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "storage service not configured")
}

func TestStorageCountCmd_ServiceError(t *testing.T) {
	oldService := storageService
	storageService = &mockStorageService{err: errors.New("store closed")}
	defer func() {
		storageService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"storage", "count"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count records")
}

func TestStorageClearCmd_WithYesFlag(t *testing.T) {
	oldService := storageService
	mock := &mockStorageService{}
	storageService = mock
	defer func() {
		storageService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"storage", "clear", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
		clearYes = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, mock.cleared)
	assert.Contains(t, buf.String(), "Storage cleared.")
}

func TestStorageClearCmd_ConfirmedInteractively(t *testing.T) {
	oldService := storageService
	mock := &mockStorageService{}
	storageService = mock
	defer func() {
		storageService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("y\n"))
	rootCmd.SetArgs([]string{"storage", "clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, mock.cleared)
	assert.Contains(t, buf.String(), "Remove all stored records?")
	assert.Contains(t, buf.String(), "Storage cleared.")
}

func TestStorageClearCmd_Aborts(t *testing.T) {
	oldService := storageService
	mock := &mockStorageService{}
	storageService = mock
	defer func() {
		storageService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("n\n"))
	rootCmd.SetArgs([]string{"storage", "clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.False(t, mock.cleared)
	assert.Contains(t, buf.String(), "Aborted.")
}

func TestStorageClearCmd_ServiceError(t *testing.T) {
	oldService := storageService
	storageService = &mockStorageService{err: errors.New("store closed")}
	defer func() {
		storageService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"storage", "clear", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
		clearYes = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear storage")
}
