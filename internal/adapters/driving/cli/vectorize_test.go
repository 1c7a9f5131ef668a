package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

func TestVectorizeCmd_Use(t *testing.T) {
	assert.Equal(t, "vectorize [root]", vectorizeCmd.Use)
}

func TestVectorizeCmd_Short(t *testing.T) {
	assert.Equal(t, "Vectorise a file tree", vectorizeCmd.Short)
}

func TestVectorizeCmd_Long(t *testing.T) {
	assert.Contains(t, vectorizeCmd.Long, "embeds every")
	assert.Contains(t, vectorizeCmd.Long, "aggregate")
}

func TestVectorizeCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"vectorize"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestVectorizeCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"vectorize", "/tree"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Vectorising /tree...")
	assert.Contains(t, buf.String(), "Processed 3 paths (0 errors).")
}

func TestVectorizeCmd_ReportsFailures(t *testing.T) {
	oldService := vectorizeService
	mock := &mockVectorizeOrchestrator{
		report: &domain.VectorizeReport{
			Processed: 2,
			Errors:    1,
			Failures: []domain.PathError{
				{Path: "/tree/broken.bin", Err: "embed: connection refused"},
			},
		},
	}
	vectorizeService = mock
	defer func() {
		vectorizeService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"vectorize", "/tree"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "/tree", mock.gotRoot)
	assert.Contains(t, buf.String(), "Processed 2 paths (1 errors).")
	assert.Contains(t, buf.String(), "/tree/broken.bin: embed: connection refused")
}

func TestVectorizeCmd_ServiceNotConfigured(t *testing.T) {
	oldService := vectorizeService
	vectorizeService = nil
	defer func() {
		vectorizeService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"vectorize", "/tree"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vectorize service not configured")
}

func TestVectorizeCmd_ServiceError(t *testing.T) {
	oldService := vectorizeService
	vectorizeService = &mockVectorizeOrchestrator{err: errors.New("worker pool exhausted")}
	defer func() {
		vectorizeService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"vectorize", "/tree"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vectorize failed")
}

func TestVectorizeCmd_PrintsPartialReportOnError(t *testing.T) {
	oldService := vectorizeService
	vectorizeService = &mockVectorizeOrchestrator{
		report: &domain.VectorizeReport{Processed: 5, Errors: 2},
		err:    errors.New("cancelled"),
	}
	defer func() {
		vectorizeService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"vectorize", "/tree"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, buf.String(), "Processed 5 paths (2 errors).")
}
