package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// Stats Tests

func TestStatsCmd_Use(t *testing.T) {
	assert.Equal(t, "stats", statsCmd.Use)
}

func TestStatsCmd_Short(t *testing.T) {
	assert.Equal(t, "Show collection statistics", statsCmd.Short)
}

func TestStatsCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Collection")
	assert.Contains(t, buf.String(), "Documents:  2")
	assert.Contains(t, buf.String(), "Chunks:     8")
	assert.Contains(t, buf.String(), "Vectors:    8")
	assert.Contains(t, buf.String(), "Model:      test-embed")
	assert.NotContains(t, buf.String(), "Quarantined")
}

func TestStatsCmd_ShowsQuarantine(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	adminService = &mockAdminServiceDrift{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Quarantined: 1")
	assert.Contains(t, buf.String(), "winnow verify")
}

func TestStatsCmd_ServiceNotConfigured(t *testing.T) {
	oldService := adminService
	adminService = nil
	defer func() {
		adminService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval engine not configured")
}

func TestStatsCmd_ServiceError(t *testing.T) {
	oldService := adminService
	adminService = &mockAdminServiceError{}
	defer func() {
		adminService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to collect stats")
}

// Verify Tests

func TestVerifyCmd_Use(t *testing.T) {
	assert.Equal(t, "verify", verifyCmd.Use)
}

func TestVerifyCmd_CleanIndexes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"verify"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Indexes are in lockstep.")
}

func TestVerifyCmd_ReportsDrift(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	adminService = &mockAdminServiceDrift{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"verify"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConsistency))
	assert.Contains(t, buf.String(), "only in the keyword index")
	assert.Contains(t, buf.String(), "doc-1:00002")
	assert.Contains(t, buf.String(), "Quarantined documents")
	assert.Contains(t, buf.String(), "excluded from queries until re-ingested")
}

func TestVerifyCmd_ServiceNotConfigured(t *testing.T) {
	oldService := adminService
	adminService = nil
	defer func() {
		adminService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"verify"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval engine not configured")
}

func TestVerifyCmd_ServiceError(t *testing.T) {
	oldService := adminService
	adminService = &mockAdminServiceError{}
	defer func() {
		adminService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"verify"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "verify failed")
}
