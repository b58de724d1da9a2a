package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "winnow", rootCmd.Use)
}

func TestRootCmd_Short(t *testing.T) {
	assert.Equal(t, "Hybrid retrieval and context assembly for your documents", rootCmd.Short)
}

func TestRootCmd_SilencesUsage(t *testing.T) {
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	assert.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestSetServices_WiresAllServices(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	oldRetrieval := retrievalService
	oldAdmin := adminService
	oldDocuments := documentService
	oldSync := syncService
	oldSettings := settingsService
	oldConfig := configStore

	SetServices(Services{})
	assert.Nil(t, retrievalService)
	assert.Nil(t, adminService)
	assert.Nil(t, documentService)
	assert.Nil(t, syncService)
	assert.Nil(t, settingsService)
	assert.Nil(t, configStore)

	SetServices(Services{
		Retrieval: oldRetrieval,
		Admin:     oldAdmin,
		Documents: oldDocuments,
		Sync:      oldSync,
		Settings:  oldSettings,
		Config:    oldConfig,
	})
	assert.Equal(t, oldRetrieval, retrievalService)
	assert.Equal(t, oldConfig, configStore)
}
