// Package cli implements the winnow command tree. Commands reach the
// core only through the driving ports; the composition root injects
// implementations via SetServices, and commands that find their service
// missing fail with a configuration hint instead of panicking.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/core/ports/driving"
	"github.com/winnowlabs/winnow/internal/logger"
)

// version is reported by the version command; the build stamps it
// through SetVersion.
var version = "dev"

// Injected services. Commands nil-check these at run time so that
// config and version keep working before providers are set up.
var (
	retrievalService driving.RetrievalService
	adminService     driving.AdminService
	documentService  driving.DocumentService
	syncService      driving.SyncService
	settingsService  driving.SettingsService
	configStore      driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "winnow",
	Short: "Hybrid retrieval and context assembly for your documents",
	Long: `Winnow ingests text documents, indexes them for combined keyword and
semantic retrieval, and assembles cited context windows suitable for
retrieval-augmented generation.

Start by configuring an embedding provider, then ingest and query:

  winnow config set embedding.provider ollama
  winnow ingest ./docs
  winnow query "how does the scheduler work"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline detail to stderr")
}

// Services bundles everything the command tree depends on.
type Services struct {
	Retrieval driving.RetrievalService
	Admin     driving.AdminService
	Documents driving.DocumentService
	Sync      driving.SyncService
	Settings  driving.SettingsService
	Config    driven.ConfigStore
}

// SetServices wires service implementations into the command tree.
// Unset fields leave the corresponding commands unconfigured.
func SetServices(s Services) {
	retrievalService = s.Retrieval
	adminService = s.Admin
	documentService = s.Documents
	syncService = s.Sync
	settingsService = s.Settings
	configStore = s.Config
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
