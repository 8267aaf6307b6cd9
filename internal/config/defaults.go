package config

const (
	defaultInboxDir          = "~/.local/share/tally/inbox"
	defaultArchiveDir        = "~/.local/share/tally/archive"
	defaultLedgerPath        = "~/.local/share/tally/ledger.db"
	defaultStagingDir        = "~/.local/share/tally/staging"
	defaultLogDir            = "~/.local/share/tally/logs"
	defaultCanonicalPolicy   = "earliest"
	defaultExtractionModel   = "gemini-2.5-flash"
	defaultExtractionTimeout = 120
	defaultWorkers           = 4
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

func defaultExtensions() []string {
	return []string{".pdf", ".png", ".jpg", ".jpeg"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:   defaultInboxDir,
			ArchiveDir: defaultArchiveDir,
			LedgerPath: defaultLedgerPath,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Reconcile: Reconcile{
			CanonicalPolicy: defaultCanonicalPolicy,
			Extensions:      defaultExtensions(),
		},
		Extraction: Extraction{
			Enabled:        true,
			Model:          defaultExtractionModel,
			TimeoutSeconds: defaultExtractionTimeout,
		},
		Workflow: Workflow{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
