package cmd

const (
	SETTINGS_FILE_ENV_VAR = "CHAMELEON_SETTINGS_FILE"
	ENV_PREFIX            = "CHAMELEON"
	DEFAULT_SETTINGS_NAME = ".chameleon"

	REPORTS_DIR = "reports"

	SKIP_COLUMN = "skip"
)
