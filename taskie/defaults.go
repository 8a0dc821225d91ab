// Package taskie holds application-wide defaults shared across subpackages.
package taskie

const (
	DefaultAppName    = "taskie"
	DefaultConfigPath = "/etc/taskie"
	DefaultDataDir    = ".taskie"

	// DefaultDatabasePath is the embedded libsql database file used when no
	// explicit path is configured.
	DefaultDatabasePath = ".taskie/taskie.db"
)
