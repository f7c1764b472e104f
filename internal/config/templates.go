package config

import (
	"fmt"
	"os"
)

const configTemplate = `# Trading Journal Configuration

[store]
# Backend: "sqlite", "file" (JSON/YAML document), "rest" (remote, read-only) or "postgres"
driver = "sqlite"
# Database file for sqlite, document path for file
# path = "~/.config/trading-journal/journal.db"
# Postgres connection string
dsn = ""
# Remote journal API for the rest driver
base_url = ""
api_token = ""
timeout = "10s"
retry_attempts = 3
# Requests per second sent to base_url (0 disables the limit)
rate_limit = 5.0
debug_sql = false

[analytics]
# IANA zone used to bucket trades into days, e.g. "Asia/Kolkata". "Local" uses the system zone.
timezone = "Local"
# Deactivate a challenge automatically once its target date has passed
deactivate_lapsed = false

[server]
host = "127.0.0.1"
port = 8080
read_timeout = "15s"
write_timeout = "15s"
shutdown_timeout = "10s"

[logging]
# debug, info, warn, error
level = "info"
# Also write a rotating log file
file = false
max_size = 20
max_backups = 5
max_age = 30

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := ConfigPath(configDir)
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
