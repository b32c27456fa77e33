// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - DatabaseURL: Connection string (default for sqlite: teamvote.db, required for postgres)
  - LogLevel: debug, info, warn or error (default: info)
  - EnvFile: .env file loaded before reading the environment

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type
	--log-level Log level
	--env-file  Env file to load (default: .env if present)

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	LOG_LEVEL     → --log-level
	ENV_FILE      → --env-file

CLI flags take precedence over environment variables, and variables already
present in the environment take precedence over the env file.
*/
package cliparse
