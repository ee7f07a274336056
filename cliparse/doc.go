// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadEnvFile uses github.com/joho/godotenv and never overrides variables that
are already set. A missing file is ignored.

# CLI Flags and Environment Variables

Flags fall back to environment variables, then to defaults:

	-p                PORT             server port (3318)
	-s                SOURCE           http or sql (http)
	-u                UPSTREAM_URL     transit API base URL (required for http)
	-d                DATABASE_URL     database URL (required for sql)
	-t                DATABASE_TYPE    sqlite or postgres (sqlite)
	-namespace        VOTE_NAMESPACE   vote namespace (gtfs-agencies)
	-admin-salt       ADMIN_KEY_SALT   secret for admin key HMAC (required)
	-ip-salt          IP_HASH_SALT     secret for IP hashing (admin salt)
	-acquire-timeout  ACQUIRE_TIMEOUT  agency/vote load timeout (30s)
	-session-ttl      SESSION_TTL      idle session lifetime (2h)
	-max-sessions     MAX_SESSIONS     live session cap (10000)
	-vote-rate        VOTE_RATE        votes per second per client IP (2)
	-log-level        LOG_LEVEL        debug, info, warn or error (info)

CLI flags take precedence over environment variables.
*/
package cliparse
