package postgres

// migrations are applied in order by Migrate. Every statement is
// idempotent so Migrate is safe to run on every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS voyr_plans (
		idx              INTEGER PRIMARY KEY,
		price            BIGINT NOT NULL,
		duration_seconds BIGINT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS voyr_entries (
		account       TEXT PRIMARY KEY,
		credential_id BIGINT NOT NULL DEFAULT 0,
		expiration    BIGINT NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS voyr_entries_credential
		ON voyr_entries (credential_id) WHERE credential_id <> 0`,

	`CREATE TABLE IF NOT EXISTS voyr_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`INSERT INTO voyr_meta (key, value) VALUES ('credential_counter', '1')
		ON CONFLICT (key) DO NOTHING`,

	`INSERT INTO voyr_meta (key, value) VALUES ('paused', '0')
		ON CONFLICT (key) DO NOTHING`,

	`CREATE TABLE IF NOT EXISTS voyr_receipts (
		id               TEXT PRIMARY KEY,
		kind             TEXT NOT NULL,
		account          TEXT NOT NULL,
		credential_id    BIGINT NOT NULL,
		plan_index       INTEGER NOT NULL,
		plan_price       BIGINT NOT NULL,
		duration_seconds BIGINT NOT NULL,
		periods          BIGINT NOT NULL,
		cost             BIGINT NOT NULL,
		extension_secs   BIGINT NOT NULL,
		new_expiration   BIGINT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS voyr_receipts_account
		ON voyr_receipts (account, created_at)`,
}
