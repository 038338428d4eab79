package db

// schema is the full database schema.
//
// market_items ids are allocated by the catalog (max existing + 1), not by
// sqlite, so ids stay monotonic and are never reused after a hard delete.
// stock -1 means unlimited. The partial unique index on (name, plugin_name)
// enforces the registration idempotency key.
const schema = `
CREATE TABLE IF NOT EXISTS market_items (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT,
    price       INTEGER NOT NULL DEFAULT 0 CHECK (price >= 0),
    stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= -1),
    status      TEXT NOT NULL DEFAULT 'unavailable' CHECK (status IN ('available', 'unavailable')),
    registered  INTEGER NOT NULL DEFAULT 1,
    plugin_name TEXT NOT NULL,
    image       TEXT,
    tags        TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_market_items_name_plugin
    ON market_items(name, plugin_name);

CREATE TABLE IF NOT EXISTS points_accounts (
    user_id  TEXT PRIMARY KEY,
    username TEXT,
    balance  INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0)
);

CREATE TABLE IF NOT EXISTS points_transactions (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES points_accounts(user_id),
    amount     INTEGER NOT NULL,
    source     TEXT,
    status     TEXT NOT NULL DEFAULT 'committed' CHECK (status IN ('committed', 'rolled_back')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'viewer' CHECK (role IN ('admin', 'viewer')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`
