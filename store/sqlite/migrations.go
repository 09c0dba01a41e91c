package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Vesting store (SQLite).
var Migrations = migrate.NewGroup("vesting")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_vesting_schedules",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vesting_schedules (
    id          INTEGER PRIMARY KEY,
    token       TEXT NOT NULL DEFAULT '',
    owner       TEXT NOT NULL DEFAULT '',
    destination TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_vesting_schedules_owner ON vesting_schedules (owner);
CREATE INDEX IF NOT EXISTS idx_vesting_schedules_token ON vesting_schedules (token);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vesting_schedules`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_vesting_tranches",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vesting_tranches (
    schedule_id  INTEGER NOT NULL,
    idx          INTEGER NOT NULL,
    release_time TEXT NOT NULL,
    amount       INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (schedule_id, idx)
);

CREATE INDEX IF NOT EXISTS idx_vesting_tranches_schedule ON vesting_tranches (schedule_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vesting_tranches`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_vesting_sequence",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				// Single-row counter backing the never-reused schedule id
				// sequence. Rolled-back creates leave gaps on purpose.
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vesting_sequence (
    id      INTEGER PRIMARY KEY CHECK (id = 1),
    last_id INTEGER NOT NULL DEFAULT 0
);

INSERT OR IGNORE INTO vesting_sequence (id, last_id) VALUES (1, 0);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vesting_sequence`)
				return err
			},
		},
	)
}
