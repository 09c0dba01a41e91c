package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Vesting store.
var Migrations = migrate.NewGroup("vesting")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_vesting_schedules",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vesting_schedules (
    id          BIGINT PRIMARY KEY,
    token       TEXT NOT NULL DEFAULT '',
    owner       TEXT NOT NULL DEFAULT '',
    destination TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    schedule_id  BIGINT NOT NULL,
    idx          INT NOT NULL,
    release_time TIMESTAMPTZ NOT NULL,
    amount       BIGINT NOT NULL DEFAULT 0,
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
			Name:    "create_vesting_schedule_ids",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				// Native sequence backing the never-reused schedule id
				// allocation. Rolled-back creates leave gaps on purpose.
				_, err := exec.Exec(ctx, `
CREATE SEQUENCE IF NOT EXISTS vesting_schedule_ids START WITH 1
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP SEQUENCE IF EXISTS vesting_schedule_ids`)
				return err
			},
		},
	)
}
