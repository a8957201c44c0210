package swarm

import (
	"database/sql"

	"github.com/meow-io/go-swarm/migration"
)

var migrations = []*migration.Migration{
	{
		Name: "create torrents table",
		Func: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE torrents (
					info_hash BLOB NOT NULL,
					announce TEXT NOT NULL,
					name TEXT NOT NULL,
					length INT8 NOT NULL,
					piece_length INT8 NOT NULL,
					pieces BLOB NOT NULL,
					added_at INT8 NOT NULL,
					PRIMARY KEY (info_hash)
				)`)
			return err
		},
	},
}
