package db_test

import (
	"database/sql"
	"os"
	"testing"

	"github.com/meow-io/go-swarm/config"
	db "github.com/meow-io/go-swarm/internal/db"
	"github.com/meow-io/go-swarm/internal/test"
	"github.com/meow-io/go-swarm/migration"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(test.DBCleanup(m.Run))
}

var testMigrations = []*migration.Migration{
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

func TestUpsertGetAndList(t *testing.T) {
	require := require.New(t)

	c := config.NewConfig(config.WithRootDir(t.TempDir()))
	d := test.NewTestDatabase(c)
	require.Nil(d.Migrate("swarm", testMigrations))

	rec := &db.TorrentRecord{
		InfoHash:    []byte("aaaaaaaaaaaaaaaaaaaa"),
		Announce:    "http://tracker.example/announce",
		Name:        "demo.iso",
		Length:      32768,
		PieceLength: 16384,
		Pieces:      []byte("aaaaaaaaaaaaaaaaaaaabbbbbbbbbbbbbbbbbbbb"),
		AddedAt:     100,
	}
	require.Nil(d.UpsertTorrent(rec))

	got, err := d.GetTorrent(rec.InfoHash)
	require.Nil(err)
	require.Equal("demo.iso", got.Name)
	require.Equal(int64(16384), got.PieceLength)

	rec.Name = "renamed.iso"
	require.Nil(d.UpsertTorrent(rec))

	list, err := d.ListTorrents()
	require.Nil(err)
	require.Len(list, 1)
	require.Equal("renamed.iso", list[0].Name)

	require.Nil(d.Shutdown())
}

func TestMigrateTwice(t *testing.T) {
	require := require.New(t)

	c := config.NewConfig(config.WithRootDir(t.TempDir()))
	d := test.NewTestDatabase(c)
	require.Nil(d.Migrate("swarm", testMigrations))
	require.Nil(d.Migrate("swarm", testMigrations))
	require.Nil(d.Shutdown())
}
