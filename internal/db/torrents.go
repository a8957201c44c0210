package db

// TorrentRecord is the cached form of an extracted metadata document, keyed
// by info hash.
type TorrentRecord struct {
	InfoHash    []byte `db:"info_hash"`
	Announce    string `db:"announce"`
	Name        string `db:"name"`
	Length      int64  `db:"length"`
	PieceLength int64  `db:"piece_length"`
	Pieces      []byte `db:"pieces"`
	AddedAt     uint64 `db:"added_at"`
}

func (db *Database) UpsertTorrent(rec *TorrentRecord) error {
	if rec.AddedAt == 0 {
		rec.AddedAt = db.Clock.CurrentTimeSec()
	}
	return db.Run("upsert torrent", func() error {
		_, err := db.Tx.NamedExec(`
			INSERT INTO torrents (info_hash, announce, name, length, piece_length, pieces, added_at)
			VALUES (:info_hash, :announce, :name, :length, :piece_length, :pieces, :added_at)
			ON CONFLICT (info_hash) DO UPDATE SET
				announce = excluded.announce,
				name = excluded.name,
				length = excluded.length,
				piece_length = excluded.piece_length,
				pieces = excluded.pieces
		`, rec)
		return err
	})
}

func (db *Database) GetTorrent(infoHash []byte) (*TorrentRecord, error) {
	var rec TorrentRecord
	if err := db.RunReadOnly("get torrent", func() error {
		return db.Tx.Get(&rec, "SELECT * FROM torrents WHERE info_hash = ?", infoHash)
	}); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (db *Database) ListTorrents() ([]*TorrentRecord, error) {
	var recs []*TorrentRecord
	if err := db.RunReadOnly("list torrents", func() error {
		return db.Tx.Select(&recs, "SELECT * FROM torrents ORDER BY added_at, name")
	}); err != nil {
		return nil, err
	}
	return recs, nil
}
