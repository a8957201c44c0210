// This package provides a high-level interface for working with torrent metadata documents. It
// provides functions for loading and extracting documents, caching them in an encrypted local
// store and announcing to their trackers.
package swarm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meow-io/go-swarm/clock"
	"github.com/meow-io/go-swarm/config"
	"github.com/meow-io/go-swarm/ids"
	db "github.com/meow-io/go-swarm/internal/db"
	"github.com/meow-io/go-swarm/metainfo"
	"github.com/meow-io/go-swarm/tracker"
	"go.uber.org/zap"
)

const (
	// Constants for application state.
	StateNew = iota
	StateInitialized
	StateRunning
	StateClosing
	StateClosed
)

// Torrent is a cached metadata document.
type Torrent struct {
	InfoHash    metainfo.Hash
	Announce    string
	Name        string
	Length      int64
	PieceLength int64
	AddedAt     uint64
}

type Swarm struct {
	config  *config.Config
	log     *zap.SugaredLogger
	clock   clock.Clock
	db      *db.Database
	tracker *tracker.Client
	peerID  ids.PeerID
	state   int
}

func NewSwarm(c *config.Config) (*Swarm, error) {
	log := c.Logger("swarm")
	cl := clock.NewSystemClock()
	database, err := db.NewDatabase(c, cl, filepath.Join(c.RootDir, "swarm.db"))
	if err != nil {
		return nil, err
	}
	state := StateNew
	if database.Initialized() {
		state = StateInitialized
	}
	peerID := ids.NewPeerID()
	return &Swarm{
		config:  c,
		log:     log,
		clock:   cl,
		db:      database,
		tracker: tracker.NewClient(c, cl, peerID),
		peerID:  peerID,
		state:   state,
	}, nil
}

func (s *Swarm) State() int {
	return s.state
}

func (s *Swarm) PeerID() ids.PeerID {
	return s.peerID
}

// Initialize creates the cache database protected by key.
func (s *Swarm) Initialize(key []byte) error {
	if s.state != StateNew {
		return fmt.Errorf("swarm: wrong state, expected %d got %d", StateNew, s.state)
	}
	if err := s.db.Initialize(key); err != nil {
		return err
	}
	s.state = StateInitialized
	return nil
}

// Open unlocks the cache database and applies pending migrations.
func (s *Swarm) Open(key []byte) error {
	if s.state != StateInitialized {
		return fmt.Errorf("swarm: wrong state, expected %d got %d", StateInitialized, s.state)
	}
	if err := s.db.Open(key); err != nil {
		return err
	}
	if err := s.db.Migrate("swarm", migrations); err != nil {
		return err
	}
	s.state = StateRunning
	return nil
}

// Load extracts a metadata document and, when the cache is open, persists it.
func (s *Swarm) Load(buf []byte) (*metainfo.Metadata, error) {
	md, err := metainfo.ExtractDepth(buf, s.config.MaxBencodeDepth)
	if err != nil {
		return nil, err
	}
	if s.state == StateRunning {
		rec := &db.TorrentRecord{
			InfoHash:    md.InfoHash[:],
			Announce:    md.Announce,
			Name:        md.Name,
			Length:      md.Length,
			PieceLength: md.PieceLength,
			Pieces:      md.Pieces.Bytes(),
			AddedAt:     s.clock.CurrentTimeSec(),
		}
		if err := s.db.UpsertTorrent(rec); err != nil {
			return nil, err
		}
	}
	s.log.Infof("loaded %s (%s)", md.Name, md.InfoHash)
	return md, nil
}

func (s *Swarm) LoadFile(path string) (*metainfo.Metadata, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("swarm: error reading %s: %w", path, err)
	}
	return s.Load(buf)
}

// Announce performs one tracker round trip for md.
func (s *Swarm) Announce(ctx context.Context, md *metainfo.Metadata) (*tracker.Response, error) {
	return s.tracker.Announce(ctx, md)
}

// Torrents lists the cached metadata documents.
func (s *Swarm) Torrents() ([]*Torrent, error) {
	if s.state != StateRunning {
		return nil, fmt.Errorf("swarm: wrong state, expected %d got %d", StateRunning, s.state)
	}
	recs, err := s.db.ListTorrents()
	if err != nil {
		return nil, err
	}
	torrents := make([]*Torrent, 0, len(recs))
	for _, rec := range recs {
		torrents = append(torrents, &Torrent{
			InfoHash:    metainfo.Hash(rec.InfoHash),
			Announce:    rec.Announce,
			Name:        rec.Name,
			Length:      rec.Length,
			PieceLength: rec.PieceLength,
			AddedAt:     rec.AddedAt,
		})
	}
	return torrents, nil
}

func (s *Swarm) Shutdown() error {
	if s.state != StateRunning {
		return nil
	}
	s.state = StateClosing
	if err := s.db.Shutdown(); err != nil {
		return err
	}
	s.state = StateClosed
	return nil
}
