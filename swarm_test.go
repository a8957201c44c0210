package swarm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meow-io/go-swarm/config"
	"github.com/meow-io/go-swarm/internal/test"
	"github.com/meow-io/go-swarm/metainfo"
	"github.com/stretchr/testify/require"
)

var testKey = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31}

func testPieces(n int) []byte {
	b := make([]byte, n*metainfo.HashSize)
	for i := range b {
		b[i] = byte('a' + i/metainfo.HashSize)
	}
	return b
}

func TestLifecycle(t *testing.T) {
	require := require.New(t)

	c := config.NewConfig(config.WithRootDir(t.TempDir()))
	s, err := NewSwarm(c)
	require.Nil(err)
	require.Equal(StateNew, s.State())
	require.Nil(s.Initialize(testKey))
	require.Nil(s.Open(testKey))
	require.Equal(StateRunning, s.State())

	doc := test.TorrentDoc("http://tracker.example/announce", "demo.iso", 32768, 16384, testPieces(2))
	md, err := s.Load(doc)
	require.Nil(err)
	require.Equal("demo.iso", md.Name)
	require.Equal(2, md.Pieces.Count())

	torrents, err := s.Torrents()
	require.Nil(err)
	require.Len(torrents, 1)
	require.Equal(md.InfoHash, torrents[0].InfoHash)
	require.Equal("demo.iso", torrents[0].Name)

	// loading again replaces the cached row
	_, err = s.Load(doc)
	require.Nil(err)
	torrents, err = s.Torrents()
	require.Nil(err)
	require.Len(torrents, 1)

	require.Nil(s.Shutdown())
	require.Equal(StateClosed, s.State())
}

func TestLoadWithoutCache(t *testing.T) {
	require := require.New(t)

	c := config.NewConfig(config.WithRootDir(t.TempDir()))
	s, err := NewSwarm(c)
	require.Nil(err)

	doc := test.TorrentDoc("http://tracker.example/announce", "demo.iso", 16384, 16384, testPieces(1))
	md, err := s.Load(doc)
	require.Nil(err)
	require.Equal(int64(16384), md.Length)

	_, err = s.Load([]byte("not a torrent"))
	require.NotNil(err)
	require.ErrorIs(err, metainfo.ErrInvalidInput)
}

func TestAnnounce(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("d8:intervali900e5:peers6:\x7f\x00\x00\x01\x1a\xe1e"))
	}))
	defer srv.Close()

	c := config.NewConfig(config.WithRootDir(t.TempDir()))
	s, err := NewSwarm(c)
	require.Nil(err)

	doc := test.TorrentDoc(srv.URL+"/announce", "demo.iso", 16384, 16384, testPieces(1))
	md, err := s.Load(doc)
	require.Nil(err)

	resp, err := s.Announce(context.Background(), md)
	require.Nil(err)
	require.Equal(int64(900), resp.Interval)
	require.Len(resp.Peers, 1)
	require.Equal("127.0.0.1:6881", resp.Peers[0].String())
}
