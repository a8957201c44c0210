package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meow-io/go-swarm/clock"
	"github.com/meow-io/go-swarm/config"
	"github.com/meow-io/go-swarm/ids"
	"github.com/meow-io/go-swarm/metainfo"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return config.NewConfig(config.WithRootDir(t.TempDir()))
}

func TestAnnounceURL(t *testing.T) {
	require := require.New(t)

	md := &metainfo.Metadata{
		Announce: "http://tracker.example:6969/announce",
		Length:   694157312,
	}
	u, err := AnnounceURL(md, ids.PeerIDFromBytes([]byte("-SW0001-aaaabbbbcccc")), 6881, 0, 0, md.Length)
	require.Nil(err)
	require.Contains(u, "http://tracker.example:6969/announce?")
	require.Contains(u, "peer_id=-SW0001-aaaabbbbcccc")
	require.Contains(u, "port=6881")
	require.Contains(u, "uploaded=0")
	require.Contains(u, "downloaded=0")
	require.Contains(u, "left=694157312")
	require.Contains(u, "compact=1")
}

func TestAnnounce(t *testing.T) {
	require := require.New(t)

	peers := "\x7f\x00\x00\x01\x1a\xe1\x0a\x00\x00\x02\x00\x50"
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte("d8:completei3e8:intervali1800e5:peers12:" + peers + "e"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(t), clock.NewSystemClock(), ids.NewPeerID())
	resp, err := c.Announce(context.Background(), &metainfo.Metadata{Announce: srv.URL + "/announce", Length: 65536})
	require.Nil(err)
	require.Equal(int64(1800), resp.Interval)
	require.Len(resp.Peers, 2)
	require.Equal("127.0.0.1:6881", resp.Peers[0].String())
	require.Equal("10.0.0.2:80", resp.Peers[1].String())
	require.Equal([]string{"65536"}, query["left"])
	require.True(resp.NextAnnounce() >= uint64(resp.Interval))
}

func TestAnnounceFailureReason(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("d14:failure reason15:torrent unknowne"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(t), clock.NewSystemClock(), ids.NewPeerID())
	_, err := c.Announce(context.Background(), &metainfo.Metadata{Announce: srv.URL})
	require.NotNil(err)
	require.Contains(err.Error(), "torrent unknown")
}

func TestAnnounceBadStatus(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(t), clock.NewSystemClock(), ids.NewPeerID())
	_, err := c.Announce(context.Background(), &metainfo.Metadata{Announce: srv.URL})
	require.NotNil(err)
}

func TestDecodeCompactPeers(t *testing.T) {
	require := require.New(t)

	peers, err := decodeCompactPeers([]byte{192, 168, 1, 9, 0x1a, 0xe2})
	require.Nil(err)
	require.Len(peers, 1)
	require.Equal("192.168.1.9:6882", peers[0].String())

	peers, err = decodeCompactPeers(nil)
	require.Nil(err)
	require.Empty(peers)

	_, err = decodeCompactPeers([]byte{1, 2, 3})
	require.NotNil(err)
}
