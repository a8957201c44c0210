// This package implements the HTTP announce exchange with a torrent tracker. It builds the
// announce URL, performs the request and decodes the bencoded response, including the compact
// 6 byte per peer address list.
package tracker

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/meow-io/go-swarm/bencode"
	"github.com/meow-io/go-swarm/clock"
	"github.com/meow-io/go-swarm/config"
	"github.com/meow-io/go-swarm/ids"
	"github.com/meow-io/go-swarm/metainfo"
	"go.uber.org/zap"
)

const compactPeerSize = 6

type Peer struct {
	IP   net.IP
	Port uint16
}

func (p Peer) String() string {
	return net.JoinHostPort(p.IP.String(), strconv.Itoa(int(p.Port)))
}

type Response struct {
	Interval int64
	Peers    []Peer

	announcedAt uint64
}

// NextAnnounce is the earliest time, in unix seconds, the tracker wants to be
// contacted again.
func (r *Response) NextAnnounce() uint64 {
	return r.announcedAt + uint64(r.Interval)
}

type announceResponse struct {
	FailureReason string `bencode:"failure reason"`
	Interval      int64  `bencode:"interval"`
	Peers         []byte `bencode:"peers"`
}

type Client struct {
	config *config.Config
	log    *zap.SugaredLogger
	clock  clock.Clock
	client *http.Client
	peerID ids.PeerID
}

func NewClient(c *config.Config, cl clock.Clock, peerID ids.PeerID) *Client {
	return &Client{
		config: c,
		log:    c.Logger("tracker"),
		clock:  cl,
		client: &http.Client{Timeout: time.Duration(c.RequestTimeoutMs) * time.Millisecond},
		peerID: peerID,
	}
}

// AnnounceURL builds the announce request URL for md. The info hash and peer
// ID travel as raw bytes, percent-encoded by the query encoder.
func AnnounceURL(md *metainfo.Metadata, peerID ids.PeerID, port int, uploaded, downloaded, left int64) (string, error) {
	u, err := url.Parse(md.Announce)
	if err != nil {
		return "", fmt.Errorf("tracker: error parsing announce url: %w", err)
	}
	q := url.Values{}
	q.Set("info_hash", string(md.InfoHash[:]))
	q.Set("peer_id", string(peerID[:]))
	q.Set("port", strconv.Itoa(port))
	q.Set("uploaded", strconv.FormatInt(uploaded, 10))
	q.Set("downloaded", strconv.FormatInt(downloaded, 10))
	q.Set("left", strconv.FormatInt(left, 10))
	q.Set("compact", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Announce performs one announce round trip for md, reporting a fresh
// download.
func (c *Client) Announce(ctx context.Context, md *metainfo.Metadata) (*Response, error) {
	u, err := AnnounceURL(md, c.peerID, c.config.AnnouncePort, 0, 0, md.Length)
	if err != nil {
		return nil, err
	}
	if c.config.NumWant > 0 {
		u = fmt.Sprintf("%s&numwant=%d", u, c.config.NumWant)
	}
	c.log.Debugf("announcing to %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("tracker: error building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracker: error performing announce: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracker: expected status 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tracker: error reading response: %w", err)
	}

	var ar announceResponse
	if err := bencode.Unmarshal(body, &ar); err != nil {
		return nil, fmt.Errorf("tracker: error decoding response: %w", err)
	}
	if ar.FailureReason != "" {
		return nil, fmt.Errorf("tracker: announce failed: %s", ar.FailureReason)
	}
	peers, err := decodeCompactPeers(ar.Peers)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("announce returned %d peers, interval %d", len(peers), ar.Interval)
	return &Response{
		Interval:    ar.Interval,
		Peers:       peers,
		announcedAt: c.clock.CurrentTimeSec(),
	}, nil
}

// decodeCompactPeers splits the compact peer blob on a fixed 6 byte stride,
// 4 bytes of IPv4 address then a big-endian port.
func decodeCompactPeers(b []byte) ([]Peer, error) {
	if len(b)%compactPeerSize != 0 {
		return nil, fmt.Errorf("tracker: compact peer list length %d is not a multiple of %d", len(b), compactPeerSize)
	}
	peers := make([]Peer, 0, len(b)/compactPeerSize)
	for i := 0; i < len(b); i += compactPeerSize {
		peers = append(peers, Peer{
			IP:   net.IPv4(b[i], b[i+1], b[i+2], b[i+3]),
			Port: binary.BigEndian.Uint16(b[i+4 : i+6]),
		})
	}
	return peers, nil
}
