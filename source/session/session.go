// Package session implements the client-facing state machine: the
// connect/disconnect/reconnect lifecycle, the packet dispatcher cascade,
// and the public facade (Connect/Disconnect/JoinLobby/FindGames/SendChat/
// Move/Subscribe/RunUntilClosed) used to drive one Among Us session
// end-to-end (spec.md §5, original_source/amongus/connection.py).
package session

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"samp-server-go/core/events"
	"samp-server-go/core/tasks"
	"samp-server-go/pkg/logger"
	"samp-server-go/pkg/wire"
	"samp-server-go/source/apperr"
	"samp-server-go/source/model"
	"samp-server-go/source/protocol"
	"samp-server-go/source/reliability"

	"golang.org/x/sync/errgroup"
)

// GameVersion names the four components of the game-version scalar sent in
// the Hello handshake (spec.md §4.1).
type GameVersion struct {
	Year, Month, Day, Revision int
}

// Config holds the tunables of a Client, mirroring connection.py's class
// attributes (connectTimeout, recvTimeout, keepAliveTimeout) plus the
// player identity/cosmetics sent after joining a lobby.
type Config struct {
	Name      string
	Spectator bool

	Color byte
	Hat   byte
	Skin  byte
	Pet   byte

	ConnectTimeout   time.Duration
	RecvTimeout      time.Duration
	KeepAliveTimeout time.Duration
}

// DefaultConfig returns connection.py's documented default timeouts.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		ConnectTimeout:   1 * time.Second,
		RecvTimeout:      5 * time.Second,
		KeepAliveTimeout: 1 * time.Second,
	}
}

// Client is one session against a single Among Us server. All mutation of
// its session state (players, game, net-id map, sequence ids, ...) is
// funneled through a single owner goroutine via the cmds channel, matching
// SPEC_FULL.md's concurrency model: public methods and I/O callbacks never
// touch that state directly, they enqueue a closure and, where a reply is
// needed, wait on it.
type Client struct {
	cfg Config

	Bus   *events.Bus
	Tasks *tasks.Board

	conn *net.UDPConn
	host string
	port int

	gameVersion GameVersion

	idGen    *reliability.IDGenerator
	inFlight *reliability.InFlightTable
	pinger   *reliability.Pinger
	reader   *reliability.Reader

	cmds chan func()

	eg     *errgroup.Group
	cancel context.CancelFunc

	stateMu sync.Mutex
	state   State
	closed  bool

	readyCh   chan struct{}
	readyOnce sync.Once

	// --- actor-owned state; only ever touched from inside cmds closures ---
	players     *model.PlayerList
	game        *model.Game
	netIDs      map[uint32]protocol.DataFlagRole
	sequenceIDs map[byte]uint16

	lobbyCode    string
	gameID       uint32
	hostID       uint32
	clientID     uint32
	selfPlayerID byte
	hasSelfID    bool

	spectatorReconnected bool
	hasPlayerData bool

	latencyMs int

	disconnectErr error
}

// New constructs a Client. bus may be shared across Clients if the caller
// wants a single subscription surface; pass events.New() for a dedicated
// one.
func New(cfg Config, bus *events.Bus) *Client {
	c := &Client{
		cfg:         cfg,
		Bus:         bus,
		Tasks:       tasks.NewBoard(),
		idGen:       reliability.NewIDGenerator(),
		inFlight:    reliability.NewInFlightTable(),
		cmds:        make(chan func(), 64),
		readyCh:     make(chan struct{}),
		players:     model.NewPlayerList(),
		game:        model.WithDefaultSettings(),
		netIDs:      make(map[uint32]protocol.DataFlagRole),
		sequenceIDs: make(map[byte]uint16),
	}
	go c.runActor()
	return c
}

func (c *Client) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// State reports the client's current lifecycle stage.
func (c *Client) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Client) isClosed() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.closed
}

// Connect dials host:port over UDP, sends the Hello handshake and blocks
// until the server's first datagram arrives (or ConnectTimeout/RecvTimeout
// elapses), matching connection.py's `connect`.
func (c *Client) Connect(host string, port int, gameVersion GameVersion) error {
	c.host, c.port = host, port
	c.gameVersion = gameVersion
	c.setState(StateConnecting)

	raddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return apperr.NewValidationError("host", err.Error())
	}

	dialCtx, dialCancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
	defer dialCancel()
	var d net.Dialer
	rawConn, err := d.DialContext(dialCtx, "udp", raddr.String())
	if err != nil {
		return apperr.NewConnectionError("dial", err)
	}
	conn, ok := rawConn.(*net.UDPConn)
	if !ok {
		return apperr.NewInternalAssertion("dialed connection is not a *net.UDPConn")
	}
	c.conn = conn

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	eg, egCtx := errgroup.WithContext(ctx)
	c.eg = eg

	c.pinger = reliability.NewPinger(c.cfg.KeepAliveTimeout, c.sendPing)
	c.reader = &reliability.Reader{
		Timeout:   c.cfg.RecvTimeout,
		OnData:    c.onDatagram,
		OnTimeout: c.onReadTimeout,
		OnError:   c.onReadError,
	}

	eg.Go(func() error {
		c.reader.Run(conn, egCtx.Done())
		return nil
	})

	logger.Info("session: connected to %s:%d", host, port)

	gv := wire.EncodeGameVersion(gameVersion.Year, gameVersion.Month, gameVersion.Day, gameVersion.Revision)
	if err := c.sendHello(gv); err != nil {
		c.Disconnect(true)
		return err
	}

	select {
	case <-c.readyCh:
		return nil
	case <-time.After(c.cfg.RecvTimeout):
		c.Disconnect(true)
		return apperr.NewConnectionError("connect", fmt.Errorf("timed out waiting for first datagram"))
	}
}

// Reconnect tears down the current socket (without sending a polite
// Disconnect) and connects again to the same, or a redirected, host/port
// (connection.py's `reconnect`).
func (c *Client) Reconnect(host string, port int) error {
	logger.Debug("session: reconnecting to %s:%d", host, port)
	c.teardown(false)
	c.readyCh = make(chan struct{})
	c.readyOnce = sync.Once{}
	c.stateMu.Lock()
	c.closed = false
	c.stateMu.Unlock()
	return c.Connect(host, port, c.gameVersion)
}

// Disconnect ends the session. If force is false and the handshake
// completed, a polite Disconnect frame is sent first.
func (c *Client) Disconnect(force bool) {
	if c.isClosed() {
		return
	}
	select {
	case <-c.readyCh:
		if !force {
			_ = c.writeDatagram(protocol.EncodeDisconnect(nil, ""))
		}
	default:
	}
	c.teardown(true)
}

func (c *Client) teardown(markClosed bool) {
	c.stateMu.Lock()
	if markClosed {
		c.closed = true
		c.state = StateClosed
	}
	c.stateMu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	if c.eg != nil {
		_ = c.eg.Wait()
	}
	if c.pinger != nil {
		c.pinger.Stop()
	}
	if c.inFlight != nil {
		c.inFlight.Clear()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// RunUntilClosed blocks until the session is closed (server disconnect,
// idle timeout with no further reconnect, or an explicit Disconnect call),
// returning the reason if the close was abnormal.
func (c *Client) RunUntilClosed() error {
	for !c.isClosed() {
		time.Sleep(20 * time.Millisecond)
	}
	return c.disconnectErr
}

// runActor is the single owner goroutine: every mutation of session state
// happens here, one closure at a time, so no mutex is needed around
// players/game/netIDs/sequenceIDs.
func (c *Client) runActor() {
	for cmd := range c.cmds {
		cmd()
	}
}

// enqueue sends a command to the actor. Safe to call from any goroutine.
func (c *Client) enqueue(fn func()) {
	defer func() { recover() }() // cmds may be closed/full during teardown races
	select {
	case c.cmds <- fn:
	default:
		go func() {
			defer func() { recover() }()
			c.cmds <- fn
		}()
	}
}
