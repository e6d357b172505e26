// Package prism implements a listener accepting connections that completed the login sequence, and a dialer
// connecting to such a listener.
package prism

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/login"
	"github.com/cooldogedev/prism/metrics"
	"github.com/cooldogedev/prism/packet"
	"github.com/cooldogedev/prism/transport"
)

// ListenConfig holds the optional settings of a Listener.
type ListenConfig struct {
	// Transport is the transport listened on. It defaults to TCP.
	Transport transport.Server
	// Logger is the logger used by the Listener and its connections. It defaults to slog.Default().
	Logger *slog.Logger
	// Metrics, if non-nil, records metrics for the Listener and its connections.
	Metrics *metrics.Metrics
	// StatusProvider, if non-nil, provides pong data for transports that answer pings.
	StatusProvider *StatusProvider
	// MaxPlayers is the maximum number of connections logged in at the same time. Zero means no limit.
	MaxPlayers int
	// LoginTimeout is the time a connection has to complete login. Zero means no timeout.
	LoginTimeout time.Duration
}

// pongDataSetter is implemented by listeners that answer unconnected pings, such as RakNet's.
type pongDataSetter interface {
	PongData(data []byte)
}

// Listener accepts connections and runs the server side of the login sequence on them. Only connections
// that complete login are returned by Accept.
type Listener struct {
	listener   transport.Listener
	descriptor login.Descriptor
	pool       packet.Pool
	config     ListenConfig

	players atomic.Int32
	conns   chan *conn.Conn

	once   sync.Once
	closed chan struct{}
}

// Listen listens on addr and logs clients in as described by descriptor.
func Listen(addr string, descriptor login.Descriptor, config ListenConfig) (*Listener, error) {
	if config.Transport == nil {
		config.Transport = transport.NewTCP()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	listener, err := config.Transport.Listen(addr)
	if err != nil {
		config.Logger.Error("failed to listen", "err", err)
		return nil, err
	}

	l := &Listener{
		listener:   listener,
		descriptor: descriptor,
		pool:       packet.NewPool(),
		config:     config,
		conns:      make(chan *conn.Conn),
		closed:     make(chan struct{}),
	}
	l.updatePongData()
	go l.listen()
	config.Logger.Info("started listening", "addr", listener.Addr())
	return l, nil
}

// Accept blocks until a connection completed login and returns it.
func (l *Listener) Accept() (*conn.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

// Addr returns the address the Listener listens on.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Players returns the number of connections logged in.
func (l *Listener) Players() int {
	return int(l.players.Load())
}

// Close stops listening. Connections already accepted stay open.
func (l *Listener) Close() (err error) {
	l.once.Do(func() {
		close(l.closed)
		err = l.listener.Close()
	})
	return
}

func (l *Listener) listen() {
	defer l.Close()
	for {
		tc, err := l.listener.Accept()
		if err != nil {
			select {
			case <-l.closed:
			default:
				l.config.Logger.Error("failed to accept connection", "err", err)
			}
			return
		}
		go l.handle(tc)
	}
}

// handle logs in a new connection and passes it on to Accept.
func (l *Listener) handle(tc transport.Conn) {
	logger := l.config.Logger
	c, err := conn.New(tc, l.pool, logger, conn.WithMetrics(l.config.Metrics))
	if err != nil {
		_ = tc.Close()
		logger.Error("failed to create connection", "err", err)
		return
	}

	if l.config.MaxPlayers > 0 && l.Players() >= l.config.MaxPlayers {
		_ = c.WritePackets(&packet.Disconnect{Reason: packet.DisconnectReasonServerFull, Message: "server is full"})
		_ = c.Close()
		logger.Debug("rejected connection, server is full", "addr", c.RemoteAddr())
		return
	}

	ctx := context.Background()
	if l.config.LoginTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.LoginTimeout)
		defer cancel()
	}
	if err := login.NewServer(c, l.descriptor).Run(ctx); err != nil {
		l.config.Metrics.Login(metrics.LoginFailure)
		if errors.Is(err, login.ErrIncompatibleProtocol) || errors.Is(err, login.ErrDisconnected) {
			logger.Debug("login failed", "addr", c.RemoteAddr(), "err", err)
		} else {
			logger.Error("login failed", "addr", c.RemoteAddr(), "err", err)
		}
		return
	}
	l.config.Metrics.Login(metrics.LoginSuccess)
	logger.Info("logged in", "name", c.IdentityData().DisplayName, "addr", c.RemoteAddr())

	l.players.Add(1)
	l.updatePongData()
	go func() {
		<-c.Closed()
		l.players.Add(-1)
		l.updatePongData()
	}()

	select {
	case l.conns <- c:
	case <-l.closed:
		_ = c.Close()
	}
}

func (l *Listener) updatePongData() {
	setter, ok := l.listener.(pongDataSetter)
	if !ok || l.config.StatusProvider == nil {
		return
	}
	port := 0
	if addr, ok := l.listener.Addr().(*net.UDPAddr); ok {
		port = addr.Port
	}
	setter.PongData(l.config.StatusProvider.PongData(l.Players(), l.config.MaxPlayers, port))
}

// Dialer dials a Listener and runs the client side of the login sequence.
type Dialer struct {
	// Transport is the transport dialed with. It defaults to TCP.
	Transport transport.Transport
	// Config configures the login sequence. A zero ProtocolVersion is replaced by login.ProtocolVersion.
	Config login.ClientConfig
	// Logger is the logger of the connection. It defaults to slog.Default().
	Logger *slog.Logger
	// Metrics, if non-nil, records metrics for the connection.
	Metrics *metrics.Metrics
}

// Dial connects to addr and logs in. The connection returned has completed login.
func (d Dialer) Dial(ctx context.Context, addr string) (*conn.Conn, error) {
	c, _, err := d.DialClient(ctx, addr)
	return c, err
}

// DialClient is like Dial, but also returns the login.Client, which holds the world bootstrap received.
func (d Dialer) DialClient(ctx context.Context, addr string) (*conn.Conn, *login.Client, error) {
	if d.Transport == nil {
		d.Transport = transport.NewTCP()
	}
	if d.Config.ProtocolVersion == 0 {
		d.Config.ProtocolVersion = login.ProtocolVersion
	}
	tc, err := d.Transport.Dial(ctx, addr)
	if err != nil {
		return nil, nil, err
	}
	c, err := conn.New(tc, packet.NewPool(), d.Logger, conn.WithMetrics(d.Metrics))
	if err != nil {
		_ = tc.Close()
		return nil, nil, err
	}
	client := login.NewClient(c, d.Config)
	if err := client.Run(ctx); err != nil {
		d.Metrics.Login(metrics.LoginFailure)
		return nil, nil, err
	}
	d.Metrics.Login(metrics.LoginSuccess)
	return c, client, nil
}
