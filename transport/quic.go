package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"log/slog"
	"math/big"
	"net"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/qlog"
)

const quicProtocol = "prism"

// QUIC implements the Server interface to establish connections using the QUIC protocol.
// It maintains a single connection per address and opens a stream for every Conn dialed, so that
// multiple sessions to the same server share a connection.
type QUIC struct {
	connections map[string]quic.Connection
	logger      *slog.Logger
	mu          sync.Mutex
}

// NewQUIC creates a new QUIC transport instance.
func NewQUIC(logger *slog.Logger) *QUIC {
	return &QUIC{
		connections: make(map[string]quic.Connection),
		logger:      logger,
	}
}

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:                 time.Second * 10,
		InitialStreamReceiveWindow:     1024 * 1024 * 10,
		InitialConnectionReceiveWindow: 1024 * 1024 * 10,
		KeepAlivePeriod:                time.Second * 5,
		InitialPacketSize:              1350,
		Tracer:                         qlog.DefaultConnectionTracer,
	}
}

// Dial ...
func (q *QUIC) Dial(ctx context.Context, addr string) (Conn, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	conn, ok := q.connections[addr]
	if !ok {
		c, err := quic.DialAddr(
			ctx,
			addr,
			&tls.Config{
				InsecureSkipVerify: true,
				NextProtos:         []string{quicProtocol},
			},
			quicConfig(),
		)
		if err != nil {
			return nil, err
		}
		conn = c
		q.connections[addr] = conn
		q.logger.Debug("established connection", "addr", addr)
		go func() {
			<-conn.Context().Done()
			q.mu.Lock()
			delete(q.connections, addr)
			q.mu.Unlock()
			if err := conn.Context().Err(); err != nil && !errors.Is(err, context.Canceled) {
				q.logger.Error("closed connection", "addr", addr, "err", err)
			} else {
				q.logger.Debug("closed connection", "addr", addr)
			}
		}()
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "failed to open stream")
		return nil, err
	}
	return NewStreamConn(stream, conn.RemoteAddr()), nil
}

// Listen listens for QUIC connections on addr using a freshly generated self-signed certificate. Every stream
// opened by a peer is returned by Accept as a separate Conn.
func (q *QUIC) Listen(addr string) (Listener, error) {
	cert, err := selfSignedCertificate()
	if err != nil {
		return nil, err
	}
	l, err := quic.ListenAddr(addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{quicProtocol},
	}, quicConfig())
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	listener := &quicListener{
		l:       l,
		logger:  q.logger,
		streams: make(chan Conn),
		ctx:     ctx,
		cancel:  cancel,
	}
	go listener.acceptConnections()
	return listener, nil
}

type quicListener struct {
	l       *quic.Listener
	logger  *slog.Logger
	streams chan Conn

	ctx    context.Context
	cancel context.CancelFunc
}

// Accept ...
func (l *quicListener) Accept() (Conn, error) {
	select {
	case conn := <-l.streams:
		return conn, nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

// Close ...
func (l *quicListener) Close() error {
	l.cancel()
	return l.l.Close()
}

// Addr ...
func (l *quicListener) Addr() net.Addr {
	return l.l.Addr()
}

func (l *quicListener) acceptConnections() {
	for {
		conn, err := l.l.Accept(l.ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, quic.ErrServerClosed) {
				l.logger.Error("failed to accept connection", "err", err)
			}
			l.cancel()
			return
		}
		l.logger.Debug("accepted connection", "addr", conn.RemoteAddr())
		go l.acceptStreams(conn)
	}
}

func (l *quicListener) acceptStreams(conn quic.Connection) {
	for {
		stream, err := conn.AcceptStream(l.ctx)
		if err != nil {
			_ = conn.CloseWithError(0, "listener closed")
			return
		}
		select {
		case l.streams <- NewStreamConn(stream, conn.RemoteAddr()):
		case <-l.ctx.Done():
			_ = conn.CloseWithError(0, "listener closed")
			return
		}
	}
}

func selfSignedCertificate() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	if err != nil {
		return tls.Certificate{}, err
	}
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: quicProtocol},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour * 24 * 365),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
