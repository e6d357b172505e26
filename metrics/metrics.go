// Package metrics exposes Prometheus metrics about frames, decoding and logins. A nil *Metrics is valid and
// records nothing, so callers never need to check whether metrics are enabled.
package metrics

import (
	"errors"

	"github.com/cooldogedev/prism/nbt"
	"github.com/cooldogedev/prism/packet"
	"github.com/cooldogedev/prism/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "prism"

const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Metrics holds the collectors registered for a process.
type Metrics struct {
	frames            *prometheus.CounterVec
	frameBytes        *prometheus.CounterVec
	decodeErrors      *prometheus.CounterVec
	unknownPackets    prometheus.Counter
	logins            *prometheus.CounterVec
	activeConnections prometheus.Gauge
}

// New creates a Metrics and registers its collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of frames sent and received",
		}, []string{"direction"}),
		frameBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_bytes_total",
			Help:      "Total size of frames sent and received in bytes",
		}, []string{"direction"}),
		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of frames or packets that could not be decoded",
		}, []string{"kind"}),
		unknownPackets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_packets_total",
			Help:      "Total number of packets received with an unregistered ID",
		}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login sequences by result",
		}, []string{"result"}),
		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of connections currently open",
		}),
	}
}

// Frame records a frame of n bytes sent or received.
func (m *Metrics) Frame(direction string, n int) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(direction).Inc()
	m.frameBytes.WithLabelValues(direction).Add(float64(n))
}

// DecodeError records an error returned while decoding a frame or packet.
func (m *Metrics) DecodeError(err error) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// UnknownPacket records a packet received with an ID that is not registered.
func (m *Metrics) UnknownPacket() {
	if m == nil {
		return
	}
	m.unknownPackets.Inc()
}

// Login records the result of a login sequence.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// ConnectionOpened increments the number of active connections.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

// ConnectionClosed decrements the number of active connections.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

// ErrorKind returns the label used for err in decode_errors_total.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, packet.ErrFraming):
		return "framing"
	case errors.Is(err, packet.ErrIntegrity):
		return "integrity"
	case errors.Is(err, packet.ErrCompression):
		return "compression"
	case errors.Is(err, packet.ErrUnknownPacket):
		return "unknown_packet"
	case errors.Is(err, nbt.ErrMaxDepth), errors.Is(err, nbt.ErrInvalidTag), errors.Is(err, nbt.ErrInvalidLength),
		errors.Is(err, nbt.ErrMixedList), errors.Is(err, nbt.ErrDuplicateKey), errors.Is(err, nbt.ErrVarintOverflow):
		return "nbt"
	case errors.Is(err, protocol.ErrVarintOverflow), errors.Is(err, protocol.ErrLength):
		return "primitive"
	case errors.Is(err, packet.ErrProtocol):
		return "protocol"
	default:
		return "other"
	}
}
