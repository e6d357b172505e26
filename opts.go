package prism

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cooldogedev/prism/login"
	"github.com/cooldogedev/prism/packet"
	"github.com/cooldogedev/prism/transport"
	"gopkg.in/yaml.v3"
)

type Opts struct {
	// Addr is the address to listen on.
	Addr string `yaml:"addr"`
	// Transport is the transport listened on: tcp, raknet, quic or kcp.
	Transport string `yaml:"transport"`
	// ProtocolVersion is the only protocol version clients are accepted with.
	ProtocolVersion int32 `yaml:"protocol_version"`
	// Compression is the compression negotiated with clients: flate, snappy or none.
	Compression string `yaml:"compression"`
	// CompressionThreshold is the minimum size of a batch in bytes for it to be compressed.
	CompressionThreshold uint16 `yaml:"compression_threshold"`
	// Encryption enables encryption after the handshake.
	Encryption bool `yaml:"encryption"`
	// FlushRate is the interval at which sessions flush written packets in milliseconds. If zero, packets
	// are flushed as soon as they are written.
	FlushRate int64 `yaml:"flush_rate"`
	// LoginTimeout is the time in milliseconds a client has to complete login.
	LoginTimeout int64 `yaml:"login_timeout"`
	// MetricsAddr is the address Prometheus metrics are served on. Metrics are disabled if empty.
	MetricsAddr string `yaml:"metrics_addr"`
	// APIAddr is the address the administration API listens on. The API is disabled if empty.
	APIAddr string `yaml:"api_addr"`
	// APIToken is the token API clients have to authenticate with.
	APIToken string `yaml:"api_token"`
	// ServerName is shown in the server list.
	ServerName string `yaml:"server_name"`
	// MaxPlayers is the maximum number of players connected at the same time.
	MaxPlayers int `yaml:"max_players"`
}

func DefaultOpts() *Opts {
	return &Opts{
		Addr:                 ":19132",
		Transport:            "raknet",
		ProtocolVersion:      login.ProtocolVersion,
		Compression:          "flate",
		CompressionThreshold: 256,
		Encryption:           true,
		LoginTimeout:         10000,
		ServerName:           "prism",
		MaxPlayers:           100,
	}
}

// LoadOpts reads Opts from the YAML file at path. Fields missing from the file keep their default value.
func LoadOpts(path string) (*Opts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := DefaultOpts()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks that the values of the Opts are usable.
func (o *Opts) Validate() error {
	if _, err := o.compression(); err != nil {
		return err
	}
	if _, err := NewServerTransport(o.Transport, slog.Default()); err != nil {
		return err
	}
	if o.APIAddr != "" && o.APIToken == "" {
		return fmt.Errorf("api_token must be set when api_addr is set")
	}
	if o.MaxPlayers < 0 || o.FlushRate < 0 || o.LoginTimeout < 0 {
		return fmt.Errorf("max_players, flush_rate and login_timeout must not be negative")
	}
	return nil
}

// Descriptor returns the login.Descriptor negotiated with clients.
func (o *Opts) Descriptor() (login.Descriptor, error) {
	compression, err := o.compression()
	if err != nil {
		return login.Descriptor{}, err
	}
	d := login.DefaultDescriptor()
	d.ProtocolVersion = o.ProtocolVersion
	d.Compression = compression
	d.CompressionThreshold = o.CompressionThreshold
	d.Encryption = o.Encryption
	d.GameData.WorldName = o.ServerName
	return d, nil
}

// FlushInterval returns FlushRate as a time.Duration.
func (o *Opts) FlushInterval() time.Duration {
	return time.Duration(o.FlushRate) * time.Millisecond
}

// LoginDeadline returns LoginTimeout as a time.Duration.
func (o *Opts) LoginDeadline() time.Duration {
	return time.Duration(o.LoginTimeout) * time.Millisecond
}

func (o *Opts) compression() (packet.Compression, error) {
	if o.Compression == "none" || o.Compression == "" {
		return nil, nil
	}
	compression, ok := packet.CompressionByName(o.Compression)
	if !ok {
		return nil, fmt.Errorf("unknown compression %q", o.Compression)
	}
	return compression, nil
}

// NewServerTransport returns the transport with the name passed that can be listened on.
func NewServerTransport(name string, logger *slog.Logger) (transport.Server, error) {
	switch name {
	case "tcp":
		return transport.NewTCP(), nil
	case "raknet":
		return transport.NewRakNet(), nil
	case "quic":
		return transport.NewQUIC(logger), nil
	case "kcp":
		return transport.NewKCP(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", name)
	}
}

// NewTransport returns the transport with the name passed. Besides the transports of NewServerTransport,
// spectral may be dialed.
func NewTransport(name string, logger *slog.Logger) (transport.Transport, error) {
	if name == "spectral" {
		return transport.NewSpectral(logger), nil
	}
	return NewServerTransport(name, logger)
}
