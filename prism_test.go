package prism

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/login"
	"github.com/cooldogedev/prism/packet"
)

func TestLoadOpts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := "addr: 127.0.0.1:19133\ntransport: tcp\ncompression: snappy\nflush_rate: 50\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	opts, err := LoadOpts(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.Addr != "127.0.0.1:19133" || opts.Transport != "tcp" || opts.FlushInterval() != 50*time.Millisecond {
		t.Errorf("got %+v", opts)
	}
	if !opts.Encryption || opts.ProtocolVersion != login.ProtocolVersion {
		t.Errorf("defaults were not kept: %+v", opts)
	}
	d, err := opts.Descriptor()
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	if d.Compression != packet.SnappyCompression {
		t.Errorf("got compression %v; want snappy", d.Compression)
	}
}

func TestLoadOptsInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"compression": "compression: lz4\n",
		"transport":   "transport: carrier-pigeon\n",
		"negative":    "max_players: -1\n",
		"yaml":        "addr: [\n",
		"api token":   "api_addr: 127.0.0.1:19134\n",
	} {
		path := filepath.Join(t.TempDir(), "config.yml")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadOpts(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestStatusPongData(t *testing.T) {
	s := NewStatusProvider("My;Server", "sub", 766, "1.21.50")
	fields := strings.Split(string(s.PongData(3, 10, 19132)), ";")
	if len(fields) != 13 {
		t.Fatalf("got %d fields: %q", len(fields), fields)
	}
	want := map[int]string{0: "MCPE", 1: "MyServer", 2: "766", 3: "1.21.50", 4: "3", 5: "10", 7: "sub", 8: "Creative", 10: "19132", 11: "19132"}
	for i, v := range want {
		if fields[i] != v {
			t.Errorf("field %d: got %q; want %q", i, fields[i], v)
		}
	}
}

func TestListenDial(t *testing.T) {
	l, err := Listen("127.0.0.1:0", login.DefaultDescriptor(), ListenConfig{LoginTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accepted := make(chan *conn.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			t.Errorf("accept: %v", err)
		}
		accepted <- c
	}()

	client, err := Dialer{Config: login.ClientConfig{IdentityData: conn.IdentityData{DisplayName: "Steve"}}}.Dial(ctx, l.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	server := <-accepted
	if server == nil {
		t.FailNow()
	}
	defer server.Close()
	if got := server.IdentityData().DisplayName; got != "Steve" {
		t.Errorf("got display name %q; want Steve", got)
	}
	if !server.Encrypted() || !client.Encrypted() {
		t.Error("expected both ends to be encrypted")
	}
	if l.Players() != 1 {
		t.Errorf("got %d players; want 1", l.Players())
	}

	if err := client.WritePackets(&packet.Text{TextType: packet.TextTypeChat, SourceName: "Steve", Message: "hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	pk, err := server.ReadPacket()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if text, ok := pk.(*packet.Text); !ok || text.Message != "hello" {
		t.Errorf("got %#v", pk)
	}
}

func TestListenServerFull(t *testing.T) {
	l, err := Listen("127.0.0.1:0", login.DefaultDescriptor(), ListenConfig{MaxPlayers: 1})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	go func() {
		for {
			if _, err := l.Accept(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	first, err := Dialer{}.Dial(ctx, l.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer first.Close()

	deadline := time.Now().Add(time.Second)
	for l.Players() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := (Dialer{}).Dial(ctx, l.Addr().String()); err == nil {
		t.Fatal("expected the second dial to fail")
	}
}
