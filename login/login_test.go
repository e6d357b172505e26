package login

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/nbt"
	"github.com/cooldogedev/prism/packet"
	"github.com/cooldogedev/prism/transport"
	"github.com/google/uuid"
)

func newConn(t *testing.T, tc transport.Conn) *conn.Conn {
	t.Helper()
	c, err := conn.New(tc, packet.NewPool(), nil)
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func pair(t *testing.T) (client, server *conn.Conn) {
	t.Helper()
	a, b := transport.Pipe()
	return newConn(t, a), newConn(t, b)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)
	return ctx
}

type result struct {
	client, server       *conn.Conn
	clientSeq            *Client
	serverSeq            *Server
	clientErr, serverErr error
}

func runLogin(t *testing.T, descriptor Descriptor, config ClientConfig) result {
	t.Helper()
	ctx := testContext(t)
	client, server := pair(t)
	r := result{
		client:    client,
		server:    server,
		clientSeq: NewClient(client, config),
		serverSeq: NewServer(server, descriptor),
	}
	done := make(chan struct{})
	go func() {
		r.serverErr = r.serverSeq.Run(ctx)
		close(done)
	}()
	r.clientErr = r.clientSeq.Run(ctx)
	<-done
	return r
}

func clientConfig() ClientConfig {
	return ClientConfig{
		ProtocolVersion: ProtocolVersion,
		IdentityData:    conn.IdentityData{DisplayName: "Steve", Identity: uuid.NewString(), XUID: "2535"},
	}
}

func TestIncompatibleProtocol(t *testing.T) {
	client, server := pair(t)
	descriptor := DefaultDescriptor()
	descriptor.ProtocolVersion = 123
	seq := NewServer(server, descriptor)

	if err := client.WritePackets(&packet.RequestNetworkSettings{ClientProtocol: 999}); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := seq.Run(testContext(t))
	if !errors.Is(err, ErrIncompatibleProtocol) {
		t.Fatalf("got %v; want ErrIncompatibleProtocol", err)
	}
	if seq.State() != AwaitNetworkSettings {
		t.Errorf("got state %v; want %v", seq.State(), AwaitNetworkSettings)
	}
	select {
	case <-server.Closed():
	default:
		t.Error("server connection not closed")
	}

	pk, err := client.ReadPacket()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	d, ok := pk.(*packet.Disconnect)
	if !ok {
		t.Fatalf("got %T; want *packet.Disconnect", pk)
	}
	if !strings.Contains(d.Message, "999") || !strings.Contains(d.Message, "123") {
		t.Errorf("disconnect message %q does not name both versions", d.Message)
	}
	if d.Reason != packet.DisconnectReasonOutdatedServer {
		t.Errorf("got reason %d; want %d", d.Reason, packet.DisconnectReasonOutdatedServer)
	}
	if pk, err := client.ReadPacket(); err == nil {
		t.Errorf("got second packet %T; want exactly one Disconnect", pk)
	}
}

func TestClientIncompatibleProtocol(t *testing.T) {
	config := clientConfig()
	config.ProtocolVersion = ProtocolVersion - 1
	r := runLogin(t, DefaultDescriptor(), config)
	if !errors.Is(r.serverErr, ErrIncompatibleProtocol) {
		t.Errorf("server: got %v; want ErrIncompatibleProtocol", r.serverErr)
	}
	if !errors.Is(r.clientErr, ErrDisconnected) {
		t.Errorf("client: got %v; want ErrDisconnected", r.clientErr)
	}
	if r.clientSeq.State() != AwaitNetworkSettings {
		t.Errorf("client: got state %v; want %v", r.clientSeq.State(), AwaitNetworkSettings)
	}
}

func TestLogin(t *testing.T) {
	tests := map[string]func(d *Descriptor){
		"flate encrypted": func(d *Descriptor) {},
		"snappy encrypted": func(d *Descriptor) {
			d.Compression = packet.SnappyCompression
			d.CompressionThreshold = 0
		},
		"plain": func(d *Descriptor) {
			d.Compression = nil
			d.Encryption = false
		},
	}
	for name, configure := range tests {
		t.Run(name, func(t *testing.T) {
			descriptor := DefaultDescriptor()
			descriptor.CreativeItems = []packet.CreativeItem{{
				CreativeItemNetworkID: 1,
				Item:                  packet.ItemStack{NetworkID: 5, Count: 1, NBTData: map[string]any{"Damage": int32(0)}},
			}}
			configure(&descriptor)
			config := clientConfig()
			r := runLogin(t, descriptor, config)
			if r.clientErr != nil || r.serverErr != nil {
				t.Fatalf("login failed: client %v, server %v", r.clientErr, r.serverErr)
			}
			if r.clientSeq.State() != Success || r.serverSeq.State() != Success {
				t.Fatalf("got states %v, %v; want Success", r.clientSeq.State(), r.serverSeq.State())
			}
			if r.client.Encrypted() != descriptor.Encryption || r.server.Encrypted() != descriptor.Encryption {
				t.Errorf("encryption: got client %v, server %v; want %v", r.client.Encrypted(), r.server.Encrypted(), descriptor.Encryption)
			}
			if got := r.server.IdentityData(); got != config.IdentityData {
				t.Errorf("got identity %+v; want %+v", got, config.IdentityData)
			}
			if got := r.client.GameData(); got.WorldName != descriptor.GameData.WorldName || got.EntityRuntimeID != descriptor.GameData.EntityRuntimeID {
				t.Errorf("got game data %+v", got)
			}
			if len(r.clientSeq.CreativeItems()) != 1 || r.clientSeq.Chunk() == nil || r.clientSeq.BiomeDefinitions()["plains"] == nil {
				t.Error("world bootstrap not received")
			}

			// Steady state traffic goes through the negotiated pipeline both ways.
			if err := r.client.WritePackets(&packet.Text{TextType: packet.TextTypeRaw, Message: "ping"}); err != nil {
				t.Fatalf("write: %v", err)
			}
			pk, err := r.server.ReadPacket()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if txt, ok := pk.(*packet.Text); !ok || txt.Message != "ping" {
				t.Errorf("got %#v; want ping", pk)
			}
		})
	}
}

func TestUnexpectedPacket(t *testing.T) {
	client, server := pair(t)
	seq := NewServer(server, DefaultDescriptor())
	if err := client.WritePackets(&packet.Text{Message: "hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := seq.Run(testContext(t))
	if !errors.Is(err, ErrUnexpectedPacket) || !errors.Is(err, packet.ErrProtocol) {
		t.Fatalf("got %v; want ErrUnexpectedPacket", err)
	}
	pk, err := client.ReadPacket()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, ok := pk.(*packet.Disconnect); !ok {
		t.Errorf("got %T; want *packet.Disconnect", pk)
	}
}

func TestPeerDisconnect(t *testing.T) {
	client, server := pair(t)
	seq := NewServer(server, DefaultDescriptor())
	if err := client.WritePackets(&packet.Disconnect{Message: "bye"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := seq.Run(testContext(t))
	if !errors.Is(err, ErrDisconnected) || !strings.Contains(err.Error(), "bye") {
		t.Fatalf("got %v; want ErrDisconnected with message", err)
	}
}

func TestResourcePacks(t *testing.T) {
	pack := packet.TexturePackInfo{UUID: uuid.New(), Version: "1.0.0", Size: 1024}
	descriptor := DefaultDescriptor()
	descriptor.TexturePackRequired = true
	descriptor.TexturePacks = []packet.TexturePackInfo{pack}

	t.Run("missing", func(t *testing.T) {
		r := runLogin(t, descriptor, clientConfig())
		if !errors.Is(r.serverErr, ErrDisconnected) || !errors.Is(r.clientErr, ErrDisconnected) {
			t.Fatalf("got client %v, server %v; want ErrDisconnected", r.clientErr, r.serverErr)
		}
		if r.serverSeq.State() != AwaitResourcePackResponse {
			t.Errorf("got state %v; want %v", r.serverSeq.State(), AwaitResourcePackResponse)
		}
	})
	t.Run("known", func(t *testing.T) {
		config := clientConfig()
		config.KnownPacks = []string{pack.UUID.String() + "_" + pack.Version}
		r := runLogin(t, descriptor, config)
		if r.clientErr != nil || r.serverErr != nil {
			t.Fatalf("login failed: client %v, server %v", r.clientErr, r.serverErr)
		}
	})
}

func TestInvalidIdentity(t *testing.T) {
	config := clientConfig()
	config.IdentityData.Identity = "not-a-uuid"
	r := runLogin(t, DefaultDescriptor(), config)
	if !errors.Is(r.serverErr, ErrDisconnected) {
		t.Errorf("server: got %v; want ErrDisconnected", r.serverErr)
	}
	if !errors.Is(r.clientErr, ErrDisconnected) {
		t.Errorf("client: got %v; want ErrDisconnected", r.clientErr)
	}
}

func TestClientDefaultsIdentity(t *testing.T) {
	r := runLogin(t, DefaultDescriptor(), ClientConfig{ProtocolVersion: ProtocolVersion})
	if r.clientErr != nil || r.serverErr != nil {
		t.Fatalf("client: %v, server: %v", r.clientErr, r.serverErr)
	}
	identity := r.server.IdentityData()
	if identity.DisplayName != DefaultDisplayName {
		t.Errorf("got display name %q; want %q", identity.DisplayName, DefaultDisplayName)
	}
	if _, err := uuid.Parse(identity.Identity); err != nil {
		t.Errorf("got identity %q: %v", identity.Identity, err)
	}
}

func TestRunClosesOnLocalFailure(t *testing.T) {
	descriptor := DefaultDescriptor()
	descriptor.BiomeDefinitions = map[string]any{"bad": 1}
	r := runLogin(t, descriptor, clientConfig())
	if !errors.Is(r.serverErr, nbt.ErrUnsupportedType) {
		t.Errorf("server: got %v; want nbt.ErrUnsupportedType", r.serverErr)
	}
	if r.clientErr == nil {
		t.Error("client: expected an error")
	}
	select {
	case <-r.server.Closed():
	default:
		t.Error("server connection still open after Run failed")
	}
}

func TestRunCancelled(t *testing.T) {
	_, server := pair(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(time.Millisecond*50, cancel)
	if err := NewServer(server, DefaultDescriptor()).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v; want context.Canceled", err)
	}
}

func TestStateString(t *testing.T) {
	if s := AwaitBiomeDefinitionsAck.String(); s != "AwaitBiomeDefinitionsAck" {
		t.Errorf("got %q", s)
	}
	if s := State(100).String(); s != "State(100)" {
		t.Errorf("got %q", s)
	}
}
