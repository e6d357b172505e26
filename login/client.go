package login

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/packet"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"
	"github.com/scylladb/go-set/strset"
)

// DefaultDisplayName is the display name a Client logs in with when none is configured.
const DefaultDisplayName = "Steve"

// ClientConfig configures the client side of the login sequence.
type ClientConfig struct {
	// ProtocolVersion is the protocol version reported to the server.
	ProtocolVersion int32
	// IdentityData is sent to the server in the identity token. A random identity is used when Identity is
	// empty, and DefaultDisplayName when DisplayName is empty.
	IdentityData conn.IdentityData
	// KnownPacks holds the IDs of resource packs the client already has, in the uuid_version form.
	KnownPacks []string
}

// Client runs the client side of the login sequence.
type Client struct {
	sequence
	config ClientConfig

	creativeItems    []packet.CreativeItem
	biomeDefinitions map[string]any
	chunk            *packet.LevelChunk
}

// NewClient creates a Client running the login sequence on c.
func NewClient(c *conn.Conn, config ClientConfig) *Client {
	if config.IdentityData.Identity == "" {
		config.IdentityData.Identity = uuid.NewString()
	}
	if config.IdentityData.DisplayName == "" {
		config.IdentityData.DisplayName = DefaultDisplayName
	}
	return &Client{
		sequence: sequence{conn: c, state: AwaitNetworkSettings},
		config:   config,
	}
}

// Run runs the sequence until the player has spawned. When an error is returned, the connection is closed.
func (c *Client) Run(ctx context.Context) error {
	if err := c.conn.WritePackets(&packet.RequestNetworkSettings{ClientProtocol: c.config.ProtocolVersion}); err != nil {
		return err
	}
	return c.run(ctx, c.step)
}

// CreativeItems returns the creative inventory received during the world bootstrap.
func (c *Client) CreativeItems() []packet.CreativeItem {
	return c.creativeItems
}

// BiomeDefinitions returns the biome definitions received during the world bootstrap.
func (c *Client) BiomeDefinitions() map[string]any {
	return c.biomeDefinitions
}

// Chunk returns the chunk received during the world bootstrap.
func (c *Client) Chunk() *packet.LevelChunk {
	return c.chunk
}

func (c *Client) step() error {
	switch c.state {
	case AwaitNetworkSettings:
		return c.handleNetworkSettings()
	case AwaitHandshakeAck:
		return c.handleServerToClientHandshake()
	case AwaitLoginSuccessAck:
		return c.handlePlayStatus(packet.PlayStatusLoginSuccess, AwaitResourcePackResponse)
	case AwaitResourcePackResponse:
		return c.handleResourcePacksInfo()
	case AwaitResourcePackStack:
		return c.handleResourcePackStack()
	case AwaitStartGameAck:
		pk, err := c.expect(packet.IDStartGame)
		if err != nil {
			return err
		}
		c.conn.SetGameData(gameData(pk.(*packet.StartGame)))
		c.state = AwaitCreativeContentAck
	case AwaitCreativeContentAck:
		pk, err := c.expect(packet.IDCreativeContent)
		if err != nil {
			return err
		}
		c.creativeItems = pk.(*packet.CreativeContent).Items
		c.state = AwaitBiomeDefinitionsAck
	case AwaitBiomeDefinitionsAck:
		pk, err := c.expect(packet.IDBiomeDefinitionList)
		if err != nil {
			return err
		}
		c.biomeDefinitions = pk.(*packet.BiomeDefinitionList).Definitions
		c.state = AwaitLevelChunkAck
	case AwaitLevelChunkAck:
		pk, err := c.expect(packet.IDLevelChunk)
		if err != nil {
			return err
		}
		c.chunk = pk.(*packet.LevelChunk)
		c.state = AwaitPlayStatusAck
	case AwaitPlayStatusAck:
		if err := c.handlePlayStatus(packet.PlayStatusPlayerSpawn, Success); err != nil {
			return err
		}
		return c.conn.WritePackets(&packet.SetLocalPlayerAsInitialised{EntityRuntimeID: c.conn.GameData().EntityRuntimeID})
	default:
		return fmt.Errorf("login: invalid client state %v", c.state)
	}
	return nil
}

func (c *Client) handleNetworkSettings() error {
	pk, err := c.expect(packet.IDNetworkSettings)
	if err != nil {
		return err
	}
	settings := pk.(*packet.NetworkSettings)
	if settings.CompressionAlgorithm != packet.CompressionAlgorithmNone {
		compression, ok := packet.CompressionByID(settings.CompressionAlgorithm)
		if !ok {
			return c.disconnect(packet.DisconnectReasonUnknown, ErrUnexpectedPacket, "unknown compression algorithm %d", settings.CompressionAlgorithm)
		}
		if err := c.conn.SetCompression(compression, int(settings.CompressionThreshold)); err != nil {
			return err
		}
	}

	publicKey, err := marshalPublicKey(&c.conn.IdentityKey().PublicKey)
	if err != nil {
		return err
	}
	now := time.Now()
	token, err := signToken(c.conn.IdentityKey(), identityClaims{
		Claims: jwt.Claims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-tokenLeeway)),
			Expiry:    jwt.NewNumericDate(now.Add(identityTokenLifetime)),
		},
		IdentityPublicKey: publicKey,
		ExtraData:         c.config.IdentityData,
	})
	if err != nil {
		return err
	}
	if err := c.conn.WritePackets(&packet.Login{ClientProtocol: c.config.ProtocolVersion, ConnectionRequest: []byte(token)}); err != nil {
		return err
	}
	c.state = AwaitHandshakeAck
	return nil
}

func (c *Client) handleServerToClientHandshake() error {
	pk, err := c.expect(packet.IDServerToClientHandshake)
	if err != nil {
		return err
	}
	var claims handshakeClaims
	serverKey, err := parseToken(string(pk.(*packet.ServerToClientHandshake).JWT), &claims)
	if err != nil {
		return c.disconnect(packet.DisconnectReasonUnknown, ErrUnexpectedPacket, "invalid handshake token: %v", err)
	}
	if claims.Salt != "" {
		salt, err := base64.RawStdEncoding.DecodeString(claims.Salt)
		if err != nil {
			return c.disconnect(packet.DisconnectReasonUnknown, ErrUnexpectedPacket, "invalid handshake salt: %v", err)
		}
		key, err := sharedKey(c.conn.IdentityKey(), serverKey, salt)
		if err != nil {
			return err
		}
		if err := c.conn.SetEncryption(key); err != nil {
			return err
		}
	}
	if err := c.conn.WritePackets(&packet.ClientToServerHandshake{}); err != nil {
		return err
	}
	c.state = AwaitLoginSuccessAck
	return nil
}

// handlePlayStatus expects a PlayStatus with the status passed and moves to next. Any other status means the
// server rejected the client.
func (c *Client) handlePlayStatus(status int32, next State) error {
	pk, err := c.expect(packet.IDPlayStatus)
	if err != nil {
		return err
	}
	if got := pk.(*packet.PlayStatus).Status; got != status {
		_ = c.conn.Close()
		return fmt.Errorf("%w: play status %d in state %v", ErrDisconnected, got, c.state)
	}
	c.state = next
	return nil
}

func (c *Client) handleResourcePacksInfo() error {
	pk, err := c.expect(packet.IDResourcePacksInfo)
	if err != nil {
		return err
	}
	info := pk.(*packet.ResourcePacksInfo)
	missing := strset.Difference(strset.New(packIDs(info.TexturePacks)...), strset.New(c.config.KnownPacks...))

	response := &packet.ResourcePackClientResponse{Response: packet.PackResponseAllPacksDownloaded}
	if !missing.IsEmpty() {
		response.Response = packet.PackResponseSendPacks
		response.PacksToDownload = missing.List()
	}
	if err := c.conn.WritePackets(response); err != nil {
		return err
	}
	c.state = AwaitResourcePackStack
	return nil
}

func (c *Client) handleResourcePackStack() error {
	if _, err := c.expect(packet.IDResourcePackStack); err != nil {
		return err
	}
	if err := c.conn.WritePackets(&packet.ResourcePackClientResponse{Response: packet.PackResponseCompleted}); err != nil {
		return err
	}
	c.state = AwaitStartGameAck
	return nil
}
