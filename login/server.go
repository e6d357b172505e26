package login

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/packet"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"
	"github.com/scylladb/go-set/strset"
)

// Server runs the server side of the login sequence. It waits for the client to request network settings,
// verifies the client's identity, performs the handshake, negotiates resource packs and sends the world
// bootstrap.
type Server struct {
	sequence
	descriptor Descriptor
	packs      *strset.Set
}

// NewServer creates a Server running the login sequence on c as described by descriptor.
func NewServer(c *conn.Conn, descriptor Descriptor) *Server {
	return &Server{
		sequence:   sequence{conn: c, state: AwaitNetworkSettings},
		descriptor: descriptor,
		packs:      strset.New(packIDs(descriptor.TexturePacks)...),
	}
}

// Run runs the sequence until the client has spawned. When an error is returned, the connection is closed.
func (s *Server) Run(ctx context.Context) error {
	return s.run(ctx, s.step)
}

func (s *Server) step() error {
	switch s.state {
	case AwaitNetworkSettings:
		return s.handleRequestNetworkSettings()
	case AwaitLogin:
		return s.handleLogin()
	case AwaitHandshakeAck:
		return s.handleClientToServerHandshake()
	case AwaitResourcePackResponse:
		return s.handleResourcePackResponse()
	case AwaitResourcePackCompletion:
		return s.handleResourcePackCompletion()
	case AwaitLocalPlayerInitialised:
		return s.handleLocalPlayerInitialised()
	default:
		return fmt.Errorf("login: invalid server state %v", s.state)
	}
}

// checkProtocol disconnects the client if its protocol version is not the one of the server.
func (s *Server) checkProtocol(clientProtocol int32) error {
	if clientProtocol == s.descriptor.ProtocolVersion {
		return nil
	}
	reason := packet.DisconnectReasonOutdatedClient
	if clientProtocol > s.descriptor.ProtocolVersion {
		reason = packet.DisconnectReasonOutdatedServer
	}
	return s.disconnect(reason, ErrIncompatibleProtocol, "incompatible protocol version: client %d, server %d", clientProtocol, s.descriptor.ProtocolVersion)
}

func (s *Server) handleRequestNetworkSettings() error {
	pk, err := s.expect(packet.IDRequestNetworkSettings)
	if err != nil {
		return err
	}
	if err := s.checkProtocol(pk.(*packet.RequestNetworkSettings).ClientProtocol); err != nil {
		return err
	}

	settings := &packet.NetworkSettings{CompressionAlgorithm: packet.CompressionAlgorithmNone}
	if s.descriptor.Compression != nil {
		settings.CompressionAlgorithm = s.descriptor.Compression.EncodeCompression()
		settings.CompressionThreshold = s.descriptor.CompressionThreshold
	}
	if err := s.conn.WritePackets(settings); err != nil {
		return err
	}
	if s.descriptor.Compression != nil {
		if err := s.conn.SetCompression(s.descriptor.Compression, int(s.descriptor.CompressionThreshold)); err != nil {
			return err
		}
	}
	s.state = AwaitLogin
	return nil
}

func (s *Server) handleLogin() error {
	pk, err := s.expect(packet.IDLogin)
	if err != nil {
		return err
	}
	login := pk.(*packet.Login)
	if err := s.checkProtocol(login.ClientProtocol); err != nil {
		return err
	}

	var claims identityClaims
	clientKey, err := parseToken(string(login.ConnectionRequest), &claims)
	if err != nil {
		return s.disconnect(packet.DisconnectReasonUnknown, ErrDisconnected, "invalid identity token: %v", err)
	}
	if err := claims.ValidateWithLeeway(jwt.Expected{Time: time.Now()}, tokenLeeway); err != nil {
		return s.disconnect(packet.DisconnectReasonUnknown, ErrDisconnected, "invalid identity token: %v", err)
	}
	if publicKey, _ := marshalPublicKey(clientKey); publicKey != claims.IdentityPublicKey {
		return s.disconnect(packet.DisconnectReasonUnknown, ErrDisconnected, "identity public key does not match signing key")
	}
	if _, err := uuid.Parse(claims.ExtraData.Identity); err != nil {
		return s.disconnect(packet.DisconnectReasonUnknown, ErrDisconnected, "invalid identity %q", claims.ExtraData.Identity)
	}
	if claims.ExtraData.DisplayName == "" {
		return s.disconnect(packet.DisconnectReasonUnknown, ErrDisconnected, "empty display name")
	}
	s.conn.SetIdentityData(claims.ExtraData)

	var handshake handshakeClaims
	var salt []byte
	if s.descriptor.Encryption {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return err
		}
		handshake.Salt = base64.RawStdEncoding.EncodeToString(salt)
	}
	token, err := signToken(s.conn.IdentityKey(), handshake)
	if err != nil {
		return err
	}
	if err := s.conn.WritePackets(&packet.ServerToClientHandshake{JWT: []byte(token)}); err != nil {
		return err
	}
	if s.descriptor.Encryption {
		key, err := sharedKey(s.conn.IdentityKey(), clientKey, salt)
		if err != nil {
			return err
		}
		if err := s.conn.SetEncryption(key); err != nil {
			return err
		}
	}
	s.conn.Logger().Debug("verified identity", "name", claims.ExtraData.DisplayName, "encryption", s.descriptor.Encryption)
	s.state = AwaitHandshakeAck
	return nil
}

func (s *Server) handleClientToServerHandshake() error {
	if _, err := s.expect(packet.IDClientToServerHandshake); err != nil {
		return err
	}
	err := s.conn.WritePackets(
		&packet.PlayStatus{Status: packet.PlayStatusLoginSuccess},
		&packet.ResourcePacksInfo{
			TexturePackRequired: s.descriptor.TexturePackRequired,
			TexturePacks:        s.descriptor.TexturePacks,
		},
	)
	if err != nil {
		return err
	}
	s.state = AwaitResourcePackResponse
	return nil
}

func (s *Server) handleResourcePackResponse() error {
	pk, err := s.expect(packet.IDResourcePackClientResponse)
	if err != nil {
		return err
	}
	response := pk.(*packet.ResourcePackClientResponse)
	switch response.Response {
	case packet.PackResponseRefused:
		if s.descriptor.TexturePackRequired {
			return s.disconnect(packet.DisconnectReasonUnknown, ErrDisconnected, "resource packs are required")
		}
	case packet.PackResponseSendPacks:
		for _, id := range response.PacksToDownload {
			if !s.packs.Has(id) {
				return s.disconnect(packet.DisconnectReasonUnknown, ErrUnexpectedPacket, "requested unknown resource pack %q", id)
			}
		}
		// Pack contents are not sent, so packs that were requested cannot be applied.
		if s.descriptor.TexturePackRequired && len(response.PacksToDownload) > 0 {
			return s.disconnect(packet.DisconnectReasonUnknown, ErrDisconnected, "resource pack downloads are not supported")
		}
	case packet.PackResponseAllPacksDownloaded:
	default:
		return s.disconnect(packet.DisconnectReasonUnknown, ErrUnexpectedPacket, "unexpected resource pack response %d in state %v", response.Response, s.state)
	}

	stack := make([]packet.StackResourcePack, len(s.descriptor.TexturePacks))
	for i, pack := range s.descriptor.TexturePacks {
		stack[i] = packet.StackResourcePack{UUID: pack.UUID.String(), Version: pack.Version, SubPackName: pack.SubPackName}
	}
	err = s.conn.WritePackets(&packet.ResourcePackStack{
		TexturePackRequired: s.descriptor.TexturePackRequired,
		TexturePacks:        stack,
		BaseGameVersion:     s.descriptor.GameVersion,
		Experiments:         s.descriptor.Experiments,
	})
	if err != nil {
		return err
	}
	s.state = AwaitResourcePackCompletion
	return nil
}

func (s *Server) handleResourcePackCompletion() error {
	pk, err := s.expect(packet.IDResourcePackClientResponse)
	if err != nil {
		return err
	}
	if response := pk.(*packet.ResourcePackClientResponse).Response; response != packet.PackResponseCompleted {
		return s.disconnect(packet.DisconnectReasonUnknown, ErrUnexpectedPacket, "unexpected resource pack response %d in state %v", response, s.state)
	}

	chunk := s.descriptor.Chunk
	err = s.conn.WritePackets(
		startGame(s.descriptor.GameData),
		&packet.CreativeContent{Items: s.descriptor.CreativeItems},
		&packet.BiomeDefinitionList{Definitions: s.descriptor.BiomeDefinitions},
		&chunk,
		&packet.PlayStatus{Status: packet.PlayStatusPlayerSpawn},
	)
	if err != nil {
		return err
	}
	s.conn.SetGameData(s.descriptor.GameData)
	s.state = AwaitLocalPlayerInitialised
	return nil
}

func (s *Server) handleLocalPlayerInitialised() error {
	pk, err := s.expect(packet.IDSetLocalPlayerAsInitialised)
	if err != nil {
		return err
	}
	if id := pk.(*packet.SetLocalPlayerAsInitialised).EntityRuntimeID; id != s.descriptor.GameData.EntityRuntimeID {
		return s.disconnect(packet.DisconnectReasonUnknown, ErrUnexpectedPacket, "initialised entity %d, expected %d", id, s.descriptor.GameData.EntityRuntimeID)
	}
	s.state = Success
	return nil
}
