package prism

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
)

// StatusProvider produces the status shown in the server list, sent in response to unconnected pings.
type StatusProvider struct {
	serverName    string
	serverSubName string
	protocol      int32
	version       string
	guid          uint64
}

func NewStatusProvider(serverName string, serverSubName string, protocol int32, version string) *StatusProvider {
	var guid [8]byte
	_, _ = rand.Read(guid[:])
	return &StatusProvider{
		serverName:    serverName,
		serverSubName: serverSubName,
		protocol:      protocol,
		version:       version,
		guid:          binary.LittleEndian.Uint64(guid[:]),
	}
}

// PongData returns the pong data for the player counts passed, listening on port.
func (s *StatusProvider) PongData(playerCount int, maxPlayers int, port int) []byte {
	return []byte(fmt.Sprintf("MCPE;%s;%d;%s;%d;%d;%d;%s;Creative;1;%d;%d;",
		sanitise(s.serverName), s.protocol, s.version, playerCount, maxPlayers, s.guid, sanitise(s.serverSubName), port, port,
	))
}

// sanitise removes semicolons, which separate the fields of pong data.
func sanitise(s string) string {
	return strings.ReplaceAll(s, ";", "")
}
