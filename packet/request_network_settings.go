package packet

import "github.com/cooldogedev/prism/protocol"

// RequestNetworkSettings is the first packet sent by the client. It carries the protocol version of the
// client and asks the server for the settings of the connection.
type RequestNetworkSettings struct {
	// ClientProtocol is the protocol version of the client. Unlike other integers, it is written big-endian.
	ClientProtocol int32
}

// ID ...
func (*RequestNetworkSettings) ID() uint32 {
	return IDRequestNetworkSettings
}

// Marshal ...
func (pk *RequestNetworkSettings) Marshal(io protocol.IO) {
	io.BEInt32(&pk.ClientProtocol)
}
