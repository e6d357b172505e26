package packet

import "github.com/cooldogedev/prism/protocol"

// NetworkSettings is sent by the server in response to RequestNetworkSettings. Both sides enable compression
// as described by the packet once it has been sent or received.
type NetworkSettings struct {
	// CompressionThreshold is the minimum size of a batch before it is compressed.
	CompressionThreshold uint16
	// CompressionAlgorithm is one of the CompressionAlgorithm constants.
	CompressionAlgorithm uint16
	// ClientThrottle, ClientThrottleThreshold and ClientThrottleScalar control client side throttling. They
	// are carried for completeness and are not acted on.
	ClientThrottle          bool
	ClientThrottleThreshold uint8
	ClientThrottleScalar    float32
}

// ID ...
func (*NetworkSettings) ID() uint32 {
	return IDNetworkSettings
}

// Marshal ...
func (pk *NetworkSettings) Marshal(io protocol.IO) {
	io.Uint16(&pk.CompressionThreshold)
	io.Uint16(&pk.CompressionAlgorithm)
	io.Bool(&pk.ClientThrottle)
	io.Uint8(&pk.ClientThrottleThreshold)
	io.Float32(&pk.ClientThrottleScalar)
}
