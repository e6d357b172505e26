package packet

const (
	IDLogin = iota + 0x01
	IDPlayStatus
	IDServerToClientHandshake
	IDClientToServerHandshake
	IDDisconnect
	IDResourcePacksInfo
	IDResourcePackStack
	IDResourcePackClientResponse
	IDText
)

const (
	IDStartGame                   = 0x0b
	IDLevelChunk                  = 0x3a
	IDTransfer                    = 0x55
	IDSetLocalPlayerAsInitialised = 0x71
	IDBiomeDefinitionList         = 0x7a
	IDNetworkSettings             = 0x8f
	IDCreativeContent             = 0x91
	IDRequestNetworkSettings      = 0xc1
)
