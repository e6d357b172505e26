package packet

import "github.com/cooldogedev/prism/protocol"

const (
	PackResponseRefused uint8 = iota + 1
	PackResponseSendPacks
	PackResponseAllPacksDownloaded
	PackResponseCompleted
)

// ResourcePackClientResponse is sent by the client in response to ResourcePacksInfo and ResourcePackStack.
type ResourcePackClientResponse struct {
	// Response is one of the PackResponse constants.
	Response uint8
	// PacksToDownload holds the UUID_version identifiers of packs the client still needs.
	PacksToDownload []string
}

// ID ...
func (*ResourcePackClientResponse) ID() uint32 {
	return IDResourcePackClientResponse
}

// Marshal ...
func (pk *ResourcePackClientResponse) Marshal(io protocol.IO) {
	io.Uint8(&pk.Response)
	l := uint16(len(pk.PacksToDownload))
	io.Uint16(&l)
	if int(l) != len(pk.PacksToDownload) {
		pk.PacksToDownload = make([]string, 0, min(int(l), 64))
		for i := uint16(0); i < l; i++ {
			var s string
			io.String(&s)
			pk.PacksToDownload = append(pk.PacksToDownload, s)
		}
		return
	}
	for i := range pk.PacksToDownload {
		io.String(&pk.PacksToDownload[i])
	}
}
