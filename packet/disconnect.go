package packet

import "github.com/cooldogedev/prism/protocol"

const (
	DisconnectReasonUnknown int32 = iota
	DisconnectReasonCantConnectNoInternet
	DisconnectReasonNoPermissions
	DisconnectReasonUnrecoverableError
	DisconnectReasonThirdPartyBlocked
	DisconnectReasonThirdPartyNoInternet
	DisconnectReasonThirdPartyBadIP
	DisconnectReasonThirdPartyNoServerOrServerLocked
	DisconnectReasonVersionMismatch
	DisconnectReasonSkinIssue
	DisconnectReasonInviteSessionNotFound
	DisconnectReasonEduLevelSettingsMissing
	DisconnectReasonLocalServerNotFound
	DisconnectReasonLegacyDisconnect
	DisconnectReasonUserLeaveGameAttempted
	DisconnectReasonPlatformLockedSkinsError
	DisconnectReasonRealmsWorldUnassigned
	DisconnectReasonRealmsServerCantConnect
	DisconnectReasonRealmsServerHidden
	DisconnectReasonRealmsServerDisabledBeta
	DisconnectReasonRealmsServerDisabled
	DisconnectReasonCrossPlatformDisabled
	DisconnectReasonCantConnect
	DisconnectReasonSessionNotFound
	DisconnectReasonClientSettingsIncompatibleWithServer
	DisconnectReasonServerFull
	DisconnectReasonInvalidPlatformSkin
	DisconnectReasonEditionVersionMismatch
	DisconnectReasonEditionMismatch
	DisconnectReasonLevelNewerThanExeVersion
	DisconnectReasonNoFailOccurred
	DisconnectReasonBannedSkin
	DisconnectReasonTimeout
	DisconnectReasonServerNotFound
	DisconnectReasonOutdatedServer
	DisconnectReasonOutdatedClient
)

// Disconnect may be sent by either side to close the connection with a reason shown to the user.
type Disconnect struct {
	// Reason is one of the DisconnectReason constants.
	Reason int32
	// HideDisconnectionScreen specifies if the disconnection screen should be hidden.
	HideDisconnectionScreen bool
	// Message is the human-readable message shown on the disconnection screen.
	Message string
}

// ID ...
func (*Disconnect) ID() uint32 {
	return IDDisconnect
}

// Marshal ...
func (pk *Disconnect) Marshal(io protocol.IO) {
	io.Varint32(&pk.Reason)
	io.Bool(&pk.HideDisconnectionScreen)
	if !pk.HideDisconnectionScreen {
		io.String(&pk.Message)
	}
}
