package packet

import "github.com/cooldogedev/prism/protocol"

const (
	TextTypeRaw uint8 = iota
	TextTypeChat
	TextTypeTranslation
	TextTypePopup
	TextTypeJukeboxPopup
	TextTypeTip
	TextTypeSystem
	TextTypeWhisper
	TextTypeAnnouncement
)

// Text is sent by both sides to deliver chat and system messages.
type Text struct {
	TextType   uint8
	SourceName string
	Message    string
	XUID       string
}

// ID ...
func (*Text) ID() uint32 {
	return IDText
}

// Marshal ...
func (pk *Text) Marshal(io protocol.IO) {
	io.Uint8(&pk.TextType)
	switch pk.TextType {
	case TextTypeChat, TextTypeWhisper, TextTypeAnnouncement:
		io.String(&pk.SourceName)
	}
	io.String(&pk.Message)
	io.String(&pk.XUID)
}
