package login

import "fmt"

// State is a stage of a login sequence. States only move forward and are never revisited.
type State int

const (
	AwaitNetworkSettings State = iota
	AwaitLogin
	AwaitHandshakeAck
	AwaitLoginSuccessAck
	AwaitResourcePackResponse
	AwaitResourcePackStack
	AwaitResourcePackCompletion
	AwaitStartGameAck
	AwaitCreativeContentAck
	AwaitBiomeDefinitionsAck
	AwaitLevelChunkAck
	AwaitPlayStatusAck
	AwaitLocalPlayerInitialised
	Success
)

var stateNames = [...]string{
	AwaitNetworkSettings:        "AwaitNetworkSettings",
	AwaitLogin:                  "AwaitLogin",
	AwaitHandshakeAck:           "AwaitHandshakeAck",
	AwaitLoginSuccessAck:        "AwaitLoginSuccessAck",
	AwaitResourcePackResponse:   "AwaitResourcePackResponse",
	AwaitResourcePackStack:      "AwaitResourcePackStack",
	AwaitResourcePackCompletion: "AwaitResourcePackCompletion",
	AwaitStartGameAck:           "AwaitStartGameAck",
	AwaitCreativeContentAck:     "AwaitCreativeContentAck",
	AwaitBiomeDefinitionsAck:    "AwaitBiomeDefinitionsAck",
	AwaitLevelChunkAck:          "AwaitLevelChunkAck",
	AwaitPlayStatusAck:          "AwaitPlayStatusAck",
	AwaitLocalPlayerInitialised: "AwaitLocalPlayerInitialised",
	Success:                     "Success",
}

// String ...
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}
