// Package signal contains the room/session management and message
// routing core of the relay: partitions of participants, the policy
// table, and the type-dispatch protocol for connection negotiation.
//
// Each message is a JSON-encoded envelope. Inbound:
//
//	uid      - (required) sender participant id;
//	targetId - (required for forwards) target participant id;
//	type     - (required) one of the predefined message type codes;
//	data     - (optional) payload with arbitrary data.
//
// Outbound envelopes carry only a type code and a payload. The relay
// never replies with errors: anything malformed or unknown is dropped.
package signal

import "github.com/goccy/go-json"

// Inbound message type codes.
const (
	RecvKeepalive = "9000"
	RecvCandidate = "9001"
	RecvOffer     = "9002"
	RecvAnswer    = "9003"
	RecvNickname  = "9004"
)

// Outbound message type codes.
const (
	SendRegister        = "8000"
	SendRoster          = "8001"
	SendJoined          = "8002"
	SendCandidate       = "8101"
	SendNewConnection   = "8102"
	SendConnected       = "8103"
	SendNicknameUpdated = "8104"
)

type In struct {
	Uid      string          `json:"uid"`
	TargetId string          `json:"targetId"`
	T        string          `json:"type"`
	Payload  json.RawMessage `json:"data,omitempty"` // 2-pass unmarshal
}

type Out struct {
	T       string `json:"type"`
	Payload any    `json:"data,omitempty"`
}

// RegisterInfo acknowledges a registration to the joining participant.
// Turns is the relay-policy hint, present only when a policy matched,
// so a zero-turns policy still acknowledges the match.
type RegisterInfo struct {
	Id    string `json:"id"`
	Room  string `json:"room"`
	Turns *int   `json:"turns,omitempty"`
}

type RosterEntry struct {
	Id       string `json:"id"`
	Nickname string `json:"nickname,omitempty"`
}

// ForwardInfo relays a negotiation payload with its sender id.
type ForwardInfo struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"data,omitempty"`
}

type NicknameInfo struct {
	Id       string `json:"id,omitempty"`
	Nickname string `json:"nickname"`
}
