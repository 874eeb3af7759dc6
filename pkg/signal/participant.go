package signal

import (
	"github.com/goccy/go-json"
	"switchboard/pkg/logger"
)

// Conn is the outbound end of a participant connection.
// Writes are serialized by the transport, so concurrent broadcasts
// targeting the same participant can't interleave.
type Conn interface {
	Write(data []byte)
	Close()
}

// Participant is one connected peer within one partition.
// The record exists in the registry exactly as long as its
// connection is open.
type Participant struct {
	Id       string
	Nickname string

	conn Conn
	log  *logger.Logger
}

// Send encodes and submits one outbound message to the participant.
func (p *Participant) Send(t string, payload any) {
	data, err := json.Marshal(Out{T: t, Payload: payload})
	if err != nil {
		p.log.Error().Err(err).Msgf("broken outbound message %v", t)
		return
	}
	p.log.Debug().Str(logger.DirectionField, "→").Msgf("%v %v", t, p.Id)
	p.conn.Write(data)
}

func (p *Participant) Disconnect() { p.conn.Close() }
