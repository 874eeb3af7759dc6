package signal

import (
	"github.com/goccy/go-json"
	"switchboard/pkg/logger"
)

// Router is the stateless per-message dispatcher. Every inbound
// frame is classified by its type code and either forwarded to one
// peer, broadcast to the partition, or silently dropped. Nothing is
// ever replied to the sender: the protocol has no error message kind,
// and probing gets no signal back.
type Router struct {
	registry *Registry
	log      *logger.Logger
}

func NewRouter(registry *Registry, log *logger.Logger) *Router {
	return &Router{registry: registry, log: log}
}

// Dispatch handles one raw inbound frame from a partition member.
func (r *Router) Dispatch(room string, raw []byte) {
	var in In
	if err := json.Unmarshal(raw, &in); err != nil {
		r.drop(room, "?", "unparsable")
		return
	}
	if in.T == "" {
		r.drop(room, in.T, "no type")
		return
	}

	switch in.T {
	case RecvKeepalive:
		// keeps the transport open, nothing to do
		metricRouted.WithLabelValues(in.T).Inc()
	case RecvCandidate:
		r.forward(room, in, SendCandidate)
	case RecvOffer:
		r.forward(room, in, SendNewConnection)
	case RecvAnswer:
		r.forward(room, in, SendConnected)
	case RecvNickname:
		r.rename(room, in)
	default:
		r.drop(room, in.T, "unknown type")
	}
}

// forward relays the payload to the target when both the sender and
// the target are registered in the same partition. A vanished peer is
// a normal race, not a protocol violation.
func (r *Router) forward(room string, in In, outType string) {
	if in.Uid == "" || in.TargetId == "" {
		r.drop(room, in.T, "missing ids")
		return
	}
	if _, ok := r.registry.Find(room, in.Uid); !ok {
		r.drop(room, in.T, "unknown sender")
		return
	}
	target, ok := r.registry.Find(room, in.TargetId)
	if !ok {
		r.drop(room, in.T, "unknown target")
		return
	}
	metricRouted.WithLabelValues(in.T).Inc()
	target.Send(outType, ForwardInfo{From: in.Uid, Payload: in.Payload})
}

// rename updates the sender nickname and broadcasts the change to
// the whole partition, the sender included.
func (r *Router) rename(room string, in In) {
	if in.Uid == "" {
		r.drop(room, in.T, "missing ids")
		return
	}
	var nick NicknameInfo
	if err := json.Unmarshal(in.Payload, &nick); err != nil {
		r.drop(room, in.T, "unparsable")
		return
	}
	if !r.registry.SetNickname(room, in.Uid, nick.Nickname) {
		r.drop(room, in.T, "unknown sender")
		return
	}
	metricRouted.WithLabelValues(in.T).Inc()
	update := NicknameInfo{Id: in.Uid, Nickname: nick.Nickname}
	for _, p := range r.registry.List(room) {
		p.Send(SendNicknameUpdated, update)
	}
}

func (r *Router) drop(room string, t string, reason string) {
	metricDropped.Inc()
	r.log.Debug().Str(logger.DirectionField, "←").Msgf("drop %v in [%v]: %v", t, room, reason)
}
