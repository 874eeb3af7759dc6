package signal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"switchboard/pkg/logger"
)

type recConn struct {
	mu   sync.Mutex
	sent [][]byte
}

func (c *recConn) Write(data []byte) {
	c.mu.Lock()
	c.sent = append(c.sent, data)
	c.mu.Unlock()
}

func (c *recConn) Close() {}

func (c *recConn) outbound(t *testing.T) []envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]envelope, len(c.sent))
	for i, raw := range c.sent {
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			t.Fatalf("broken outbound frame %v: %v", string(raw), err)
		}
	}
	return out
}

type envelope struct {
	T    string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*Router, *Registry) {
	t.Helper()
	registry := testRegistry()
	return NewRouter(registry, logger.Default()), registry
}

func TestForwardCandidate(t *testing.T) {
	router, registry := newTestRouter(t)
	sender, target := &recConn{}, &recConn{}
	a, _ := registry.Register("room", sender, "")
	b, _ := registry.Register("room", target, "")

	msg := fmt.Sprintf(`{"uid":%q,"targetId":%q,"type":"9001","data":{"candidate":"x"}}`, a.Id, b.Id)
	router.Dispatch("room", []byte(msg))

	if len(sender.outbound(t)) != 0 {
		t.Errorf("sender got %v echoes", len(sender.outbound(t)))
	}
	got := target.outbound(t)
	if len(got) != 1 {
		t.Fatalf("target got %v messages, want 1", len(got))
	}
	if got[0].T != SendCandidate {
		t.Errorf("forwarded type %v, want %v", got[0].T, SendCandidate)
	}
	var fwd ForwardInfo
	if err := json.Unmarshal(got[0].Data, &fwd); err != nil {
		t.Fatal(err)
	}
	if fwd.From != a.Id {
		t.Errorf("forward carries sender %q, want %q", fwd.From, a.Id)
	}
	if string(fwd.Payload) != `{"candidate":"x"}` {
		t.Errorf("forward lost the payload: %v", string(fwd.Payload))
	}
}

func TestForwardKinds(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{in: RecvCandidate, out: SendCandidate},
		{in: RecvOffer, out: SendNewConnection},
		{in: RecvAnswer, out: SendConnected},
	}
	for _, test := range tests {
		router, registry := newTestRouter(t)
		target := &recConn{}
		a, _ := registry.Register("room", &recConn{}, "")
		b, _ := registry.Register("room", target, "")

		msg := fmt.Sprintf(`{"uid":%q,"targetId":%q,"type":%q,"data":{}}`, a.Id, b.Id, test.in)
		router.Dispatch("room", []byte(msg))

		got := target.outbound(t)
		if len(got) != 1 || got[0].T != test.out {
			t.Errorf("dispatch of %v produced %+v, want one %v", test.in, got, test.out)
		}
	}
}

func TestDropUnknownTarget(t *testing.T) {
	router, registry := newTestRouter(t)
	sender := &recConn{}
	a, _ := registry.Register("room", sender, "")

	// "99999" was never registered
	msg := fmt.Sprintf(`{"uid":%q,"targetId":"99999","type":"9001","data":{"candidate":"x"}}`, a.Id)
	router.Dispatch("room", []byte(msg))

	if n := len(sender.outbound(t)); n != 0 {
		t.Errorf("expected zero outbound sends, got %v", n)
	}
}

func TestDropUnknownSender(t *testing.T) {
	router, registry := newTestRouter(t)
	target := &recConn{}
	b, _ := registry.Register("room", target, "")

	msg := fmt.Sprintf(`{"uid":"01123","targetId":%q,"type":"9001","data":{}}`, b.Id)
	router.Dispatch("room", []byte(msg))

	if n := len(target.outbound(t)); n != 0 {
		t.Errorf("expected zero outbound sends, got %v", n)
	}
}

func TestDropMalformed(t *testing.T) {
	router, registry := newTestRouter(t)
	target := &recConn{}
	a, _ := registry.Register("room", &recConn{}, "")
	b, _ := registry.Register("room", target, "")

	frames := []string{
		`not json at all`,
		// no target
		`{"uid":"` + a.Id + `","type":"9001","data":{}}`,
		// no sender
		`{"targetId":"` + b.Id + `","type":"9001","data":{}}`,
		// no type
		`{"uid":"` + a.Id + `","targetId":"` + b.Id + `","data":{}}`,
		// unknown kind
		`{"uid":"` + a.Id + `","targetId":"` + b.Id + `","type":"4242","data":{}}`,
	}
	for _, frame := range frames {
		router.Dispatch("room", []byte(frame))
	}

	if n := len(target.outbound(t)); n != 0 {
		t.Errorf("malformed frames produced %v sends", n)
	}
}

func TestKeepaliveNoop(t *testing.T) {
	router, registry := newTestRouter(t)
	conn := &recConn{}
	registry.Register("room", conn, "")

	router.Dispatch("room", []byte(`{"type":"9000"}`))

	if n := len(conn.outbound(t)); n != 0 {
		t.Errorf("keepalive produced %v sends", n)
	}
}

func TestNicknameBroadcast(t *testing.T) {
	router, registry := newTestRouter(t)
	conns := []*recConn{{}, {}, {}}
	var members []*Participant
	for _, c := range conns {
		p, _ := registry.Register("room", c, "")
		members = append(members, p)
	}

	msg := fmt.Sprintf(`{"uid":%q,"targetId":"","type":"9004","data":{"nickname":"neo"}}`, members[0].Id)
	router.Dispatch("room", []byte(msg))

	for i, c := range conns {
		got := c.outbound(t)
		if len(got) != 1 {
			t.Fatalf("member %v got %v broadcasts, want exactly 1", i, len(got))
		}
		if got[0].T != SendNicknameUpdated {
			t.Errorf("member %v got type %v", i, got[0].T)
		}
		var info NicknameInfo
		if err := json.Unmarshal(got[0].Data, &info); err != nil {
			t.Fatal(err)
		}
		if info.Id != members[0].Id || info.Nickname != "neo" {
			t.Errorf("broadcast carries %+v", info)
		}
	}
	if p, _ := registry.Find("room", members[0].Id); p.Nickname != "neo" {
		t.Errorf("registry kept nickname %q", p.Nickname)
	}
}

func TestNicknameUnknownSender(t *testing.T) {
	router, registry := newTestRouter(t)
	conn := &recConn{}
	registry.Register("room", conn, "")

	router.Dispatch("room", []byte(`{"uid":"99999","targetId":"","type":"9004","data":{"nickname":"x"}}`))

	if n := len(conn.outbound(t)); n != 0 {
		t.Errorf("rename of an unknown sender produced %v sends", n)
	}
}
