package signal

import (
	"os"
	"strings"

	"github.com/goccy/go-json"
	"switchboard/pkg/logger"
)

// RoomPolicy is a static per-room configuration record.
type RoomPolicy struct {
	RoomId   string `json:"roomId"`
	Password string `json:"pwd"`
	Turns    int    `json:"turns"`
}

// PolicyTable is the room policy lookup, loaded once at startup
// and read-only for the lifetime of the process.
type PolicyTable struct {
	list map[string]RoomPolicy
}

// LoadPolicies reads the policy file, a JSON array of room records.
// An absent or unreadable file yields an empty table, not an error:
// no room is password-protected then.
func LoadPolicies(path string, log *logger.Logger) *PolicyTable {
	table := &PolicyTable{list: map[string]RoomPolicy{}}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Info().Msgf("no room policies loaded from [%v]", path)
		return table
	}
	var records []RoomPolicy
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Msgf("broken room policy file [%v]", path)
		return table
	}
	for _, rec := range records {
		table.list[rec.RoomId] = rec
	}
	log.Info().Msgf("loaded %v room policies", len(table.list))
	return table
}

func (t *PolicyTable) Get(room string) (RoomPolicy, bool) {
	p, ok := t.list[room]
	return p, ok
}

// Authorize matches the room password case-insensitively and returns
// the relay-policy hint. A miss is not an error, the caller proceeds
// without the hint.
func (t *PolicyTable) Authorize(room string, password string) (turns int, ok bool) {
	p, has := t.list[room]
	if !has || !strings.EqualFold(p.Password, password) {
		return 0, false
	}
	return p.Turns, true
}

func (t *PolicyTable) Size() int { return len(t.list) }
