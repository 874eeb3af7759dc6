package signal

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"switchboard/pkg/logger"
)

// maxIdAttempts caps the id-generation retry loop. The collision
// space is tiny compared to expected room sizes, so hitting the cap
// means something is seriously broken with that partition.
const maxIdAttempts = 100

var ErrNoFreeIds = errors.New("no free participant ids")

// Registry owns the partition map: partition key to the ordered
// list of connected participants. One lock guards the whole map,
// roster snapshots are copied out so no send happens under it.
type Registry struct {
	mu         sync.Mutex
	partitions map[string][]*Participant
	log        *logger.Logger
}

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{partitions: make(map[string][]*Participant, 10), log: log}
}

// Register adds a new participant to the room partition and assigns
// it an id unique within that partition.
func (r *Registry) Register(room string, conn Conn, nickname string) (*Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.partitions[room]
	id, err := nextId(list)
	if err != nil {
		return nil, err
	}
	p := &Participant{Id: id, Nickname: nickname, conn: conn, log: r.log}
	r.partitions[room] = append(list, p)
	return p, nil
}

// Unregister removes the participant from the partition.
// Removing an absent id is a no-op. The last leave drops the
// partition so empty rooms don't accumulate.
func (r *Registry) Unregister(room string, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.partitions[room]
	for i, p := range list {
		if p.Id == id {
			r.partitions[room] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(r.partitions[room]) == 0 {
		delete(r.partitions, room)
	}
}

// List returns a roster snapshot in the insertion order.
func (r *Registry) List(room string) []*Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.partitions[room]
	snapshot := make([]*Participant, len(list))
	copy(snapshot, list)
	return snapshot
}

// Roster snapshots the partition as wire entries in the insertion
// order. Values are copied under the lock, so a concurrent rename
// can't tear a nickname read.
func (r *Registry) Roster(room string) []RosterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.partitions[room]
	entries := make([]RosterEntry, len(list))
	for i, p := range list {
		entries[i] = RosterEntry{Id: p.Id, Nickname: p.Nickname}
	}
	return entries
}

// Find looks a participant up by id; absence is a normal outcome.
func (r *Registry) Find(room string, id string) (*Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.partitions[room] {
		if p.Id == id {
			return p, true
		}
	}
	return nil, false
}

// SetNickname renames the participant, false when it's not there.
func (r *Registry) SetNickname(room string, id string, nickname string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.partitions[room] {
		if p.Id == id {
			p.Nickname = nickname
			return true
		}
	}
	return false
}

// Partitions counts the current partitions.
func (r *Registry) Partitions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.partitions)
}

// Size counts the registered participants over all partitions.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, list := range r.partitions {
		n += len(list)
	}
	return n
}

// nextId composes a pseudo-random fragment with a sub-millisecond
// timestamp fragment, regenerating on collision within the partition.
func nextId(list []*Participant) (string, error) {
	for i := 0; i < maxIdAttempts; i++ {
		id := fmt.Sprintf("%02d%03d", rand.Intn(100), time.Now().UnixMicro()%1000)
		if !taken(list, id) {
			return id, nil
		}
	}
	return "", ErrNoFreeIds
}

func taken(list []*Participant, id string) bool {
	for _, p := range list {
		if p.Id == id {
			return true
		}
	}
	return false
}
