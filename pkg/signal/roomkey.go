package signal

import "switchboard/pkg/network"

// InternalRoom is the shared partition for all callers from
// private or loopback addresses that didn't name a room.
const InternalRoom = "internal"

const maxRoomIdLen = 32

// reserved path segments that can't be used as room names.
var reservedRooms = map[string]struct{}{
	"favicon.ico": {},
	"static":      {},
	"healthz":     {},
}

// ValidRoomId says whether an explicit room identifier can key a partition.
func ValidRoomId(id string) bool {
	if id == "" || len(id) > maxRoomIdLen {
		return false
	}
	_, taken := reservedRooms[id]
	return !taken
}

// RoomKey derives the partition key for a connection.
// An explicit valid room id wins; otherwise the caller address decides:
// private and loopback callers share the internal partition, everyone
// else keys by their own address.
func RoomKey(roomId string, addr network.Address) string {
	if ValidRoomId(roomId) {
		return roomId
	}
	if addr.IsPrivate() {
		return InternalRoom
	}
	return addr.Host()
}
