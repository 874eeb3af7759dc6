package signal

import (
	"strings"
	"testing"

	"switchboard/pkg/network"
)

func TestRoomKey(t *testing.T) {
	tests := []struct {
		room string
		addr network.Address
		key  string
	}{
		{room: "abc", addr: "8.8.8.8:100", key: "abc"},
		{room: "abc", addr: "127.0.0.1:200", key: "abc"},
		{room: "", addr: "127.0.0.1:300", key: InternalRoom},
		{room: "", addr: "10.1.2.3:1", key: InternalRoom},
		{room: "", addr: "192.168.0.42:1", key: InternalRoom},
		{room: "", addr: "[::1]:1", key: InternalRoom},
		{room: "", addr: "[fe80::1]:1", key: InternalRoom},
		{room: "", addr: "[fd00::1]:1", key: InternalRoom},
		{room: "", addr: "93.184.216.34:555", key: "93.184.216.34"},
		{room: strings.Repeat("x", 33), addr: "93.184.216.34:555", key: "93.184.216.34"},
		{room: strings.Repeat("x", 32), addr: "93.184.216.34:555", key: strings.Repeat("x", 32)},
		{room: "favicon.ico", addr: "127.0.0.1:1", key: InternalRoom},
	}

	for _, test := range tests {
		if key := RoomKey(test.room, test.addr); key != test.key {
			t.Errorf("RoomKey(%q, %q) = %q, want %q", test.room, test.addr, key, test.key)
		}
	}
}

func TestSameRoomSamePartition(t *testing.T) {
	a := RoomKey("abc", "127.0.0.1:1000")
	b := RoomKey("abc", "93.184.216.34:2000")
	if a != b {
		t.Errorf("same explicit room resolved to different partitions: %q != %q", a, b)
	}
}
