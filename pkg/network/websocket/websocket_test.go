package websocket

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"switchboard/pkg/logger"
)

func TestWebsocketEcho(t *testing.T) {
	var server *WS
	handler := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := NewServer(w, r, logger.Default())
		if err != nil {
			t.Errorf("couldn't upgrade: %v", err)
			return
		}
		server = ws
		ws.OnMessage = func(message []byte, err error) {
			if err == nil {
				ws.Write(message)
			}
		}
		ws.Listen()
	}))
	defer handler.Close()

	addr, _ := url.Parse("ws" + strings.TrimPrefix(handler.URL, "http"))
	client, err := NewClient(*addr, logger.Default())
	if err != nil {
		t.Fatalf("couldn't connect: %v", err)
	}

	got := make(chan []byte, 1)
	client.OnMessage = func(message []byte, err error) {
		if err == nil {
			got <- message
		}
	}
	done := client.Listen()

	client.Write([]byte("ping"))
	select {
	case message := <-got:
		if string(message) != "ping" {
			t.Errorf("echo is %q", string(message))
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no echo")
	}

	client.Close()
	<-done
	if server != nil {
		server.Close()
	}
}

func TestWriteAfterClose(t *testing.T) {
	handler := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := NewServer(w, r, logger.Default())
		if err != nil {
			return
		}
		ws.Listen()
	}))
	defer handler.Close()

	addr, _ := url.Parse("ws" + strings.TrimPrefix(handler.URL, "http"))
	client, err := NewClient(*addr, logger.Default())
	if err != nil {
		t.Fatalf("couldn't connect: %v", err)
	}
	done := client.Listen()
	client.Close()
	<-done

	// must not panic or block
	client.Write([]byte("after close"))
}

func TestWriteOverflowDrops(t *testing.T) {
	connected := make(chan *WS, 1)
	handler := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := NewServer(w, r, logger.Default())
		if err != nil {
			return
		}
		connected <- ws
	}))
	defer handler.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(handler.URL, "http"), nil)
	if err != nil {
		t.Fatalf("couldn't connect: %v", err)
	}
	defer conn.Close()

	server := <-connected
	// the pumps are not started, so nothing drains the queue
	for i := 0; i < sendQueueSize; i++ {
		server.Write([]byte("x"))
	}
	select {
	case <-server.stop:
		t.Fatal("connection dropped before the queue was full")
	default:
	}

	server.Write([]byte("overflow"))
	select {
	case <-server.stop:
	default:
		t.Fatal("queue overflow must drop the connection")
	}
}
