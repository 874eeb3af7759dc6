package websocket

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"switchboard/pkg/logger"
)

const (
	maxMessageSize = 10 * 1024
	pingTime       = pongTime * 9 / 10
	pongTime       = 60 * time.Second
	readWait       = 5 * time.Second
	writeWait      = 10 * time.Second

	// sendQueueSize bounds the per-connection outbound queue.
	// A peer that can't drain it in time gets disconnected.
	sendQueueSize = 64
)

type WSMessageHandler func(message []byte, err error)

type WS struct {
	conn deadlinedConn
	send chan []byte
	stop chan struct{}
	once sync.Once

	OnMessage WSMessageHandler

	pingPong bool
	shutdown sync.WaitGroup
	Done     chan struct{}

	log *logger.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	WriteBufferPool: &sync.Pool{},
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// IsUpgradeRequest says whether the request asks for a websocket upgrade.
func IsUpgradeRequest(r *http.Request) bool { return websocket.IsWebSocketUpgrade(r) }

// NewServer upgrades an HTTP request into a websocket connection.
func NewServer(w http.ResponseWriter, r *http.Request, log *logger.Logger) (*WS, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newSocket(conn, true, log), nil
}

func NewClient(address url.URL, log *logger.Logger) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.Dial(address.String(), nil)
	if err != nil {
		return nil, err
	}
	return newSocket(conn, false, log), nil
}

func newSocket(conn *websocket.Conn, pingPong bool, log *logger.Logger) *WS {
	safeConn := deadlinedConn{sock: conn, wt: writeWait}
	ws := &WS{
		conn:     safeConn,
		send:     make(chan []byte, sendQueueSize),
		stop:     make(chan struct{}),
		pingPong: pingPong,
		Done:     make(chan struct{}, 1),
		log:      log,
	}
	ws.shutdown.Add(2)
	return ws
}

// Listen starts the read/write pumps of the connection.
func (ws *WS) Listen() chan struct{} {
	go ws.writer()
	go ws.reader()
	return ws.Done
}

// reader pumps messages from the websocket connection to the OnMessage callback.
// Blocking, must be called as goroutine. Serializes all websocket reads.
func (ws *WS) reader() {
	defer func() {
		ws.Close()
		ws.shutdown.Done()
	}()
	ws.conn.setup(func(conn *websocket.Conn) {
		conn.SetReadLimit(maxMessageSize)
		if ws.pingPong {
			_ = conn.SetReadDeadline(time.Now().Add(pongTime))
			conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(pongTime)); return nil })
		} else {
			ws.conn.rt = readWait
		}
	})
	for {
		message, err := ws.conn.read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				ws.log.Debug().Err(err).Msg("unexpected socket close")
			}
			return
		}
		if ws.OnMessage != nil {
			ws.OnMessage(message, err)
		}
	}
}

// writer pumps messages from the send channel to the websocket connection.
// Blocking, must be called as goroutine. Serializes all websocket writes.
func (ws *WS) writer() {
	var ping <-chan time.Time
	if ws.pingPong {
		ticker := time.NewTicker(pingTime)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer func() {
		ws.Close()
		ws.shutdown.Done()
		ws.finish()
	}()
	for {
		select {
		case message := <-ws.send:
			if err := ws.conn.write(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ping:
			if err := ws.conn.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ws.stop:
			_ = ws.conn.write(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Write submits a message to the outbound queue.
// When a peer is too slow to drain the queue, the connection is dropped.
func (ws *WS) Write(data []byte) {
	select {
	case ws.send <- data:
	case <-ws.stop:
	default:
		ws.log.Warn().Msg("outbound queue overflow, dropping the connection")
		ws.Close()
	}
}

// Close terminates the connection; safe to call multiple times.
func (ws *WS) Close() { ws.once.Do(func() { close(ws.stop) }) }

// finish waits for both pumps to exit, then releases the socket
// and signals Done. Runs on the writer goroutine so the reader is
// unblocked with the underlying close first.
func (ws *WS) finish() {
	_ = ws.conn.close()
	ws.shutdown.Wait()
	ws.Done <- struct{}{}
}
