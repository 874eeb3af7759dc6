package signal

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"switchboard/pkg/com"
	"switchboard/pkg/config"
	"switchboard/pkg/logger"
	"switchboard/pkg/network"
	"switchboard/pkg/network/websocket"
)

// Hub drives the connection lifecycle: Connecting -> Registered ->
// Closed. It authenticates the room password, registers the
// participant, announces rosters, and hands every inbound frame in
// the Registered state over to the router.
type Hub struct {
	conf     config.Rooms
	registry *Registry
	router   *Router
	policies *PolicyTable
	sockets  com.NetMap[com.Uid, *socket]
	log      *logger.Logger
}

// socket tracks one live transport connection for shutdown purposes.
type socket struct {
	id com.Uid
	ws *websocket.WS
}

func (s *socket) Id() com.Uid { return s.id }
func (s *socket) Disconnect() { s.ws.Close() }

func NewHub(conf config.Rooms, policies *PolicyTable, log *logger.Logger) *Hub {
	registry := NewRegistry(log)
	return &Hub{
		conf:     conf,
		registry: registry,
		router:   NewRouter(registry, log),
		policies: policies,
		sockets:  com.NewNetMap[com.Uid, *socket](),
		log:      log,
	}
}

// Handler serves both the signaling websocket and the static assets:
// upgrade requests become relay connections, anything else falls
// through to the single-page app.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsUpgradeRequest(r) {
			h.handleConnection(w, r)
			return
		}
		h.serveApp(w, r)
	})
}

func (h *Hub) handleConnection(w http.ResponseWriter, r *http.Request) {
	roomId, password := splitPath(r.URL.Path)
	addr := network.Address(remoteAddress(r))
	room := RoomKey(roomId, addr)

	var turns *int
	if ValidRoomId(roomId) {
		// a mismatch doesn't reject the connection, it only
		// forfeits the relay-policy hint
		if t, ok := h.policies.Authorize(roomId, password); ok {
			turns = &t
		}
	}

	uid := com.NewUid()
	log := h.log.Extend(h.log.With().Str("c", uid.Short()))

	ws, err := websocket.NewServer(w, r, log)
	if err != nil {
		h.log.Error().Err(err).Msg("socket upgrade failed")
		return
	}
	sock := &socket{id: uid, ws: ws}
	h.sockets.Add(sock)
	defer h.sockets.Remove(sock)

	ws.OnMessage = func(message []byte, err error) {
		if err != nil {
			return
		}
		h.router.Dispatch(room, message)
	}
	done := ws.Listen()

	p, err := h.registry.Register(room, ws, nickname(r))
	if err != nil {
		log.Error().Err(err).Msgf("can't register in [%v]", room)
		ws.Close()
		<-done
		return
	}
	log.Info().Msgf("join %v -> [%v]", p.Id, room)
	h.track()

	p.Send(SendRegister, RegisterInfo{Id: p.Id, Room: room, Turns: turns})
	list := h.registry.List(room)
	entries := h.registry.Roster(room)
	p.Send(SendRoster, entries)
	for _, member := range list {
		if member.Id != p.Id {
			member.Send(SendJoined, entries)
		}
	}

	<-done

	h.registry.Unregister(room, p.Id)
	log.Info().Msgf("leave %v <- [%v]", p.Id, room)
	h.track()
	remaining := h.registry.List(room)
	update := h.registry.Roster(room)
	for _, member := range remaining {
		member.Send(SendRoster, update)
	}
}

// Close drops every live connection, used on shutdown.
func (h *Hub) Close() {
	h.sockets.ForEach(func(s *socket) { s.Disconnect() })
}

// splitPath extracts the room id and the password from /{room}/{pwd}.
func splitPath(path string) (room string, password string) {
	parts := strings.SplitN(strings.Trim(path, "/"), "/", 3)
	if len(parts) > 0 {
		room = parts[0]
	}
	if len(parts) > 1 {
		password = parts[1]
	}
	return
}

// nickname reads the optional display name cookie of the request.
func nickname(r *http.Request) string {
	c, err := r.Cookie("nickname")
	if err != nil {
		return ""
	}
	if nick, err := url.QueryUnescape(c.Value); err == nil {
		return nick
	}
	return c.Value
}

// remoteAddress prefers the forwarded header over the socket peer.
func remoteAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	return r.RemoteAddr
}

// serveApp serves files from the static dir with an SPA fallback:
// a miss returns the app document with 200 instead of 404.
func (h *Hub) serveApp(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.conf.StaticDir, filepath.Clean("/"+r.URL.Path))
	if stat, err := os.Stat(path); err == nil && !stat.IsDir() {
		http.ServeFile(w, r, path)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.conf.StaticDir, h.conf.AppFile))
}

func (h *Hub) track() {
	metricParticipants.Set(float64(h.registry.Size()))
	metricPartitions.Set(float64(h.registry.Partitions()))
}
