// Package remote streams an engine's framebuffer to connected browser
// clients over websockets and relays their button presses back,
// outside the dependency-free engine package.
//
// Grounded on thelolagemann-gomeboy/pkg/display/web/hub.go and
// client.go's register/unregister/broadcast channel shape and
// read/write pump goroutines, collapsed from gomeboy's multi-client
// two-player hub (frame patching, compression negotiation, spectator
// list sync) down to plain whole-frame broadcast to every viewer —
// supplementing the dropped `interface/gui.rs` remote-friendly design
// note from craterboy.
package remote

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmgcore/lr35902/pkg/telemetry"
	"github.com/gorilla/websocket"
	"golang.org/x/sys/unix"
)

var logger = telemetry.New("remote")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 16,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub accepts websocket connections, broadcasts framebuffer frames
// pushed via Broadcast, and delivers each client's button-mask
// messages on Input.
type Hub struct {
	Input chan uint8

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	mu sync.Mutex
}

// NewHub constructs an idle Hub; call Run to start serving.
func NewHub() *Hub {
	return &Hub{
		Input:      make(chan uint8, 16),
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 4),
	}
}

// Broadcast pushes a framebuffer frame (already serialized by the
// caller, e.g. 3 bytes per pixel row-major) to every connected
// client. The frame is dropped if the hub's own broadcast buffer is
// full, and Run disconnects any client whose send buffer is full
// rather than blocking the whole hub on one slow reader.
func (h *Hub) Broadcast(frame []byte) {
	select {
	case h.broadcast <- frame:
	default:
	}
}

// ServeHTTP upgrades the request to a websocket and registers a new
// client, matching gorilla/websocket's standard handler shape.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 64), connectedAt: time.Now()}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

// Run drives the hub's register/unregister/broadcast event loop. It
// blocks until ctx-like cancellation is out of scope here (the hub
// runs for the life of the process); callers spawn it as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case frame := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- frame:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

type client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if len(message) != 1 {
			continue // malformed input frame, ignore rather than disconnect
		}
		select {
		case c.hub.Input <- message[0]:
		default:
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	latency := time.NewTicker(5 * time.Second)
	defer latency.Stop()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-latency.C:
			if tcpConn, ok := c.conn.UnderlyingConn().(*net.TCPConn); ok {
				if rtt, err := tcpLatency(tcpConn); err == nil {
					logger.Info("client rtt", "rtt", rtt)
				}
			}
		}
	}
}

// ListenAndServe starts the hub's HTTP server and event loop. It
// blocks; callers run it in a goroutine.
func ListenAndServe(addr string, h *Hub) error {
	go h.Run()
	mux := http.NewServeMux()
	mux.Handle("/", h)
	logger.Info("serving", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

// tcpLatency reads the kernel's RTT estimate for a client connection,
// matching gomeboy's tcpInfo helper, used to report link quality to a
// debug view rather than anything the protocol depends on.
func tcpLatency(conn *net.TCPConn) (time.Duration, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}

	var info *unix.TCPInfo
	var ctrlErr error
	err = raw.Control(func(fd uintptr) {
		info, ctrlErr = unix.GetsockoptTCPInfo(int(fd), unix.IPPROTO_TCP, unix.TCP_INFO)
	})
	switch {
	case err != nil:
		return 0, err
	case ctrlErr != nil:
		return 0, ctrlErr
	}
	return time.Duration(info.Rtt) * time.Microsecond, nil
}
