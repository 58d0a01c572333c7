package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eddyjj92/compay-storefront/pkg/config"
	"github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
)

// Conn is the subset of a websocket connection the manager drives.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens websocket connections. Injected so tests run without a
// broker.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// GorillaDialer dials with gorilla/websocket.
type GorillaDialer struct{}

func (GorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// AuthorizeFunc signs a private or presence channel subscription. The
// composing application wires this to the marketplace broadcasting auth
// proxy.
type AuthorizeFunc func(ctx context.Context, socketID, channel string) (json.RawMessage, error)

// Event is one broadcast received on a subscribed channel.
type Event struct {
	Channel string
	Name    string
	Data    json.RawMessage
}

// Listener receives events for one channel.
type Listener func(Event)

// ConnectionManager owns one realtime connection and its channel
// subscriptions. All state lives on the object; there is no package-level
// connection. Lifecycle belongs to the composing application.
type ConnectionManager struct {
	cfg       config.ChatConfig
	dialer    Dialer
	authorize AuthorizeFunc
	logg      *logger.Logger

	mu        sync.Mutex
	conn      Conn
	socketID  string
	channels  map[string]struct{}
	listeners map[string][]Listener
	done      chan struct{}
}

func NewConnectionManager(cfg config.ChatConfig, dialer Dialer, authorize AuthorizeFunc, logg *logger.Logger) *ConnectionManager {
	if dialer == nil {
		dialer = GorillaDialer{}
	}
	return &ConnectionManager{
		cfg:       cfg,
		dialer:    dialer,
		authorize: authorize,
		logg:      logg,
		channels:  map[string]struct{}{},
		listeners: map[string][]Listener{},
	}
}

type frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Connect dials the broker and waits for the connection-established
// handshake that carries the socket ID.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.conn != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	url := fmt.Sprintf("%s/app/%s?protocol=7", strings.TrimRight(m.cfg.WSURL, "/"), m.cfg.AppKey)
	conn, err := m.dialer.Dial(ctx, url)
	if err != nil {
		return errors.Wrap(errors.CodeUpstream, err, "dial realtime broker")
	}

	socketID, err := awaitEstablished(conn)
	if err != nil {
		conn.Close()
		return err
	}

	m.mu.Lock()
	if m.conn != nil {
		// A concurrent Connect won the race; keep its connection.
		m.mu.Unlock()
		conn.Close()
		return nil
	}
	m.conn = conn
	m.socketID = socketID
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go m.readLoop(conn, done)
	go m.pingLoop(conn, done)
	return nil
}

func awaitEstablished(conn Conn) (string, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return "", errors.Wrap(errors.CodeUpstream, err, "realtime handshake read")
	}
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil || f.Event != "pusher:connection_established" {
		return "", errors.New(errors.CodeUpstream, "unexpected realtime handshake")
	}
	var payload struct {
		SocketID string `json:"socket_id"`
	}
	if err := json.Unmarshal(unquoteData(f.Data), &payload); err != nil || payload.SocketID == "" {
		return "", errors.New(errors.CodeUpstream, "handshake missing socket id")
	}
	return payload.SocketID, nil
}

// Disconnect closes the connection and drops every subscription and
// listener.
func (m *ConnectionManager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	done := m.done
	m.conn = nil
	m.socketID = ""
	m.channels = map[string]struct{}{}
	m.listeners = map[string][]Listener{}
	m.done = nil
	m.mu.Unlock()

	if done != nil {
		close(done)
	}
	if conn != nil {
		conn.Close()
	}
}

// Connected reports whether a handshaken connection is live.
func (m *ConnectionManager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// SocketID returns the broker-assigned socket ID, empty when disconnected.
func (m *ConnectionManager) SocketID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.socketID
}

// Subscribe joins a channel and registers listeners for its events.
// Private and presence channels are signed through the authorizer first.
// Subscribing twice to one channel only adds listeners.
func (m *ConnectionManager) Subscribe(ctx context.Context, channel string, listeners ...Listener) error {
	m.mu.Lock()
	conn := m.conn
	socketID := m.socketID
	_, already := m.channels[channel]
	m.listeners[channel] = append(m.listeners[channel], listeners...)
	m.mu.Unlock()

	if conn == nil {
		return errors.New(errors.CodeInternal, "not connected")
	}
	if already {
		return nil
	}

	data := map[string]any{"channel": channel}
	if needsAuth(channel) {
		if m.authorize == nil {
			return errors.New(errors.CodeInternal, "channel requires authorization but no authorizer is wired")
		}
		signed, err := m.authorize(ctx, socketID, channel)
		if err != nil {
			return err
		}
		var auth struct {
			Auth        string `json:"auth"`
			ChannelData string `json:"channel_data"`
		}
		if err := json.Unmarshal(signed, &auth); err != nil {
			return errors.Wrap(errors.CodeUpstream, err, "decode channel authorization")
		}
		data["auth"] = auth.Auth
		if auth.ChannelData != "" {
			data["channel_data"] = auth.ChannelData
		}
	}

	if err := conn.WriteJSON(map[string]any{"event": "pusher:subscribe", "data": data}); err != nil {
		return errors.Wrap(errors.CodeUpstream, err, "subscribe write")
	}
	m.mu.Lock()
	m.channels[channel] = struct{}{}
	m.mu.Unlock()
	return nil
}

// Unsubscribe leaves a channel and drops its listeners.
func (m *ConnectionManager) Unsubscribe(channel string) error {
	m.mu.Lock()
	conn := m.conn
	_, subscribed := m.channels[channel]
	delete(m.channels, channel)
	delete(m.listeners, channel)
	m.mu.Unlock()

	if conn == nil || !subscribed {
		return nil
	}
	if err := conn.WriteJSON(map[string]any{
		"event": "pusher:unsubscribe",
		"data":  map[string]any{"channel": channel},
	}); err != nil {
		return errors.Wrap(errors.CodeUpstream, err, "unsubscribe write")
	}
	return nil
}

// JoinPresence subscribes to the named presence channel.
func (m *ConnectionManager) JoinPresence(ctx context.Context, name string, listeners ...Listener) error {
	return m.Subscribe(ctx, "presence-"+name, listeners...)
}

// LeavePresence leaves the named presence channel.
func (m *ConnectionManager) LeavePresence(name string) error {
	return m.Unsubscribe("presence-" + name)
}

func (m *ConnectionManager) readLoop(conn Conn, done chan struct{}) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
			default:
				if m.logg != nil {
					m.logg.Warn(context.Background(), "chat.connection_lost")
				}
				m.Disconnect()
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		if strings.HasPrefix(f.Event, "pusher:") || f.Channel == "" {
			continue
		}

		m.mu.Lock()
		listeners := append([]Listener{}, m.listeners[f.Channel]...)
		m.mu.Unlock()

		event := Event{Channel: f.Channel, Name: f.Event, Data: unquoteData(f.Data)}
		for _, listener := range listeners {
			listener(event)
		}
	}
}

func (m *ConnectionManager) pingLoop(conn Conn, done chan struct{}) {
	interval := m.cfg.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(map[string]any{"event": "pusher:ping", "data": map[string]any{}}); err != nil {
				return
			}
		}
	}
}

func needsAuth(channel string) bool {
	return strings.HasPrefix(channel, "private-") || strings.HasPrefix(channel, "presence-")
}

// unquoteData unwraps the protocol's string-encoded event payloads.
func unquoteData(data json.RawMessage) json.RawMessage {
	if len(data) == 0 || data[0] != '"' {
		return data
	}
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return data
	}
	return json.RawMessage(inner)
}
