package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/eddyjj92/compay-storefront/pkg/config"
)

type fakeConn struct {
	mu       sync.Mutex
	incoming chan []byte
	written  []map[string]any
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{incoming: make(chan []byte, 16)}
}

func (c *fakeConn) push(raw string) {
	c.incoming <- []byte(raw)
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	raw, ok := <-c.incoming
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, raw, nil
}

func (c *fakeConn) WriteJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	c.mu.Lock()
	c.written = append(c.written, decoded)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.incoming)
	}
	return nil
}

func (c *fakeConn) frames() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]map[string]any{}, c.written...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeDialer struct {
	conn *fakeConn
	err  error
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

// queueDialer hands out a distinct connection per dial and remembers which
// ones were actually dialed.
type queueDialer struct {
	mu     sync.Mutex
	conns  []*fakeConn
	dialed []*fakeConn
}

func (d *queueDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	conn := d.conns[len(d.dialed)]
	d.dialed = append(d.dialed, conn)
	return conn, nil
}

func (d *queueDialer) dialedConns() []*fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeConn{}, d.dialed...)
}

func connected(t *testing.T, authorize AuthorizeFunc) (*ConnectionManager, *fakeConn) {
	t.Helper()

	conn := newFakeConn()
	conn.push(`{"event":"pusher:connection_established","data":"{\"socket_id\":\"123.456\"}"}`)

	m := NewConnectionManager(config.ChatConfig{WSURL: "ws://broker", AppKey: "key"}, &fakeDialer{conn: conn}, authorize, nil)
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(m.Disconnect)
	return m, conn
}

func TestConnectHandshakeCapturesSocketID(t *testing.T) {
	t.Parallel()

	m, _ := connected(t, nil)
	if got := m.SocketID(); got != "123.456" {
		t.Fatalf("unexpected socket id %q", got)
	}
	if !m.Connected() {
		t.Fatal("expected connected state")
	}
}

func TestConcurrentConnectKeepsOneConnection(t *testing.T) {
	t.Parallel()

	first := newFakeConn()
	first.push(`{"event":"pusher:connection_established","data":"{\"socket_id\":\"111.1\"}"}`)
	second := newFakeConn()
	second.push(`{"event":"pusher:connection_established","data":"{\"socket_id\":\"222.2\"}"}`)

	dialer := &queueDialer{conns: []*fakeConn{first, second}}
	m := NewConnectionManager(config.ChatConfig{WSURL: "ws://broker", AppKey: "key"}, dialer, nil, nil)
	t.Cleanup(m.Disconnect)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Connect(context.Background()); err != nil {
				t.Errorf("connect: %v", err)
			}
		}()
	}
	wg.Wait()

	if !m.Connected() {
		t.Fatal("expected connected state")
	}
	socketByConn := map[*fakeConn]string{first: "111.1", second: "222.2"}
	retained := 0
	for _, conn := range dialer.dialedConns() {
		if socketByConn[conn] == m.SocketID() {
			retained++
			if conn.isClosed() {
				t.Fatal("retained connection must stay open")
			}
			continue
		}
		if !conn.isClosed() {
			t.Fatalf("losing connection %s leaked", socketByConn[conn])
		}
	}
	if retained != 1 {
		t.Fatalf("expected exactly one retained connection, got %d", retained)
	}
}

func TestSubscribePublicChannelSendsFrame(t *testing.T) {
	t.Parallel()

	m, conn := connected(t, nil)
	if err := m.Subscribe(context.Background(), "storefront"); err != nil {
		t.Fatal(err)
	}

	frames := conn.frames()
	if len(frames) != 1 || frames[0]["event"] != "pusher:subscribe" {
		t.Fatalf("unexpected frames %v", frames)
	}
	data := frames[0]["data"].(map[string]any)
	if data["channel"] != "storefront" {
		t.Fatalf("unexpected subscribe payload %v", data)
	}
	if _, ok := data["auth"]; ok {
		t.Fatal("public channel must not be signed")
	}
}

func TestPresenceChannelIsAuthorizedWithSocketID(t *testing.T) {
	t.Parallel()

	var gotSocket, gotChannel string
	authorize := func(ctx context.Context, socketID, channel string) (json.RawMessage, error) {
		gotSocket, gotChannel = socketID, channel
		return json.RawMessage(`{"auth":"key:signature","channel_data":"{\"user_id\":7}"}`), nil
	}

	m, conn := connected(t, authorize)
	if err := m.JoinPresence(context.Background(), "chat.7"); err != nil {
		t.Fatal(err)
	}

	if gotSocket != "123.456" || gotChannel != "presence-chat.7" {
		t.Fatalf("authorizer called with %q %q", gotSocket, gotChannel)
	}
	data := conn.frames()[0]["data"].(map[string]any)
	if data["auth"] != "key:signature" || data["channel_data"] == "" {
		t.Fatalf("signed payload not forwarded: %v", data)
	}
}

func TestAuthorizationFailureBlocksSubscription(t *testing.T) {
	t.Parallel()

	authorize := func(ctx context.Context, socketID, channel string) (json.RawMessage, error) {
		return nil, errors.New("denied")
	}
	m, conn := connected(t, authorize)

	if err := m.Subscribe(context.Background(), "private-chat.7"); err == nil {
		t.Fatal("expected authorization error")
	}
	if len(conn.frames()) != 0 {
		t.Fatal("no subscribe frame should be sent on auth failure")
	}
}

func TestEventsDispatchToChannelListeners(t *testing.T) {
	t.Parallel()

	m, conn := connected(t, nil)

	events := make(chan Event, 1)
	if err := m.Subscribe(context.Background(), "storefront", func(e Event) {
		events <- e
	}); err != nil {
		t.Fatal(err)
	}

	conn.push(`{"event":"message.created","channel":"storefront","data":"{\"body\":\"hola\"}"}`)

	select {
	case event := <-events:
		if event.Name != "message.created" || event.Channel != "storefront" {
			t.Fatalf("unexpected event %+v", event)
		}
		var payload struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(event.Data, &payload); err != nil || payload.Body != "hola" {
			t.Fatalf("payload not unwrapped: %s", event.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("listener never invoked")
	}
}

func TestUnsubscribeDropsListeners(t *testing.T) {
	t.Parallel()

	m, conn := connected(t, nil)
	fired := make(chan struct{}, 1)
	if err := m.Subscribe(context.Background(), "storefront", func(Event) {
		fired <- struct{}{}
	}); err != nil {
		t.Fatal(err)
	}
	if err := m.Unsubscribe("storefront"); err != nil {
		t.Fatal(err)
	}

	conn.push(`{"event":"message.created","channel":"storefront","data":"{}"}`)

	select {
	case <-fired:
		t.Fatal("listener fired after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}

	frames := conn.frames()
	last := frames[len(frames)-1]
	if last["event"] != "pusher:unsubscribe" {
		t.Fatalf("expected unsubscribe frame, got %v", last)
	}
}

func TestSubscribeWithoutConnectionFails(t *testing.T) {
	t.Parallel()

	m := NewConnectionManager(config.ChatConfig{}, &fakeDialer{conn: newFakeConn()}, nil, nil)
	if err := m.Subscribe(context.Background(), "storefront"); err == nil {
		t.Fatal("expected error before connect")
	}
}
