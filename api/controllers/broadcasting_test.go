package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/eddyjj92/compay-storefront/pkg/session"
)

func broadcastingRequest(sess *session.Session, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/broadcasting/auth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withSession(req, sess)
}

func TestBroadcastingAuthRequiresChannelFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, http.NewServeMux())
	resp := httptest.NewRecorder()
	BroadcastingAuth(env.client, nil)(resp, broadcastingRequest(session.New("s1"), url.Values{}))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestBroadcastingAuthRequiresLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, http.NewServeMux())
	form := url.Values{"socket_id": {"81.1"}, "channel_name": {"private-chat.5"}}
	resp := httptest.NewRecorder()
	BroadcastingAuth(env.client, nil)(resp, broadcastingRequest(session.New("s1"), form))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestBroadcastingAuthProxiesSignedResponse(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/broadcasting/auth", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("missing bearer token, got %q", got)
		}
		var payload struct {
			SocketID    string `json:"socket_id"`
			ChannelName string `json:"channel_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode auth payload: %v", err)
		}
		if payload.SocketID != "81.1" || payload.ChannelName != "private-chat.5" {
			t.Errorf("unexpected payload %+v", payload)
		}
		w.Write([]byte(`{"auth":"key:signature"}`))
	})
	env := newTestEnv(t, mux)
	sess := session.New("s1")
	sess.SetAuth("tok-1", nil)

	form := url.Values{"socket_id": {"81.1"}, "channel_name": {"private-chat.5"}}
	resp := httptest.NewRecorder()
	BroadcastingAuth(env.client, nil)(resp, broadcastingRequest(sess, form))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got := strings.TrimSpace(resp.Body.String()); got != `{"auth":"key:signature"}` {
		t.Fatalf("signed response must pass through untouched, got %s", got)
	}
}
