package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendDeliversSignedPayload(t *testing.T) {
	var received atomic.Bool
	var gotSig, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotSig = r.Header.Get(signatureHeader)
		received.Store(true)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := New(srv.URL, "shh-secret", 2)
	defer d.Close()

	ts := time.Now().UTC()
	d.Send(Payload{EventType: "note.published", NoteID: "abc123", Summary: "a note", Timestamp: ts})
	d.Close()

	if !received.Load() {
		t.Fatal("expected the webhook endpoint to receive a delivery")
	}

	var p Payload
	if err := json.Unmarshal([]byte(gotBody), &p); err != nil {
		t.Fatalf("unmarshal delivered body: %v", err)
	}
	if p.EventType != "note.published" || p.NoteID != "abc123" || p.Summary != "a note" {
		t.Fatalf("unexpected payload: %+v", p)
	}

	mac := hmac.New(sha256.New, []byte("shh-secret"))
	mac.Write([]byte(gotBody))
	want := hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Fatalf("signature mismatch: got %s want %s", gotSig, want)
	}
}

func TestSendWithoutURLIsNoOp(t *testing.T) {
	d := New("", "secret", 1)
	d.Send(Payload{EventType: "note.created", NoteID: "x"})
	d.Close()
}

func TestSendRetriesOnFailureThenGivesUp(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New(srv.URL, "secret", 1)
	d.Send(Payload{EventType: "note.created", NoteID: "y"})
	d.Close()

	if got := attempts.Load(); got != maxRetries+1 {
		t.Fatalf("expected %d attempts, got %d", maxRetries+1, got)
	}
}

func TestSendDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := New(srv.URL, "secret", 1)
	for i := 0; i < 100; i++ {
		d.Send(Payload{EventType: "note.created", NoteID: "z"})
	}
	close(block)
	d.Close()
}

func TestSignIsDeterministic(t *testing.T) {
	body := []byte(`{"event_type":"note.created"}`)
	a := sign(body, []byte("k"))
	b := sign(body, []byte("k"))
	if a != b {
		t.Fatalf("sign not deterministic: %s vs %s", a, b)
	}
	if sign(body, []byte("other")) == a {
		t.Fatal("expected different secret to produce different signature")
	}
}
