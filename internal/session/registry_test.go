package session

import (
	"bufio"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAcceptAndCapacity(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	conns := make([]net.Conn, 0, MaxSessions)
	for i := 0; i < MaxSessions; i++ {
		a, b := net.Pipe()
		defer a.Close()
		defer b.Close()
		conns = append(conns, a)

		idx, err := r.Accept(a)
		if err != nil {
			t.Fatalf("Accept %d: %v", i, err)
		}
		if idx != i {
			t.Fatalf("Accept %d returned slot %d", i, idx)
		}
	}

	extra, other := net.Pipe()
	defer extra.Close()
	defer other.Close()
	if _, err := r.Accept(extra); err != ErrCapacity {
		t.Fatalf("Accept over capacity: got %v, want ErrCapacity", err)
	}

	// Freed slots are reused at the lowest index.
	r.Close(3)
	idx, err := r.Accept(extra)
	if err != nil {
		t.Fatal("Accept after free:", err)
	}
	if idx != 3 {
		t.Errorf("Accept after free returned slot %d, want 3", idx)
	}
}

func TestSendWritesOneJSONLine(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	server, client := net.Pipe()
	defer client.Close()

	idx, err := r.Accept(server)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(client).ReadString('\n')
		done <- line
	}()

	msg := map[string]any{"action": "PONG", "data": map[string]any{}}
	if err := r.Send(idx, msg); err != nil {
		t.Fatal("Send:", err)
	}

	line := <-done
	if !strings.HasSuffix(line, "\n") {
		t.Fatal("line must end with newline")
	}
	if strings.Contains(strings.TrimSuffix(line, "\n"), "\n") {
		t.Fatal("message must be a single line")
	}
	var decoded struct {
		Action string         `json:"action"`
		Data   map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatal("decode:", err)
	}
	if decoded.Action != "PONG" {
		t.Errorf("action = %q, want PONG", decoded.Action)
	}
}

func TestSendToFreeSlot(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	if err := r.Send(7, map[string]any{}); err == nil {
		t.Fatal("Send to a free slot should fail")
	}
}

func TestBindLoginAndLookup(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	server, client := net.Pipe()
	defer client.Close()

	idx, err := r.Accept(server)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := r.FindByUsername("alice"); ok {
		t.Fatal("alice should not be found before login")
	}

	id := NewSessionID()
	r.BindLogin(idx, "alice", id)

	got, ok := r.FindByUsername("alice")
	if !ok || got != idx {
		t.Fatalf("FindByUsername = (%d,%v), want (%d,true)", got, ok, idx)
	}

	snap, ok := r.Get(idx)
	if !ok {
		t.Fatal("Get should succeed")
	}
	if snap.Username != "alice" || snap.SessionID != id || snap.State != Online {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	r.SetState(idx, InMatch)
	snap, _ = r.Get(idx)
	if snap.State != InMatch {
		t.Errorf("state = %v, want IN_MATCH", snap.State)
	}

	// Close reports the bound username and frees the slot.
	if u := r.Close(idx); u != "alice" {
		t.Errorf("Close returned %q, want alice", u)
	}
	if _, ok := r.Get(idx); ok {
		t.Error("slot should be free after Close")
	}
	if _, ok := r.FindByUsername("alice"); ok {
		t.Error("alice should not be found after Close")
	}
}

func TestCloseDuringBlockedSend(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	server, client := net.Pipe()
	defer client.Close()

	idx, err := r.Accept(server)
	if err != nil {
		t.Fatal(err)
	}

	// A pipe write blocks until the peer reads, so this Send holds the
	// slot's send lock while Close runs.
	done := make(chan error, 1)
	go func() {
		done <- r.Send(idx, map[string]string{"reason": strings.Repeat("x", 1024)})
	}()
	time.Sleep(20 * time.Millisecond)

	r.Close(idx)

	if err := <-done; err == nil {
		t.Fatal("Send across Close should fail once the connection drops")
	}

	// The freed slot must come back clean and usable.
	server2, client2 := net.Pipe()
	defer client2.Close()
	idx2, err := r.Accept(server2)
	if err != nil {
		t.Fatal("Accept after close:", err)
	}
	if idx2 != idx {
		t.Fatalf("Accept reused slot %d, want %d", idx2, idx)
	}

	go func() {
		bufio.NewReader(client2).ReadString('\n')
	}()
	if err := r.Send(idx2, map[string]string{"action": "PONG"}); err != nil {
		t.Fatal("Send on reused slot:", err)
	}
}

func TestNewSessionID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if len(id) != 15 {
			t.Fatalf("session id %q length = %d, want 15", id, len(id))
		}
		for _, c := range id {
			if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
				t.Fatalf("session id %q contains non-hex %q", id, c)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}

func TestStateString(t *testing.T) {
	if Offline.String() != "OFFLINE" || Online.String() != "ONLINE" || InMatch.String() != "IN_MATCH" {
		t.Error("state names must match the wire vocabulary")
	}
}
