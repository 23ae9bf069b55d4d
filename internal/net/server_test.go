package net

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestClosedSessionReportedDead(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", 8, 8, 0, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer srv.Shutdown()
	go srv.AcceptLoop()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var sess *Session
	select {
	case sess = <-srv.NewSessions():
	case <-time.After(2 * time.Second):
		t.Fatal("session never accepted")
	}

	conn.Close()

	select {
	case id := <-srv.DeadSessions():
		if id != sess.ID {
			t.Fatalf("dead session id = %d, want %d", id, sess.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dead session never reported")
	}
}

func TestLoopInitiatedCloseReportedDead(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", 8, 8, 0, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer srv.Shutdown()
	go srv.AcceptLoop()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var sess *Session
	select {
	case sess = <-srv.NewSessions():
	case <-time.After(2 * time.Second):
		t.Fatal("session never accepted")
	}

	// Server-side kicks go through the same notification path.
	sess.Close()
	sess.Close() // second close must not report twice

	select {
	case id := <-srv.DeadSessions():
		if id != sess.ID {
			t.Fatalf("dead session id = %d, want %d", id, sess.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dead session never reported")
	}
	select {
	case id := <-srv.DeadSessions():
		t.Fatalf("session %d reported dead twice", id)
	default:
	}
}
