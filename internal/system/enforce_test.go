package system

import (
	"testing"

	"github.com/mistveil/server/internal/net/packet"
)

func TestBanSweepMatchesAccountName(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.IdleTimeoutTicks = 1000

	// Account names are stored raw; display names are title-cased at load.
	p := addTestPlayer(deps, 7, 50)
	p.AccountName = "bob"
	p.Name = "Bob"

	cleanup := NewCleanupSystem(deps, nil, nil, 1)
	es := NewEnforceSystem(deps, nil, cleanup)
	es.sweepCh <- []string{"bob"}
	es.Update(1)

	msgs := deps.Out.PendingFor(7)
	if len(msgs) != 1 || msgs[0].Action != packet.S_DISCONNECT {
		t.Fatalf("banned player not sent a disconnect, got %v", msgs)
	}
	if len(cleanup.queue) != 1 || cleanup.queue[0] != p.SessionID {
		t.Fatalf("banned player not queued for removal, got %v", cleanup.queue)
	}
}

func TestBanSweepIgnoresOtherAccounts(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.IdleTimeoutTicks = 1000

	p := addTestPlayer(deps, 7, 50)
	p.AccountName = "bob"
	p.Name = "Bob"

	cleanup := NewCleanupSystem(deps, nil, nil, 1)
	es := NewEnforceSystem(deps, nil, cleanup)
	es.sweepCh <- []string{"mallory"}
	es.Update(1)

	if msgs := deps.Out.PendingFor(7); len(msgs) != 0 {
		t.Fatalf("unbanned player got messages: %v", msgs)
	}
	if len(cleanup.queue) != 0 {
		t.Fatalf("unbanned player queued for removal")
	}
}
