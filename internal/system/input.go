package system

import (
	"context"
	"time"

	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	"github.com/mistveil/server/internal/core/fsm"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/engine"
	"github.com/mistveil/server/internal/net"
	"github.com/mistveil/server/internal/net/packet"
	"github.com/mistveil/server/internal/persist"
	"github.com/mistveil/server/internal/world"
	"go.uber.org/zap"
)

// maxPathLen caps one walk request; longer paths are truncated, not rejected.
const maxPathLen = 25

// loginOutcome is the result of one background credential check + load,
// handed back to the game loop over a channel.
type loginOutcome struct {
	sessionID uint64
	name      string
	row       *persist.PlayerRow
	reject    string // non-empty = refuse with this message
}

// InputSystem drains the network edge each tick: new sessions, dead sessions,
// finished logins, then up to maxPerTick packets per session dispatched
// through the registry. All gameplay mutation happens here, inside the tick,
// regardless of when the bytes arrived.
type InputSystem struct {
	deps     *Deps
	server   *net.Server
	registry *packet.Registry

	accounts *persist.AccountRepo
	players  *persist.PlayerRepo
	shardID  int16

	broadcaster *Broadcaster
	skilling    *SkillingSystem
	ground      *GroundItemSystem
	cleanup     *CleanupSystem

	maxPerTick int
	sessions   map[uint64]*net.Session
	logins     chan loginOutcome
	pending    map[uint64]bool // sessions with a login in flight

	tick int64 // current tick, set at the top of Update
}

func NewInputSystem(
	deps *Deps,
	server *net.Server,
	registry *packet.Registry,
	accounts *persist.AccountRepo,
	players *persist.PlayerRepo,
	shardID int16,
	broadcaster *Broadcaster,
	skilling *SkillingSystem,
	ground *GroundItemSystem,
	cleanup *CleanupSystem,
	maxPerTick int,
) *InputSystem {
	s := &InputSystem{
		deps:        deps,
		server:      server,
		registry:    registry,
		accounts:    accounts,
		players:     players,
		shardID:     shardID,
		broadcaster: broadcaster,
		skilling:    skilling,
		ground:      ground,
		cleanup:     cleanup,
		maxPerTick:  maxPerTick,
		sessions:    make(map[uint64]*net.Session),
		logins:      make(chan loginOutcome, 64),
		pending:     make(map[uint64]bool),
	}
	registry.Register(packet.C_HELLO, s.handleHello)
	registry.Register(packet.C_MOVE, s.handleMove)
	registry.Register(packet.C_ATTACK, s.handleAttack)
	registry.Register(packet.C_PICKUP, s.handlePickup)
	registry.Register(packet.C_INTERACT, s.handleInteract)
	registry.Register(packet.C_LOGOUT, s.handleLogout)
	registry.Register(packet.C_HEARTBEAT, s.handleHeartbeat)
	return s
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(tick int64) {
	s.tick = tick

	// Accept new sessions
	for {
		select {
		case sess := <-s.server.NewSessions():
			s.sessions[sess.ID] = sess
		default:
			goto doneNew
		}
	}
doneNew:

	// Sessions whose goroutines died since last tick
	for {
		select {
		case id := <-s.server.DeadSessions():
			delete(s.sessions, id)
			s.cleanup.QueueRemoval(id)
		default:
			goto doneDead
		}
	}
doneDead:

	// Finished background logins
	for {
		select {
		case out := <-s.logins:
			s.finishLogin(out)
		default:
			goto doneLogins
		}
	}
doneLogins:

	// Drain packets, bounded per session so one client cannot hog the tick
	for id, sess := range s.sessions {
		if sess.IsClosed() {
			delete(s.sessions, id)
			s.cleanup.QueueRemoval(id)
			continue
		}
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if p := s.deps.World.PlayerBySession(sess.ID); p != nil {
					p.IdleTicks = 0
				}
				if err := s.registry.Dispatch(sess, data); err != nil {
					s.deps.Log.Debug("dispatch failed",
						zap.Uint64("session", sess.ID), zap.Error(err))
				}
			default:
				i = s.maxPerTick // queue drained
			}
		}
	}
}

// --- Login ---

func (s *InputSystem) handleHello(raw any, r *packet.Reader) {
	sess := raw.(*net.Session)
	name := r.ReadS()
	password := r.ReadS()

	if name == "" || password == "" {
		sess.Close()
		return
	}
	if s.pending[sess.ID] || s.deps.World.PlayerBySession(sess.ID) != nil {
		return // duplicate hello
	}
	s.pending[sess.ID] = true

	// Credential check and character load hit the database; never inside the
	// tick. The outcome lands back on s.logins and is applied next tick.
	go s.loginWorker(sess.ID, name, password, sess.IP)
}

func (s *InputSystem) loginWorker(sessionID uint64, name, password, ip string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fail := func(msg string) {
		s.logins <- loginOutcome{sessionID: sessionID, name: name, reject: msg}
	}

	acct, err := s.accounts.Load(ctx, name)
	if err != nil {
		s.deps.Log.Error("account load failed", zap.String("name", name), zap.Error(err))
		fail("login unavailable, try again")
		return
	}
	if acct == nil {
		// First login registers the account.
		acct, err = s.accounts.Create(ctx, name, password, ip)
		if err != nil {
			s.deps.Log.Error("account create failed", zap.String("name", name), zap.Error(err))
			fail("login unavailable, try again")
			return
		}
	} else {
		if !s.accounts.ValidatePassword(acct.PasswordHash, password) {
			fail("wrong password")
			return
		}
		if acct.Banned {
			fail("account banned")
			return
		}
	}
	_ = s.accounts.UpdateLastActive(ctx, name, ip)
	_ = s.accounts.SetOnline(ctx, name, true)

	row, err := s.players.Load(ctx, name, s.shardID)
	if err != nil {
		s.deps.Log.Error("player load failed", zap.String("name", name), zap.Error(err))
		fail("login unavailable, try again")
		return
	}
	if row == nil {
		row = newPlayerRow(name, s.shardID)
		if err := s.players.Create(ctx, row); err != nil {
			s.deps.Log.Error("player create failed", zap.String("name", name), zap.Error(err))
			fail("login unavailable, try again")
			return
		}
	}

	s.logins <- loginOutcome{sessionID: sessionID, name: name, row: row}
}

// newPlayerRow is the fresh-character template.
func newPlayerRow(name string, shardID int16) *persist.PlayerRow {
	return &persist.PlayerRow{
		AccountName:   name,
		ShardID:       shardID,
		Name:          name,
		Level:         0,
		X:             3222,
		Y:             3218,
		Hitpoints:     10,
		Accuracy:      1,
		Strength:      1,
		Defense:       1,
		Magic:         1,
		Ranged:        1,
		BaseHitpoints: 10,
		BaseAccuracy:  1,
		BaseStrength:  1,
		BaseDefense:   1,
		BaseMagic:     1,
		BaseRanged:    1,
	}
}

func (s *InputSystem) finishLogin(out loginOutcome) {
	delete(s.pending, out.sessionID)
	sess := s.sessions[out.sessionID]
	if sess == nil || sess.IsClosed() {
		return // disconnected while the load ran
	}
	if out.reject != "" {
		// Not in-world yet, so the refusal bypasses the per-tick flush.
		sendDirect(sess, packet.S_MESSAGE, messageMsg(out.reject))
		sess.Close()
		return
	}

	// Same account logged in elsewhere on this shard: drop the old session.
	if old := s.deps.World.PlayerByUserID(out.row.ID); old != nil {
		s.cleanup.QueueRemoval(old.SessionID)
		old.Session.Close()
	}

	row := out.row
	sess.UserName = row.Name
	p := &world.PlayerInfo{
		SessionID:   sess.ID,
		Session:     sess,
		UserID:      row.ID,
		AccountName: row.AccountName,
		Name:        row.Name,
		Level:       row.Level,
		X:           row.X,
		Y:           row.Y,
		Stats: world.NewStats([world.StatCount]int32{
			world.StatHitpoints: row.BaseHitpoints,
			world.StatAccuracy:  row.BaseAccuracy,
			world.StatStrength:  row.BaseStrength,
			world.StatDefense:   row.BaseDefense,
			world.StatMagic:     row.BaseMagic,
			world.StatRange:     row.BaseRanged,
		}),
		TreasureStage: row.TreasureStage,
	}
	p.Stats.SetCurrent(world.StatHitpoints, row.Hitpoints)
	p.Stats.SetCurrent(world.StatAccuracy, row.Accuracy)
	p.Stats.SetCurrent(world.StatStrength, row.Strength)
	p.Stats.SetCurrent(world.StatDefense, row.Defense)
	p.Stats.SetCurrent(world.StatMagic, row.Magic)
	p.Stats.SetCurrent(world.StatRange, row.Ranged)
	for _, it := range row.Bank {
		p.Bank = append(p.Bank, world.ItemStack{ItemID: it.ItemID, Amount: it.Amount, Noted: it.Noted})
	}

	s.deps.World.AddPlayer(p)
	s.broadcaster.EnterWorld(p)
	s.deps.Bus.Emit(event.PlayerAdded{UserID: p.UserID})
	s.deps.Log.Info("player entered world",
		zap.String("name", p.Name),
		zap.Int32("user_id", p.UserID),
	)
}

// --- Gameplay actions ---

func (s *InputSystem) handleMove(raw any, r *packet.Reader) {
	p := s.player(raw)
	if p == nil || p.Dead {
		return
	}
	destX := r.ReadD()
	destY := r.ReadD()

	if kind, ok := s.deps.Delays.Active(p.UserID); ok {
		if kind == DelayBlocking {
			return // mid-windup, movement refused
		}
		s.deps.Delays.Interrupt(p.UserID)
	}
	s.skilling.StopHarvest(p.UserID)

	p.Target = 0
	p.Path = buildPath(p.X, p.Y, destX, destY)
	if len(p.Path) > 0 {
		s.deps.FSM.SetState(entity.PlayerRef(p.UserID), fsm.StateMoving)
	}
}

func (s *InputSystem) handleAttack(raw any, r *packet.Reader) {
	p := s.player(raw)
	if p == nil || p.Dead {
		return
	}
	targetID := r.ReadD()

	n := s.deps.World.Npc(targetID)
	if n == nil || n.Dead || n.Level != p.Level {
		return
	}
	if n.OwnerUserID != 0 && n.OwnerUserID != p.UserID {
		return // someone else's instance
	}
	if kind, ok := s.deps.Delays.Active(p.UserID); ok {
		if kind == DelayBlocking {
			return
		}
		s.deps.Delays.Interrupt(p.UserID)
	}
	s.skilling.StopHarvest(p.UserID)
	p.Target = targetID
}

func (s *InputSystem) handlePickup(raw any, r *packet.Reader) {
	p := s.player(raw)
	if p == nil || p.Dead {
		return
	}
	itemID := r.ReadD()

	g := s.deps.World.GroundItem(itemID)
	if g == nil || !g.VisibleToUser(p.UserID) || g.Level != p.Level {
		return
	}
	if chebyshevDist(p.X, p.Y, g.X, g.Y) > 1 {
		return // must stand on or next to the pile
	}
	if kind, ok := s.deps.Delays.Active(p.UserID); ok && kind == DelayBlocking {
		return
	}

	p.AddToBank(g.ItemID, g.Amount, g.Noted)
	p.Dirty = true
	s.ground.RemoveGroundItem(g.ID, event.RemovePickedUp, s.tick)
}

func (s *InputSystem) handleInteract(raw any, r *packet.Reader) {
	p := s.player(raw)
	if p == nil || p.Dead {
		return
	}
	objectID := r.ReadD()

	o := s.deps.World.Object(objectID)
	if o == nil || o.Level != p.Level {
		return
	}
	if chebyshevDist(p.X, p.Y, o.X, o.Y) > int32(o.Length) {
		return // outside the object's footprint reach
	}
	s.skilling.BeginHarvest(p, o, s.tick)
}

func (s *InputSystem) handleLogout(raw any, _ *packet.Reader) {
	sess := raw.(*net.Session)
	sendDirect(sess, packet.S_DISCONNECT, disconnectMsg(DiscLogout))
	sess.Close()
	delete(s.sessions, sess.ID)
	s.cleanup.QueueRemoval(sess.ID)
}

func (s *InputSystem) handleHeartbeat(raw any, _ *packet.Reader) {
	// Idle counter already reset in the drain loop; nothing else to do.
	_ = raw
}

func (s *InputSystem) player(raw any) *world.PlayerInfo {
	sess := raw.(*net.Session)
	return s.deps.World.PlayerBySession(sess.ID)
}

// buildPath walks a straight Chebyshev line from (x, y) toward the
// destination, one tile per step, diagonals allowed.
func buildPath(x, y, destX, destY int32) []world.PathStep {
	var path []world.PathStep
	for (x != destX || y != destY) && len(path) < maxPathLen {
		x += sign(destX - x)
		y += sign(destY - y)
		path = append(path, world.PathStep{X: x, Y: y})
	}
	return path
}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// sendDirect frames one message outside the per-tick flush. Used only for
// sessions that are not (or no longer) in-world.
func sendDirect(sess *net.Session, action byte, payload []byte) {
	sess.Send(engine.EncodeBatch([]engine.Message{{Action: action, Payload: payload}}))
}

func chebyshevDist(ax, ay, bx, by int32) int32 {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
