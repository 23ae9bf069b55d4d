package system

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	"github.com/mistveil/server/internal/net/packet"
	"github.com/mistveil/server/internal/world"
)

// Broadcaster is the bus consumer that turns domain events into per-player
// output. It tracks, per player, the set of entity keys currently shown to
// that player's client, and diffs it when the player moves so entities slide
// in and out of view with put/remove pairs instead of full refreshes.
//
// It never mutates game state; it only reads the world and queues messages.
type Broadcaster struct {
	deps    *Deps
	visible map[int32]map[entity.Ref]struct{}
}

func NewBroadcaster(deps *Deps) *Broadcaster {
	b := &Broadcaster{
		deps:    deps,
		visible: make(map[int32]map[entity.Ref]struct{}),
	}
	bus := deps.Bus
	bus.Subscribe(event.KindEntitySpawned, b.onEvent)
	bus.Subscribe(event.KindEntityRemoved, b.onEvent)
	bus.Subscribe(event.KindEntityMoved, b.onEvent)
	bus.Subscribe(event.KindHitpointsChanged, b.onEvent)
	bus.Subscribe(event.KindItemBecameVisible, b.onEvent)
	bus.Subscribe(event.KindPlayerRemoved, b.onEvent)
	return b
}

func (b *Broadcaster) onEvent(ev event.Event) {
	switch e := ev.(type) {
	case event.EntitySpawned:
		b.entitySpawned(e)
	case event.EntityRemoved:
		b.entityRemoved(e)
	case event.EntityMoved:
		b.entityMoved(e)
	case event.HitpointsChanged:
		b.hitpointsChanged(e)
	case event.ItemBecameVisible:
		b.itemRevealed(e)
	case event.PlayerRemoved:
		delete(b.visible, e.UserID)
	}
}

// EnterWorld shows a fresh player their surroundings and announces them to
// everyone already nearby. Called by the login path after the player is
// placed in the world.
func (b *Broadcaster) EnterWorld(p *world.PlayerInfo) {
	b.deps.Out.QueueFor(p.UserID, packet.S_ENTER_WORLD, enterWorldMsg(p))

	set := b.deps.World.VisibleRefs(p)
	for ref := range set {
		if msg, action := b.putMessage(ref, p.UserID); msg != nil {
			b.deps.Out.QueueFor(p.UserID, action, msg)
		}
	}
	b.visible[p.UserID] = set

	for _, viewer := range b.deps.World.PlayersSeeing(p.Level, p.X, p.Y) {
		if viewer.UserID == p.UserID {
			continue
		}
		b.deps.Out.QueueFor(viewer.UserID, packet.S_PUT_PLAYER, putPlayerMsg(p))
		b.track(viewer.UserID, entity.PlayerRef(p.UserID))
	}
}

func (b *Broadcaster) entitySpawned(e event.EntitySpawned) {
	for _, viewer := range b.deps.World.PlayersSeeing(e.Level, e.X, e.Y) {
		msg, action := b.putMessage(e.Ref, viewer.UserID)
		if msg == nil {
			continue
		}
		b.deps.Out.QueueFor(viewer.UserID, action, msg)
		b.track(viewer.UserID, e.Ref)
	}
}

func (b *Broadcaster) entityRemoved(e event.EntityRemoved) {
	for _, viewer := range b.deps.World.PlayersSeeing(e.Level, e.X, e.Y) {
		if _, shown := b.visible[viewer.UserID][e.Ref]; !shown {
			continue
		}
		b.deps.Out.QueueFor(viewer.UserID, packet.S_REMOVE, removeMsg(e.Ref))
		delete(b.visible[viewer.UserID], e.Ref)
	}
}

func (b *Broadcaster) entityMoved(e event.EntityMoved) {
	// Show the step to everyone who can see either endpoint.
	seen := make(map[int32]struct{}, 16)
	for _, viewer := range b.deps.World.PlayersSeeing(e.Level, e.FromX, e.FromY) {
		seen[viewer.UserID] = struct{}{}
	}
	for _, viewer := range b.deps.World.PlayersSeeing(e.Level, e.ToX, e.ToY) {
		seen[viewer.UserID] = struct{}{}
	}
	for uid := range seen {
		if e.Ref.Kind == entity.KindPlayer && e.Ref.ID == uid {
			continue // the mover's own client drives its avatar locally
		}
		if _, shown := b.visible[uid][e.Ref]; shown {
			b.deps.Out.QueueFor(uid, packet.S_MOVE, moveMsg(e.Ref, e.ToX, e.ToY))
		}
	}

	// A moving player gets their visible set diffed: entities entering view
	// are put, entities leaving view are removed.
	if e.Ref.Kind != entity.KindPlayer {
		return
	}
	p := b.deps.World.PlayerByUserID(e.Ref.ID)
	if p == nil {
		return
	}
	old := b.visible[p.UserID]
	cur := b.deps.World.VisibleRefs(p)
	for ref := range cur {
		if _, had := old[ref]; had {
			continue
		}
		if msg, action := b.putMessage(ref, p.UserID); msg != nil {
			b.deps.Out.QueueFor(p.UserID, action, msg)
		}
	}
	for ref := range old {
		if _, has := cur[ref]; !has {
			b.deps.Out.QueueFor(p.UserID, packet.S_REMOVE, removeMsg(ref))
		}
	}
	b.visible[p.UserID] = cur
}

func (b *Broadcaster) hitpointsChanged(e event.HitpointsChanged) {
	level, x, y, ok := b.position(e.Ref)
	if !ok {
		return
	}
	msg := hitpointsMsg(e.Ref, e.Current, e.Base)
	for _, viewer := range b.deps.World.PlayersSeeing(level, x, y) {
		b.deps.Out.QueueFor(viewer.UserID, packet.S_HITPOINTS, msg)
	}
}

func (b *Broadcaster) itemRevealed(e event.ItemBecameVisible) {
	g := b.deps.World.GroundItem(e.ItemID)
	if g == nil {
		return
	}
	ref := entity.GroundItemRef(e.ItemID)
	for _, viewer := range b.deps.World.PlayersSeeing(e.Level, e.X, e.Y) {
		if _, shown := b.visible[viewer.UserID][ref]; shown {
			b.deps.Out.QueueFor(viewer.UserID, packet.S_ITEM_REVEALED, itemRevealedMsg(e.ItemID))
			continue
		}
		b.deps.Out.QueueFor(viewer.UserID, packet.S_PUT_ITEM, putItemMsg(g))
		b.track(viewer.UserID, ref)
	}
}

// putMessage resolves a ref to its put payload and action code, applying the
// ground-item owner filter for the requesting viewer. Returns nil for refs
// that no longer resolve or that the viewer may not see.
func (b *Broadcaster) putMessage(ref entity.Ref, viewerID int32) ([]byte, byte) {
	switch ref.Kind {
	case entity.KindPlayer:
		if p := b.deps.World.PlayerByUserID(ref.ID); p != nil {
			return putPlayerMsg(p), packet.S_PUT_PLAYER
		}
	case entity.KindNpc:
		if n := b.deps.World.Npc(ref.ID); n != nil && !n.Dead {
			return putNpcMsg(n), packet.S_PUT_NPC
		}
	case entity.KindGroundItem:
		if g := b.deps.World.GroundItem(ref.ID); g != nil && g.VisibleToUser(viewerID) {
			return putItemMsg(g), packet.S_PUT_ITEM
		}
	case entity.KindObject:
		if o := b.deps.World.Object(ref.ID); o != nil {
			return putObjectMsg(o), packet.S_PUT_OBJECT
		}
	}
	return nil, 0
}

func (b *Broadcaster) position(ref entity.Ref) (int16, int32, int32, bool) {
	switch ref.Kind {
	case entity.KindPlayer:
		if p := b.deps.World.PlayerByUserID(ref.ID); p != nil {
			return p.Level, p.X, p.Y, true
		}
	case entity.KindNpc:
		if n := b.deps.World.Npc(ref.ID); n != nil {
			return n.Level, n.X, n.Y, true
		}
	case entity.KindGroundItem:
		if g := b.deps.World.GroundItem(ref.ID); g != nil {
			return g.Level, g.X, g.Y, true
		}
	case entity.KindObject:
		if o := b.deps.World.Object(ref.ID); o != nil {
			return o.Level, o.X, o.Y, true
		}
	}
	return 0, 0, 0, false
}

func (b *Broadcaster) track(userID int32, ref entity.Ref) {
	set := b.visible[userID]
	if set == nil {
		return // player not fully entered yet
	}
	set[ref] = struct{}{}
}
