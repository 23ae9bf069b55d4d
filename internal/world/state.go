package world

// State tracks all players, NPCs, ground items and static objects currently
// in-world, together with the per-kind spatial indexes. Every position change
// MUST go through a State method so the owning record and its spatial entry
// stay in lockstep; the index never holds the authoritative copy.
// Single-goroutine access only (game loop).

import (
	"github.com/mistveil/server/internal/core/entity"
)

type State struct {
	bySession map[uint64]*PlayerInfo
	byUserID  map[int32]*PlayerInfo
	byName    map[string]*PlayerInfo

	npcs    map[int32]*NpcInfo
	npcList []*NpcInfo // stable iteration order for tick passes

	groundItems map[int32]*GroundItem
	objects     map[int32]*ObjectInfo

	playerGrid *Grid
	npcGrid    *Grid
	itemGrid   *Grid
	objectGrid *Grid

	// Reusable query buffers (game loop is single-threaded).
	queryBuf []Entry
}

func NewState() *State {
	return &State{
		bySession:   make(map[uint64]*PlayerInfo),
		byUserID:    make(map[int32]*PlayerInfo),
		byName:      make(map[string]*PlayerInfo),
		npcs:        make(map[int32]*NpcInfo),
		groundItems: make(map[int32]*GroundItem),
		objects:     make(map[int32]*ObjectInfo),
		playerGrid:  NewGrid(),
		npcGrid:     NewGrid(),
		itemGrid:    NewGrid(),
		objectGrid:  NewGrid(),
	}
}

// --- Players ---

func (s *State) AddPlayer(p *PlayerInfo) {
	s.bySession[p.SessionID] = p
	s.byUserID[p.UserID] = p
	s.byName[p.Name] = p
	s.playerGrid.Insert(Entry{ID: p.UserID, Level: p.Level, X: p.X, Y: p.Y})
}

func (s *State) RemovePlayer(sessionID uint64) *PlayerInfo {
	p, ok := s.bySession[sessionID]
	if !ok {
		return nil
	}
	s.playerGrid.Remove(p.UserID)
	delete(s.bySession, sessionID)
	delete(s.byUserID, p.UserID)
	delete(s.byName, p.Name)
	return p
}

func (s *State) PlayerBySession(sessionID uint64) *PlayerInfo { return s.bySession[sessionID] }
func (s *State) PlayerByUserID(userID int32) *PlayerInfo      { return s.byUserID[userID] }
func (s *State) PlayerByName(name string) *PlayerInfo         { return s.byName[name] }
func (s *State) PlayerCount() int                             { return len(s.bySession) }

// AllPlayers iterates all in-world players.
func (s *State) AllPlayers(fn func(*PlayerInfo)) {
	for _, p := range s.bySession {
		fn(p)
	}
}

// MovePlayer applies one position change and updates the spatial entry.
func (s *State) MovePlayer(p *PlayerInfo, level int16, x, y int32) {
	p.Level = level
	p.X = x
	p.Y = y
	s.playerGrid.Update(p.UserID, level, x, y)
}

// --- NPCs ---

func (s *State) AddNpc(n *NpcInfo) {
	s.npcs[n.ID] = n
	s.npcList = append(s.npcList, n)
	s.npcGrid.Insert(Entry{ID: n.ID, Level: n.Level, X: n.X, Y: n.Y})
}

func (s *State) Npc(id int32) *NpcInfo { return s.npcs[id] }
func (s *State) NpcCount() int         { return len(s.npcs) }

// NpcList returns the full NPC list for tick iteration.
func (s *State) NpcList() []*NpcInfo { return s.npcList }

func (s *State) MoveNpc(n *NpcInfo, x, y int32) {
	n.X = x
	n.Y = y
	s.npcGrid.Update(n.ID, n.Level, x, y)
}

// NpcDied releases the spatial entry; the record stays for the corpse and
// respawn phases. Exactly one spatial entry exists while the NPC is alive
// and placed, none while dead.
func (s *State) NpcDied(n *NpcInfo) {
	s.npcGrid.Remove(n.ID)
}

// NpcRespawned re-adds a respawned NPC to the index. Caller resets position
// and stats first.
func (s *State) NpcRespawned(n *NpcInfo) {
	s.npcGrid.Insert(Entry{ID: n.ID, Level: n.Level, X: n.X, Y: n.Y})
}

// RemoveNpc permanently deletes an NPC (instanced cleanup, conversions).
func (s *State) RemoveNpc(id int32) *NpcInfo {
	n, ok := s.npcs[id]
	if !ok {
		return nil
	}
	if !n.Dead {
		s.npcGrid.Remove(id)
	}
	delete(s.npcs, id)
	for i, x := range s.npcList {
		if x.ID == id {
			s.npcList[i] = s.npcList[len(s.npcList)-1]
			s.npcList = s.npcList[:len(s.npcList)-1]
			break
		}
	}
	return n
}

// --- Ground items ---

// AddGroundItem registers a pile and, when present, its spatial entry.
func (s *State) AddGroundItem(g *GroundItem) {
	s.groundItems[g.ID] = g
	if g.Present {
		s.itemGrid.Insert(Entry{ID: g.ID, Level: g.Level, X: g.X, Y: g.Y, Owner: g.VisibleTo})
	}
}

func (s *State) GroundItem(id int32) *GroundItem { return s.groundItems[id] }
func (s *State) GroundItemCount() int            { return len(s.groundItems) }

// AllGroundItems iterates every tracked pile, present or not.
func (s *State) AllGroundItems(fn func(*GroundItem)) {
	for _, g := range s.groundItems {
		fn(g)
	}
}

// GroundItemPickedUp marks a world spawn absent without deleting the record.
func (s *State) GroundItemPickedUp(g *GroundItem) {
	g.Present = false
	s.itemGrid.Remove(g.ID)
}

// GroundItemRespawned re-indexes a world spawn after its respawn window.
func (s *State) GroundItemRespawned(g *GroundItem) {
	g.Present = true
	s.itemGrid.Insert(Entry{ID: g.ID, Level: g.Level, X: g.X, Y: g.Y, Owner: g.VisibleTo})
}

// GroundItemRevealed clears the owner filter on the spatial entry.
func (s *State) GroundItemRevealed(g *GroundItem) {
	g.VisibleTo = 0
	g.RevealAt = 0
	s.itemGrid.SetOwner(g.ID, 0)
}

// DeleteGroundItem removes record and spatial entry outright.
func (s *State) DeleteGroundItem(id int32) *GroundItem {
	g, ok := s.groundItems[id]
	if !ok {
		return nil
	}
	s.itemGrid.Remove(id)
	delete(s.groundItems, id)
	return g
}

// GroundItemAt finds a present pile matching the stack-merge key
// (level, x, y, item, noted, visibility owner), or nil.
func (s *State) GroundItemAt(level int16, x, y, itemID int32, noted bool, visibleTo int32) *GroundItem {
	s.queryBuf = s.itemGrid.QueryRadiusInto(level, x, y, 0, s.queryBuf)
	for _, e := range s.queryBuf {
		g := s.groundItems[e.ID]
		if g != nil && g.Present && g.ItemID == itemID && g.Noted == noted && g.VisibleTo == visibleTo {
			return g
		}
	}
	return nil
}

// --- Static objects ---

func (s *State) AddObject(o *ObjectInfo) {
	s.objects[o.ID] = o
	s.objectGrid.Insert(Entry{ID: o.ID, Level: o.Level, X: o.X, Y: o.Y})
}

func (s *State) Object(id int32) *ObjectInfo { return s.objects[id] }
func (s *State) ObjectCount() int            { return len(s.objects) }

func (s *State) AllObjects(fn func(*ObjectInfo)) {
	for _, o := range s.objects {
		fn(o)
	}
}

// DestroyObject permanently removes a static entity.
func (s *State) DestroyObject(id int32) *ObjectInfo {
	o, ok := s.objects[id]
	if !ok {
		return nil
	}
	s.objectGrid.Remove(id)
	delete(s.objects, id)
	return o
}

// --- Composite queries ---

// PlayersSeeing returns all players whose view radius covers (level, x, y).
// This is the visibility fan-out every broadcast-at-position uses.
func (s *State) PlayersSeeing(level int16, x, y int32) []*PlayerInfo {
	s.queryBuf = s.playerGrid.QueryRadiusInto(level, x, y, ViewRadius, s.queryBuf)
	out := make([]*PlayerInfo, 0, len(s.queryBuf))
	for _, e := range s.queryBuf {
		if p := s.byUserID[e.ID]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// AggroCandidates returns living players within radius of the NPC, skipping
// players the NPC cannot interact with (dead, or another owner's instance).
func (s *State) AggroCandidates(n *NpcInfo, radius int32) []*PlayerInfo {
	s.queryBuf = s.playerGrid.QueryRadiusInto(n.Level, n.X, n.Y, radius, s.queryBuf)
	out := make([]*PlayerInfo, 0, len(s.queryBuf))
	for _, e := range s.queryBuf {
		p := s.byUserID[e.ID]
		if p == nil || p.Dead {
			continue
		}
		if n.OwnerUserID != 0 && n.OwnerUserID != p.UserID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NpcsNear returns living NPCs within the view radius of a position.
func (s *State) NpcsNear(level int16, x, y int32) []*NpcInfo {
	s.queryBuf = s.npcGrid.QueryRadiusInto(level, x, y, ViewRadius, s.queryBuf)
	out := make([]*NpcInfo, 0, len(s.queryBuf))
	for _, e := range s.queryBuf {
		if n := s.npcs[e.ID]; n != nil && !n.Dead {
			out = append(out, n)
		}
	}
	return out
}

// GroundItemsVisibleTo returns present piles near the player that the player
// is allowed to see, applying the owner filter carried on the spatial entry.
func (s *State) GroundItemsVisibleTo(p *PlayerInfo) []*GroundItem {
	s.queryBuf = s.itemGrid.QueryRadiusInto(p.Level, p.X, p.Y, ItemViewRadius, s.queryBuf)
	out := make([]*GroundItem, 0, len(s.queryBuf))
	for _, e := range s.queryBuf {
		if e.Owner != 0 && e.Owner != p.UserID {
			continue
		}
		if g := s.groundItems[e.ID]; g != nil {
			out = append(out, g)
		}
	}
	return out
}

// VisibleRefs gathers every entity key visible to the player, used to diff
// visible-set changes when the player moves.
func (s *State) VisibleRefs(p *PlayerInfo) map[entity.Ref]struct{} {
	set := make(map[entity.Ref]struct{}, 64)
	s.queryBuf = s.playerGrid.QueryRadiusInto(p.Level, p.X, p.Y, ViewRadius, s.queryBuf)
	for _, e := range s.queryBuf {
		if e.ID != p.UserID {
			set[entity.PlayerRef(e.ID)] = struct{}{}
		}
	}
	s.queryBuf = s.npcGrid.QueryRadiusInto(p.Level, p.X, p.Y, ViewRadius, s.queryBuf)
	for _, e := range s.queryBuf {
		set[entity.NpcRef(e.ID)] = struct{}{}
	}
	s.queryBuf = s.itemGrid.QueryRadiusInto(p.Level, p.X, p.Y, ItemViewRadius, s.queryBuf)
	for _, e := range s.queryBuf {
		if e.Owner == 0 || e.Owner == p.UserID {
			set[entity.GroundItemRef(e.ID)] = struct{}{}
		}
	}
	s.queryBuf = s.objectGrid.QueryRadiusInto(p.Level, p.X, p.Y, ViewRadius, s.queryBuf)
	for _, e := range s.queryBuf {
		set[entity.ObjectRef(e.ID)] = struct{}{}
	}
	return set
}
