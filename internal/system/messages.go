package system

// Payload builders for the server action codes. Every builder returns the
// payload only; the action code travels separately in the aggregated frame.

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/net/packet"
	"github.com/mistveil/server/internal/world"
)

func enterWorldMsg(p *world.PlayerInfo) []byte {
	w := packet.NewWriter()
	w.WriteD(p.UserID)
	w.WriteH(uint16(p.Level))
	w.WriteD(p.X)
	w.WriteD(p.Y)
	w.WriteS(p.Name)
	w.WriteC(byte(world.StatCount))
	for st := world.Stat(0); st < world.StatCount; st++ {
		w.WriteC(byte(st))
		w.WriteD(p.Stats.Current(st))
		w.WriteD(p.Stats.Base(st))
	}
	return w.Bytes()
}

func putPlayerMsg(p *world.PlayerInfo) []byte {
	w := packet.NewWriter()
	w.WriteD(p.UserID)
	w.WriteH(uint16(p.Level))
	w.WriteD(p.X)
	w.WriteD(p.Y)
	w.WriteS(p.Name)
	return w.Bytes()
}

func putNpcMsg(n *world.NpcInfo) []byte {
	w := packet.NewWriter()
	w.WriteD(n.ID)
	w.WriteD(n.DefID)
	w.WriteH(uint16(n.Level))
	w.WriteD(n.X)
	w.WriteD(n.Y)
	w.WriteS(n.Name)
	w.WriteD(n.Stats.Current(world.StatHitpoints))
	w.WriteD(n.Stats.Base(world.StatHitpoints))
	return w.Bytes()
}

func putItemMsg(g *world.GroundItem) []byte {
	w := packet.NewWriter()
	w.WriteD(g.ID)
	w.WriteD(g.ItemID)
	w.WriteD(g.Amount)
	w.WriteH(uint16(g.Level))
	w.WriteD(g.X)
	w.WriteD(g.Y)
	return w.Bytes()
}

func putObjectMsg(o *world.ObjectInfo) []byte {
	w := packet.NewWriter()
	w.WriteD(o.ID)
	w.WriteD(o.DefID)
	w.WriteH(uint16(o.Level))
	w.WriteD(o.X)
	w.WriteD(o.Y)
	return w.Bytes()
}

func removeMsg(ref entity.Ref) []byte {
	w := packet.NewWriter()
	w.WriteC(byte(ref.Kind))
	w.WriteD(ref.ID)
	return w.Bytes()
}

func moveMsg(ref entity.Ref, x, y int32) []byte {
	w := packet.NewWriter()
	w.WriteC(byte(ref.Kind))
	w.WriteD(ref.ID)
	w.WriteD(x)
	w.WriteD(y)
	return w.Bytes()
}

func hitpointsMsg(ref entity.Ref, cur, base int32) []byte {
	w := packet.NewWriter()
	w.WriteC(byte(ref.Kind))
	w.WriteD(ref.ID)
	w.WriteD(cur)
	w.WriteD(base)
	return w.Bytes()
}

func itemRevealedMsg(id int32) []byte {
	w := packet.NewWriter()
	w.WriteD(id)
	return w.Bytes()
}

func messageMsg(text string) []byte {
	w := packet.NewWriter()
	w.WriteS(text)
	return w.Bytes()
}

func dayNightMsg(night bool) []byte {
	w := packet.NewWriter()
	if night {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	return w.Bytes()
}

func disconnectMsg(reason byte) []byte {
	w := packet.NewWriter()
	w.WriteC(reason)
	return w.Bytes()
}

// Disconnect reasons carried in S_DISCONNECT.
const (
	DiscLogout byte = iota
	DiscIdle
	DiscBanned
)
