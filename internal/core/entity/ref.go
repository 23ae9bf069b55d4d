package entity

import "fmt"

// Kind discriminates the id spaces tracked by the world.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindNpc
	KindGroundItem
	KindObject // static world entity (tree, rock, furnace …)
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNpc:
		return "npc"
	case KindGroundItem:
		return "ground_item"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Ref identifies one entity across subsystem boundaries. It is a plain value
// type usable as a map key; never route entity identity through strings.
type Ref struct {
	Kind Kind
	ID   int32
}

func PlayerRef(id int32) Ref     { return Ref{Kind: KindPlayer, ID: id} }
func NpcRef(id int32) Ref        { return Ref{Kind: KindNpc, ID: id} }
func GroundItemRef(id int32) Ref { return Ref{Kind: KindGroundItem, ID: id} }
func ObjectRef(id int32) Ref     { return Ref{Kind: KindObject, ID: id} }

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}
