package packet

// Client → server opcodes. The kernel accepts only the small action set it
// needs; everything else is logged and ignored.
const (
	C_HELLO     byte = 1 // name + credentials, enter world
	C_MOVE      byte = 2 // walk request: level, destX, destY
	C_ATTACK    byte = 3 // target NPC instance id
	C_PICKUP    byte = 4 // ground-item instance id
	C_INTERACT  byte = 5 // static object instance id (harvest)
	C_LOGOUT    byte = 6
	C_HEARTBEAT byte = 7 // keepalive, resets the idle counter only
)

// Server → client action codes, carried inside the per-tick aggregated frame
// as (action, payload) pairs.
const (
	S_ENTER_WORLD    byte = 100
	S_PUT_PLAYER     byte = 101
	S_PUT_NPC        byte = 102
	S_PUT_ITEM       byte = 103
	S_PUT_OBJECT     byte = 104
	S_REMOVE         byte = 105 // any entity leaving view or the world
	S_MOVE           byte = 106
	S_HITPOINTS      byte = 107 // health-bar update
	S_ITEM_REVEALED  byte = 108 // private drop became public
	S_MESSAGE        byte = 109 // short in-game info text
	S_DAY_NIGHT      byte = 110
	S_DISCONNECT     byte = 111
)
