package session

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/markgrid/markgrid-backend/internal/entity"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const roomCodeLength = 6

type participant struct {
	id   string
	mark string
}

// Room binds up to two participant identities to marks around one match
// state. All mutation happens under mu; the coordinator locks a room for the
// whole of every operation, so the turn check and the state change are one
// atomic unit.
type Room struct {
	mu sync.Mutex

	code  string
	game  *entity.Game
	slots [2]*participant

	// bot opponent, when this is a room against the computer
	botMark    string
	difficulty string
	botTimer   *time.Timer
}

func newRoom(code string, game *entity.Game) *Room {
	return &Room{code: code, game: game}
}

func (that *Room) Code() string { return that.code }

// Game returns the room's match state. Callers outside the coordinator must
// treat it as read-only.
func (that *Room) Game() *entity.Game { return that.game }

func (that *Room) isBotRoom() bool { return that.botMark != entity.EmptyCell }

// The helpers below assume mu is held.

func (that *Room) participantByID(id string) *participant {
	for _, slot := range that.slots {
		if slot != nil && slot.id == id {
			return slot
		}
	}
	return nil
}

func (that *Room) bind(id, mark string) *participant {
	p := &participant{id: id, mark: mark}
	for i, slot := range that.slots {
		if slot == nil {
			that.slots[i] = p
			return p
		}
	}
	return nil
}

func (that *Room) unbind(id string) bool {
	for i, slot := range that.slots {
		if slot != nil && slot.id == id {
			that.slots[i] = nil
			return true
		}
	}
	return false
}

func (that *Room) participantIDs() []string {
	ids := make([]string, 0, 2)
	for _, slot := range that.slots {
		if slot != nil {
			ids = append(ids, slot.id)
		}
	}
	return ids
}

// openMark is the mark a joiner should receive: the complement of whichever
// mark is already bound, or the first mark in an empty room.
func (that *Room) openMark() string {
	for _, slot := range that.slots {
		if slot != nil {
			return entity.OpponentMark(slot.mark)
		}
	}
	return entity.PlayerX
}

func (that *Room) boundCount() int {
	count := 0
	for _, slot := range that.slots {
		if slot != nil {
			count++
		}
	}
	return count
}

func (that *Room) stopBotTimer() {
	if that.botTimer != nil {
		that.botTimer.Stop()
		that.botTimer = nil
	}
}

// generateRoomCode produces a 6-char code like "ABCDEF".
func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			return ""
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code)
}
