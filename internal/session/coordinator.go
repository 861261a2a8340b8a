package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/markgrid/markgrid-backend/internal/apperror"
	"github.com/markgrid/markgrid-backend/internal/bot"
	"github.com/markgrid/markgrid-backend/internal/entity"
	"github.com/markgrid/markgrid-backend/internal/rules"
)

const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// Stats records per-player results once a match ends.
type Stats interface {
	RecordResult(ctx context.Context, playerID, result string) error
}

// Coordinator owns the room registry and the matchmaking queue. It is the
// sole turn authority for remote play: every mutating operation on a room
// runs under that room's lock, so the turn check and the state change of two
// near-simultaneous moves can never interleave.
type Coordinator struct {
	logger   *slog.Logger
	notifier Notifier
	bot      *bot.Bot
	botDelay time.Duration
	stats    Stats

	mu    sync.RWMutex
	rooms map[string]*Room
	queue matchQueue
}

func NewCoordinator(logger *slog.Logger, notifier Notifier, botPlayer *bot.Bot, botDelay time.Duration, stats Stats) *Coordinator {
	return &Coordinator{
		logger:   logger.With("component", "coordinator"),
		notifier: notifier,
		bot:      botPlayer,
		botDelay: botDelay,
		stats:    stats,
		rooms:    make(map[string]*Room),
	}
}

type RoomParams struct {
	Code       string
	Variant    string
	Size       int
	VsBot      bool
	Difficulty string
}

func (that *RoomParams) normalize() error {
	if that.Variant == "" {
		that.Variant = entity.VariantClassic
	}
	if that.Size == 0 {
		that.Size = 3
	}

	if !that.VsBot {
		return nil
	}
	if that.Difficulty == "" {
		that.Difficulty = bot.TierGod
	}
	switch that.Difficulty {
	case bot.TierEasy, bot.TierMedium, bot.TierHard, bot.TierGod:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, that.Difficulty)
	}
}

// CreateRoom binds the requester as the first participant with the first
// mark, generating a code when none was supplied. Bot rooms start playing
// immediately; rooms against a remote human wait for a join.
func (that *Coordinator) CreateRoom(_ context.Context, playerID string, params RoomParams) (*Room, error) {
	if err := params.normalize(); err != nil {
		return nil, err
	}

	that.mu.Lock()
	code := params.Code
	if code == "" {
		for {
			code = generateRoomCode()
			if _, taken := that.rooms[code]; code != "" && !taken {
				break
			}
		}
	} else if _, taken := that.rooms[code]; taken {
		that.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomExists, code)
	}

	game, err := entity.NewGame(code, params.Variant, params.Size)
	if err != nil {
		that.mu.Unlock()
		return nil, err
	}

	room := newRoom(code, game)
	room.bind(playerID, entity.PlayerX)
	if params.VsBot {
		room.botMark = entity.PlayerO
		room.difficulty = params.Difficulty
		game.Status = entity.StatusOngoing
	}
	that.rooms[code] = room
	that.mu.Unlock()

	that.notifier.Notify(playerID, Event{
		Type: EventRoomCreated,
		Payload: RoomCreatedPayload{
			RoomCode:     code,
			PlayerSymbol: entity.PlayerX,
			Variant:      game.Variant,
			Size:         game.Size,
		},
	})

	if params.VsBot {
		room.mu.Lock()
		that.sendGameStart(room)
		room.mu.Unlock()
	}

	that.logger.Info("room created", "roomCode", code, "variant", game.Variant, "vsBot", params.VsBot)

	return room, nil
}

// JoinRoom binds the requester to the room's open slot. An identity already
// bound to the room is treated as a reconnect; a slot whose connection died
// may be taken over by a new identity. A slot with a live connection is never
// stolen.
func (that *Coordinator) JoinRoom(_ context.Context, playerID, code string) error {
	room := that.room(code)
	if room == nil {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, code)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if p := room.participantByID(playerID); p != nil {
		that.sendGameStartTo(room, p)
		return nil
	}

	if room.isBotRoom() {
		return apperror.ErrRoomFull
	}

	// A room whose match already ended is only kept around for the remaining
	// participant; it never accepts a new identity.
	if room.game.IsFinished() {
		return fmt.Errorf("%w: %s", apperror.ErrRoomClosed, code)
	}

	if room.boundCount() < 2 {
		room.bind(playerID, room.openMark())
		room.game.Status = entity.StatusOngoing
		that.sendGameStart(room)

		that.logger.Info("player joined room", "roomCode", code, "playerID", playerID)

		return nil
	}

	for _, slot := range room.slots {
		if !that.notifier.IsConnected(slot.id) {
			slot.id = playerID
			that.sendGameStart(room)

			that.logger.Info("player took over dead slot", "roomCode", code, "playerID", playerID)

			return nil
		}
	}

	return apperror.ErrRoomFull
}

// MakeMove validates, in order, that the requester is bound to the room, that
// it is their turn, and that the cell is a legal target under the active
// variant; then applies the move and broadcasts the new state. A terminal
// result goes out as a separate event. Validation failures are returned to
// the caller only and leave the state unchanged.
func (that *Coordinator) MakeMove(ctx context.Context, playerID, code string, cell int) error {
	room := that.room(code)
	if room == nil {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, code)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	p := room.participantByID(playerID)
	if p == nil {
		return apperror.ErrNotInRoom
	}

	game := room.game
	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	outcome, err := rules.ApplyMove(game, p.mark, cell)
	if err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	that.broadcastMove(room, outcome)

	if game.IsFinished() {
		that.finishGame(ctx, room)
		return nil
	}

	if room.isBotRoom() && game.Turn == room.botMark {
		that.scheduleBotMove(room)
	}

	return nil
}

// EnqueueRandomMatch prunes dead identities from the queue, then pairs the
// requester with the earliest other identity if one is waiting; the queued
// identity gets the first mark. Otherwise the requester starts waiting.
func (that *Coordinator) EnqueueRandomMatch(_ context.Context, playerID string) error {
	other, paired := that.queue.popOther(playerID, that.notifier.IsConnected)
	if !paired {
		that.notifier.Notify(playerID, Event{Type: EventWaitingForMatch, Payload: WaitingForMatchPayload{}})
		return nil
	}

	that.mu.Lock()
	var code string
	for {
		code = generateRoomCode()
		if _, taken := that.rooms[code]; code != "" && !taken {
			break
		}
	}

	game, err := entity.NewGame(code, entity.VariantClassic, 3)
	if err != nil {
		that.mu.Unlock()
		return fmt.Errorf("failed to create matched game: %w", err)
	}
	game.Status = entity.StatusOngoing

	room := newRoom(code, game)
	room.bind(other, entity.PlayerX)
	room.bind(playerID, entity.PlayerO)
	that.rooms[code] = room
	that.mu.Unlock()

	room.mu.Lock()
	that.sendGameStart(room)
	room.mu.Unlock()

	that.logger.Info("matched players", "roomCode", code, "players", []string{other, playerID})

	return nil
}

// LeaveRoom unbinds the identity from its room, notifies the remaining
// participant and deletes the room once no participant is bound. Leaving is a
// lifecycle transition, not an error, so there is nothing to return.
func (that *Coordinator) LeaveRoom(_ context.Context, playerID string) {
	that.queue.remove(playerID)

	that.mu.Lock()
	var room *Room
	for _, candidate := range that.rooms {
		candidate.mu.Lock()
		if candidate.participantByID(playerID) != nil {
			room = candidate
			break
		}
		candidate.mu.Unlock()
	}

	if room == nil {
		that.mu.Unlock()
		return
	}

	room.unbind(playerID)
	room.stopBotTimer()

	game := room.game
	if !game.IsFinished() {
		game.Status = entity.StatusFinished
		game.Turn = entity.EmptyCell
	}

	remaining := room.participantIDs()
	if len(remaining) == 0 || room.isBotRoom() {
		delete(that.rooms, room.code)
	}
	that.mu.Unlock()

	for _, id := range remaining {
		that.notifier.Notify(id, Event{Type: EventPlayerLeft, Payload: PlayerLeftPayload{RoomCode: room.code}})
	}
	room.mu.Unlock()

	that.logger.Info("player left room", "roomCode", room.code, "playerID", playerID)
}

// Disconnect handles a dropped connection: same transition as an explicit
// leave.
func (that *Coordinator) Disconnect(ctx context.Context, playerID string) {
	that.LeaveRoom(ctx, playerID)
}

// RoomOf reports the code of the room an identity is currently bound to.
func (that *Coordinator) RoomOf(playerID string) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for code, room := range that.rooms {
		room.mu.Lock()
		bound := room.participantByID(playerID) != nil
		room.mu.Unlock()

		if bound {
			return code, true
		}
	}

	return "", false
}

func (that *Coordinator) room(code string) *Room {
	that.mu.RLock()
	defer that.mu.RUnlock()
	return that.rooms[code]
}

// scheduleBotMove defers the computer's reply to simulate thinking time. The
// timer is cancelled when the match ends or the room dies first, and never
// blocks other rooms.
func (that *Coordinator) scheduleBotMove(room *Room) {
	room.stopBotTimer()
	code := room.code
	room.botTimer = time.AfterFunc(that.botDelay, func() {
		that.playBotMove(context.Background(), code)
	})
}

func (that *Coordinator) playBotMove(ctx context.Context, code string) {
	room := that.room(code)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	game := room.game
	if !game.IsOngoing() || game.Turn != room.botMark {
		return
	}

	var cell int
	if game.Variant == entity.VariantNested {
		cell = that.bot.SelectNestedMove(game.Board, rules.LegalCells(game), room.botMark, room.difficulty)
	} else {
		cell = that.bot.SelectMove(game.Board, game.Size, room.botMark, room.difficulty)
	}

	if cell == bot.NoMove {
		return
	}

	outcome, err := rules.ApplyMove(game, room.botMark, cell)
	if err != nil {
		that.logger.Error("bot failed to make turn", "roomCode", code, "error", err)
		return
	}

	that.broadcastMove(room, outcome)

	if game.IsFinished() {
		that.finishGame(ctx, room)
	}
}

// The helpers below assume room.mu is held.

func (that *Coordinator) sendGameStart(room *Room) {
	for _, slot := range room.slots {
		if slot != nil {
			that.sendGameStartTo(room, slot)
		}
	}
}

func (that *Coordinator) sendGameStartTo(room *Room, p *participant) {
	that.notifier.Notify(p.id, Event{
		Type: EventGameStart,
		Payload: GameStartPayload{
			RoomCode:     room.code,
			PlayerSymbol: p.mark,
			Players:      room.participantIDs(),
			CurrentTurn:  room.game.Turn,
			Variant:      room.game.Variant,
			Size:         room.game.Size,
			Board:        snapshot(room.game.Board),
		},
	})
}

func (that *Coordinator) broadcastMove(room *Room, outcome *rules.Outcome) {
	game := room.game

	payload := MoveMadePayload{
		Position:    outcome.Move.Cell,
		Symbol:      outcome.Move.Mark,
		Board:       snapshot(game.Board),
		CurrentTurn: game.Turn,
		Evicted:     outcome.Evicted,
		Pending:     outcome.Pending,
	}
	if game.Variant == entity.VariantNested {
		next := game.NextBoard
		payload.NextBoard = &next
	}

	for _, slot := range room.slots {
		if slot != nil {
			that.notifier.Notify(slot.id, Event{Type: EventMoveMade, Payload: payload})
		}
	}
}

func (that *Coordinator) finishGame(ctx context.Context, room *Room) {
	room.stopBotTimer()

	game := room.game
	payload := GameOverPayload{Winner: game.Winner, Line: game.WinLine}
	for _, slot := range room.slots {
		if slot == nil {
			continue
		}

		that.notifier.Notify(slot.id, Event{Type: EventGameOver, Payload: payload})

		if that.stats != nil {
			if err := that.stats.RecordResult(ctx, slot.id, resultFor(slot.mark, game.Winner)); err != nil {
				that.logger.Error("failed to record result", "playerID", slot.id, "error", err)
			}
		}
	}

	that.logger.Info("game finished", "roomCode", room.code, "winner", game.Winner)
}

func resultFor(mark, winner string) string {
	switch winner {
	case mark:
		return ResultWin
	case entity.PlayerTie:
		return ResultDraw
	default:
		return ResultLoss
	}
}

func snapshot(board []string) []string {
	return append([]string(nil), board...)
}
