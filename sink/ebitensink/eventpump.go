package ebitensink

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/zhaomo08/avplay/sink"
)

// EventPump maps player.c's SDL_QUIT event to the Escape key, used to
// terminate ebiten.RunGame.
type EventPump struct{}

func NewEventPump() *EventPump { return &EventPump{} }

var _ sink.EventPump = (*EventPump)(nil)

// QuitRequested must be called once per Game.Update() tick; it reports
// whether Escape was pressed since the previous tick.
func (EventPump) QuitRequested() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}
