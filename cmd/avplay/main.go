// Command avplay plays a video file with audio/video sync, using the
// avplay player engine wired to a go-astiav demuxer and an ebitengine
// window.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/zhaomo08/avplay/internal/clock"
	"github.com/zhaomo08/avplay/media/ffdecode"
	"github.com/zhaomo08/avplay/player"
	"github.com/zhaomo08/avplay/sink/ebitensink"
)

func main() {
	syncFlag := flag.String("sync", "audio", "master clock: audio, video or external")
	logLevel := flag.String("loglevel", "info", "log verbosity: quiet, info or debug")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: avplay [-sync=audio|video|external] [-loglevel=quiet|info|debug] <path/to/video>\n")
		os.Exit(1)
	}
	path := flag.Arg(0)

	logger := log.New(os.Stderr, "avplay: ", log.LstdFlags)
	if *logLevel == "quiet" {
		player.SetLogger(log.New(io.Discard, "", 0))
	} else {
		player.SetLogger(logger)
	}

	demux, err := ffdecode.Open(path)
	if err != nil {
		logger.Fatalf("open %q: %v", path, err)
	}

	videoSurface, err := ebitensink.NewVideoSurface()
	if err != nil {
		logger.Fatalf("create video surface: %v", err)
	}

	// ebitengine's audio context can only be created once per process, and
	// must know the stream's sample rate up front; 48000 covers the vast
	// majority of containers. A file at any other rate fails the audio
	// device's sample-rate check and plays video-only.
	audioCtx := audio.NewContext(48000)
	audioDevice := ebitensink.NewAudioDevice(audioCtx)

	timer := ebitensink.NewTimer()
	events := ebitensink.NewEventPump()

	p, err := player.New(demux, videoSurface, audioDevice, timer, events)
	if err != nil {
		logger.Fatalf("open player: %v", err)
	}

	switch *syncFlag {
	case "video":
		p.SetSyncType(clock.VideoMaster)
	case "external":
		p.SetSyncType(clock.ExternalMaster)
	case "audio":
		p.SetSyncType(clock.AudioMaster)
	default:
		logger.Fatalf("unknown -sync value %q", *syncFlag)
	}

	if err := p.Play(); err != nil {
		logger.Fatalf("play: %v", err)
	}

	ebiten.SetWindowTitle(fmt.Sprintf("avplay - %s", path))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)

	game := &game{player: p, videoSurface: videoSurface}
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatalf("run: %v", err)
	}
}

type game struct {
	player       *player.Player
	videoSurface *ebitensink.VideoSurface
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.player.Close()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.player.State() == player.Playing {
			g.player.Pause()
		} else {
			g.player.Play()
		}
	}
	return g.player.Update()
}

func (g *game) Draw(screen *ebiten.Image) {
	g.videoSurface.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
