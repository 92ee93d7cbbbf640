package player

import (
	"errors"
	"io"

	"github.com/zhaomo08/avplay/media"
)

// runReader is the demux actor (spec §4.3, player.c's read_thread): it
// pulls packets off the container and fans them out to the per-stream
// queues, applying backpressure so a fast demuxer can't run the process
// out of memory while the decoders lag behind.
func runReader(vs *VideoState) {
	for {
		if vs.quit.Load() {
			return
		}

		if vs.videoQueue.Size() > maxQueueSize || vs.audioQueue.Size() > maxQueueSize {
			sleepIdle()
			continue
		}

		pkt, err := vs.demuxer.ReadPacket()
		switch {
		case err == nil:
			dispatchPacket(vs, pkt)
		case errors.Is(err, media.ErrAgain):
			sleepEmptyRead()
		case errors.Is(err, io.EOF):
			flushQueues(vs)
			waitForDrainOrQuit(vs)
			return
		default:
			pkgLogger.Printf("avplay: reader: %v", err)
			vs.quit.Store(true)
			return
		}
	}
}

func dispatchPacket(vs *VideoState, pkt media.Packet) {
	switch pkt.StreamIndex() {
	case vs.videoStream.Index():
		vs.videoQueue.Put(pkt)
	case streamIndexOrInvalid(vs.audioStream):
		if vs.audioStream != nil {
			vs.audioQueue.Put(pkt)
			return
		}
		pkt.Release()
	default:
		pkt.Release()
	}
}

func streamIndexOrInvalid(s media.StreamHandle) int {
	if s == nil {
		return -1
	}
	return s.Index()
}

func flushQueues(vs *VideoState) {
	vs.videoQueue.Put(flushPacket{})
	if vs.audioStream != nil {
		vs.audioQueue.Put(flushPacket{})
	}
}

// waitForDrainOrQuit blocks until the player is closed. Once the flush
// sentinels are queued, the Reader has nothing left to do: the decoders
// drain their buffered frames on their own and the player keeps displaying
// the last frame (or stops, per the caller's policy) once both queues are
// empty.
func waitForDrainOrQuit(vs *VideoState) {
	for !vs.quit.Load() {
		sleepIdle()
	}
}
