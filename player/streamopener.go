package player

import (
	"fmt"

	"github.com/zhaomo08/avplay/internal/clock"
	"github.com/zhaomo08/avplay/internal/queue"
	"github.com/zhaomo08/avplay/media"
	"github.com/zhaomo08/avplay/sink"
)

// openStreams finds the first video and (if present) first audio stream,
// opens their decoders, and wires the queues and clocks, mirroring
// player.c's stream_component_open called once per stream from
// stream_open (spec §4.8).
func openStreams(demux media.Demuxer, videoSurface sink.VideoSurface, audioDevice sink.AudioDevice, timer sink.Timer, events sink.EventPump) (*VideoState, error) {
	vs := &VideoState{
		demuxer:      demux,
		videoQueue:   queue.New[media.Packet](),
		audioQueue:   queue.New[media.Packet](),
		pictq:        queue.NewFrameQueue[Frame](videoPictureQueueSize),
		videoSurface: videoSurface,
		audioDevice:  audioDevice,
		timer:        timer,
		events:       events,
	}

	for _, s := range demux.Streams() {
		switch s.Type() {
		case media.TypeVideo:
			if vs.videoStream == nil {
				vs.videoStream = s
			}
		case media.TypeAudio:
			if vs.audioStream == nil {
				vs.audioStream = s
			}
		}
	}

	if vs.videoStream == nil {
		return nil, ErrNoVideoStream
	}

	videoDecoder, err := demux.OpenDecoder(vs.videoStream)
	if err != nil {
		return nil, fmt.Errorf("avplay: open video decoder: %w", err)
	}
	vs.videoDecoder = videoDecoder
	scaler, err := videoDecoder.NewScaler()
	if err != nil {
		videoDecoder.Close()
		return nil, fmt.Errorf("avplay: create video scaler: %w", err)
	}
	vs.scaler = scaler

	if vs.audioStream != nil {
		audioDecoder, err := demux.OpenDecoder(vs.audioStream)
		if err != nil {
			pkgLogger.Printf("avplay: open audio decoder failed, continuing video-only: %v", err)
			vs.audioStream = nil
		} else {
			resampler, err := audioDecoder.NewResampler()
			if err != nil {
				audioDecoder.Close()
				pkgLogger.Printf("avplay: create resampler failed, continuing video-only: %v", err)
				vs.audioStream = nil
			} else {
				vs.audioDecoder = audioDecoder
				vs.resampler = resampler
			}
		}
	}

	if vs.audioStream != nil {
		sampleRate := vs.audioStream.TimeBase().Den // unused; audioSampleRateHint supplies the device rate
		_ = sampleRate
		stream, err := audioDevice.NewStream(audioSampleRateHint(vs), 2, vs.pullAudio)
		if err != nil {
			pkgLogger.Printf("avplay: open audio device failed, continuing video-only: %v", err)
			vs.audioStream = nil
		} else {
			vs.audioStreamH = stream
			vs.bytesPerSecond = audioSampleRateHint(vs) * 2 * 2
		}
	}

	if vs.audioStream != nil {
		vs.clocks.SyncType = clock.AudioMaster
	} else {
		vs.clocks.SyncType = clock.VideoMaster
	}

	return vs, nil
}

// audioSampleRateHint returns the audio stream's container-declared sample
// rate. Containers always carry this in the codec parameters, but since
// media.StreamHandle only exposes timebase/frame-rate (the fields the core
// actually needs pre-decode), the first decoded frame's own SampleRate()
// is treated as authoritative once available; this hint only seeds the
// initial audio device creation.
func audioSampleRateHint(vs *VideoState) int {
	tb := vs.audioStream.TimeBase()
	if tb.Den > 0 {
		return tb.Den
	}
	return 48000
}
