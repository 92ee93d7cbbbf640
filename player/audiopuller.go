package player

import (
	"errors"
	"io"

	"github.com/zhaomo08/avplay/media"
)

// errAudioStarved signals a momentary empty audio queue (reader lagging, or
// the starvation scenario in spec §8 scenario 3) as opposed to a genuine
// end of stream. pullAudio treats it as "fill silence and keep going," never
// as a reason to stall the real-time audio callback.
var errAudioStarved = errors.New("avplay: audio queue temporarily empty")

// pullAudio is the audio pull callback (spec §4.5/§4.6, player.c's
// sdl_audio_callback driving audio_decode_frame). It is invoked by the
// sink.AudioDevice's own goroutine whenever the device wants more bytes,
// serving from a leftover buffer before decoding another frame.
func (vs *VideoState) pullAudio(out []byte) (int, error) {
	served := 0
	for served < len(out) {
		if len(vs.audioBuf) == 0 {
			if err := vs.decodeAudioFrame(); err != nil {
				if errors.Is(err, errAudioStarved) {
					silence(out[served:])
					return len(out), nil
				}
				if served > 0 {
					return served, nil
				}
				return served, err
			}
			if len(vs.audioBuf) == 0 {
				continue
			}
		}

		n := copy(out[served:], vs.audioBuf)
		vs.audioBuf = vs.audioBuf[n:]
		served += n
	}
	return served, nil
}

func silence(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// decodeAudioFrame decodes (and resamples) exactly one audio frame into
// vs.audioBuf, updating the audio clock (spec §4.5's audio_decode_frame).
// It returns io.EOF once the stream is fully drained.
func (vs *VideoState) decodeAudioFrame() error {
	for {
		if vs.quit.Load() {
			return io.EOF
		}

		raw, err := vs.audioDecoder.ReceiveAudioFrame()
		switch {
		case err == nil:
			return vs.resampleAudioFrame(raw)
		case errors.Is(err, media.ErrAgain):
			if err := vs.feedNextAudioPacket(); err != nil {
				return err
			}
		case errors.Is(err, io.EOF):
			return io.EOF
		default:
			pkgLogger.Printf("avplay: audio: receive frame: %v", err)
			return err
		}
	}
}

// feedNextAudioPacket polls the audio packet queue non-blocking. On an
// empty queue it returns errAudioStarved at once, and pullAudio fills the
// rest of the request with silence, instead of stalling the real-time
// audio pull thread.
func (vs *VideoState) feedNextAudioPacket() error {
	pkt, ok := vs.audioQueue.Get(false)
	if !ok {
		return errAudioStarved
	}
	if isFlush(pkt) {
		return vs.audioDecoder.Flush()
	}
	err := vs.audioDecoder.SendPacket(pkt)
	pkt.Release()
	if err != nil && !errors.Is(err, media.ErrAgain) {
		return err
	}
	return nil
}

func (vs *VideoState) resampleAudioFrame(raw media.AudioFrame) error {
	defer raw.Release()

	needed := (raw.NbSamples() + resamplerScratchMargin) * raw.Channels() * 2
	if cap(vs.audioBuf) < needed {
		vs.audioBuf = make([]byte, needed)
	} else {
		vs.audioBuf = vs.audioBuf[:needed]
	}

	n, err := vs.resampler.Convert(raw, vs.audioBuf)
	if err != nil {
		vs.audioBuf = vs.audioBuf[:0]
		return err
	}
	byteLen := n * raw.Channels() * 2
	vs.audioBuf = vs.audioBuf[:byteLen]

	if pts, ok := raw.PTS(); ok {
		vs.clocks.Audio.Set(pts + float64(n)/float64(raw.SampleRate()))
	}
	return nil
}
