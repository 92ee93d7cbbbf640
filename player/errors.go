package player

import "errors"

// Sentinel errors of the player package. New returns ErrNoVideoStream and
// Close returns ErrAlreadyClosed; ErrNoAudioStream, ErrUnsupportedPixelFmt
// and ErrBadAudioSampleRate are declared but returned by no function here.
var (
	ErrNoVideoStream       = errors.New("avplay: input has no video stream")
	ErrNoAudioStream       = errors.New("avplay: input has no audio stream")
	ErrUnsupportedPixelFmt = errors.New("avplay: decoded pixel format is not planar YUV420")
	ErrAlreadyClosed       = errors.New("avplay: player already closed")
	ErrBadAudioSampleRate  = errors.New("avplay: audio device sample rate does not match the stream")
)
