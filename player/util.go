package player

import "time"

// sleepIdle is the backoff used for queue-size backpressure and for
// actors polling a queue they don't want to block on (spec §4.3 step 2,
// §4.4 step 2 / player.c's SDL_Delay(10)).
func sleepIdle() {
	time.Sleep(readerIdleSleep)
}

// sleepEmptyRead is the Reader actor's backoff after a transient empty
// read from the demuxer (spec §4.3 step 3), longer than sleepIdle since
// there is no queued work anywhere to fall behind on.
func sleepEmptyRead() {
	time.Sleep(readerEmptySleep)
}
