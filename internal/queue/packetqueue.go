// Package queue implements the bounded producer/consumer primitives the
// player core is built on: a byte-size-observed packet FIFO and a
// fixed-capacity decoded-frame ring.
package queue

import "sync"

// Packet is the minimal shape a PacketQueue element needs: something whose
// payload size and duration can be accounted for, and that can release its
// underlying resources exactly once.
type Packet interface {
	PayloadSize() int
	DurationSeconds() float64
	Release()
}

// entryOverhead approximates player.c's sizeof(MyAVPacketList) bookkeeping
// cost folded into PacketQueue.size, so size comparisons against
// MAX_QUEUE_SIZE behave the same as the original even though Go has no
// equivalent struct-in-fifo overhead.
const entryOverhead = 24

// PacketQueue is an unbounded-by-count, byte-size-observed FIFO of packets
// with blocking Get and abort-aware wakeups. One PacketQueue serves exactly
// one producer and one consumer, per spec.
type PacketQueue[T Packet] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	size     int
	duration float64
	aborted  bool
}

// New returns an initialized, empty PacketQueue.
func New[T Packet]() *PacketQueue[T] {
	q := &PacketQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put takes ownership of pkt, appends it, and signals any blocked reader.
// Put never blocks the producer.
func (q *PacketQueue[T]) Put(pkt T) {
	q.mu.Lock()
	q.items = append(q.items, pkt)
	q.size += pkt.PayloadSize() + entryOverhead
	q.duration += pkt.DurationSeconds()
	q.mu.Unlock()
	q.cond.Signal()
}

// Get attempts to dequeue a packet. If one is available it is returned with
// ok=true. If the queue is empty and block is false, it returns ok=false
// immediately. If block is true, it waits on the condition until a packet
// arrives or Abort is called, in which case it returns ok=false.
func (q *PacketQueue[T]) Get(block bool) (pkt T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if len(q.items) > 0 {
			pkt = q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			q.size -= pkt.PayloadSize() + entryOverhead
			q.duration -= pkt.DurationSeconds()
			return pkt, true
		}
		if q.aborted || !block {
			var zero T
			return zero, false
		}
		q.cond.Wait()
	}
}

// Size returns the current cumulative byte size (payload + overhead) of
// queued packets. Used for the Reader's backpressure check.
func (q *PacketQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Count returns the number of queued packets.
func (q *PacketQueue[T]) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Duration returns the cumulative duration, in seconds, of queued packets.
func (q *PacketQueue[T]) Duration() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.duration
}

// Flush releases every held packet and zeroes the counters.
func (q *PacketQueue[T]) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, pkt := range q.items {
		pkt.Release()
	}
	q.items = nil
	q.size = 0
	q.duration = 0
}

// Abort wakes every blocked Get call, which then returns ok=false. Player
// Close calls it on both packet queues during shutdown, although
// PacketQueue consumers in this player never actually block (they pass
// block=false).
func (q *PacketQueue[T]) Abort() {
	q.mu.Lock()
	q.aborted = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Destroy flushes the queue. There is nothing else to release in the Go
// port: no explicit mutex/cond destruction is needed.
func (q *PacketQueue[T]) Destroy() {
	q.Flush()
}
