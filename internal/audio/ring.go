package audio

import "sync"

// SampleRing is a thread-safe ring buffer of PCM samples. It hands chunks of
// microphone audio from the capture loop to the recognizer feed without
// blocking either side; oldest samples are dropped on overflow.
type SampleRing struct {
	mu      sync.Mutex
	buf     []int16
	head    int
	length  int
	dropped int64
}

// NewSampleRing creates a ring holding up to capacity samples
func NewSampleRing(capacity int) *SampleRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &SampleRing{buf: make([]int16, capacity)}
}

// Write appends samples, overwriting the oldest data when full.
// Returns the number of samples dropped to make room.
func (r *SampleRing) Write(samples []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for _, s := range samples {
		if r.length == len(r.buf) {
			// Overwrite the oldest sample.
			r.head = (r.head + 1) % len(r.buf)
			r.length--
			dropped++
		}
		r.buf[(r.head+r.length)%len(r.buf)] = s
		r.length++
	}
	r.dropped += int64(dropped)
	return dropped
}

// Read fills dst with buffered samples and returns the count read
func (r *SampleRing) Read(dst []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(dst)
	if n > r.length {
		n = r.length
	}
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.head = (r.head + n) % len(r.buf)
	r.length -= n
	return n
}

// Len returns the number of buffered samples
func (r *SampleRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.length
}

// Dropped returns the total number of samples lost to overflow
func (r *SampleRing) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Clear discards all buffered samples
func (r *SampleRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.length = 0
}
