package ping

import (
	"math"
	"time"
)

// Statistics accumulates the outcome of a session. It is owned by the
// session loop and must not be shared across goroutines.
type Statistics struct {
	transmitted int
	received    int
	rtts        []time.Duration
}

// Summary holds the round-trip figures of a session.
type Summary struct {
	Min    time.Duration
	Avg    time.Duration
	Max    time.Duration
	StdDev time.Duration
}

// RecordTransmit counts one probe that left in full.
func (s *Statistics) RecordTransmit() {
	s.transmitted++
}

// RecordReply counts one matched reply with its round-trip time.
func (s *Statistics) RecordReply(rtt time.Duration) {
	s.received++
	s.rtts = append(s.rtts, rtt)
}

// Transmitted returns the number of probes sent.
func (s *Statistics) Transmitted() int { return s.transmitted }

// Received returns the number of matched replies.
func (s *Statistics) Received() int { return s.received }

// Loss returns the share of unanswered probes in percent. It is zero when
// nothing was transmitted.
func (s *Statistics) Loss() float64 {
	if s.transmitted == 0 {
		return 0
	}
	return float64(s.transmitted-s.received) * 100 / float64(s.transmitted)
}

// Summary returns min, average, max and population standard deviation of
// the recorded round-trip times. ok is false when no reply was recorded.
func (s *Statistics) Summary() (sum Summary, ok bool) {
	if len(s.rtts) == 0 {
		return Summary{}, false
	}

	sum.Min, sum.Max = s.rtts[0], s.rtts[0]
	var total float64
	for _, rtt := range s.rtts {
		sum.Min = min(sum.Min, rtt)
		sum.Max = max(sum.Max, rtt)
		total += float64(rtt)
	}
	mean := total / float64(len(s.rtts))

	var sq float64
	for _, rtt := range s.rtts {
		d := float64(rtt) - mean
		sq += d * d
	}

	sum.Avg = time.Duration(math.Round(mean))
	sum.StdDev = time.Duration(math.Round(math.Sqrt(sq / float64(len(s.rtts)))))
	return sum, true
}
