// Package audio plays a short tone when particles collide.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

const (
	sampleRate = beep.SampleRate(44100)
	baseTone   = 880.0
	toneLength = 50 * time.Millisecond
)

// Pinger turns a frame's collision count into at most one tone. A Pinger
// whose speaker failed to start stays silent.
type Pinger struct {
	mu      sync.Mutex
	enabled bool
	play    func(beep.Streamer)
	close   func()
	log     *zap.Logger
}

// NewPinger starts the speaker unless muted. Audio failure is logged, not
// returned: the viewer runs fine without sound.
func NewPinger(log *zap.Logger, mute bool) *Pinger {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pinger{log: log}
	if mute {
		return p
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Warn("audio initialization failed", zap.Error(err))
		return p
	}
	p.enabled = true
	p.play = func(s beep.Streamer) { speaker.Play(s) }
	p.close = speaker.Close
	return p
}

// Collisions plays one tone if n > 0. More collisions raise the pitch, up
// to an octave. It reports whether a tone was queued.
func (p *Pinger) Collisions(n int) bool {
	if n <= 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return false
	}

	freq := baseTone * math.Pow(2, math.Min(float64(n-1), 4)/4)
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		p.log.Debug("tone rejected", zap.Float64("freq", freq), zap.Error(err))
		return false
	}
	p.play(beep.Take(sampleRate.N(toneLength), sine))
	return true
}

// Close releases the speaker.
func (p *Pinger) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled && p.close != nil {
		p.close()
	}
	p.enabled = false
}
