package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/san-kum/rodsphere/internal/population"
)

const (
	SampleRate = beep.SampleRate(44100)
	// maxVoices caps queued clicks so a burst of adds cannot pile up.
	maxVoices = 16
)

// Harmony: Gm7 add9 (G2, Bb2, D3, F3, A3).
var chord = []float64{98.00, 116.54, 146.83, 174.61, 220.00}

// Triangle Wave: Smooth, flute-like, no harsh buzz
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// Low Pass Filter (One Pole)
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Pad is an endless ambient chord whose brightness and level follow the
// drive intensity.
type Pad struct {
	sr beep.SampleRate

	mu     sync.Mutex
	target float64

	time   float64
	level  float64
	filter [2]float64
	delay  [2][]float64
	head   int
}

func NewPad(sr beep.SampleRate) *Pad {
	// 0.6 second delay for larger space
	n := sr.N(600 * time.Millisecond)
	return &Pad{sr: sr, delay: [2][]float64{make([]float64, n), make([]float64, n)}}
}

// SetIntensity sets the level the pad drifts toward, clamped to [0,1].
func (p *Pad) SetIntensity(x float64) {
	p.mu.Lock()
	p.target = math.Max(0, math.Min(1, x))
	p.mu.Unlock()
}

// Level is the smoothed intensity the synth is currently playing at.
func (p *Pad) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *Pad) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dt := 1.0 / float64(p.sr)
	g := 1.0 / float64(len(chord))
	for i := range samples {
		p.level = p.level*0.9998 + p.target*0.0002

		cutoff := 300.0 + 900.0*p.level
		vol := 0.252 * (0.35 + 0.65*p.level)

		var l, r float64
		for j, f := range chord {
			lfo := math.Sin(p.time*0.2 + float64(j))
			l += triangle(p.time*f*0.999) * g * (0.7 + 0.3*lfo)
			r += triangle(p.time*f*1.001) * g * (0.7 + 0.3*lfo)
		}
		p.filter[0] = lpf(l, cutoff, dt, p.filter[0])
		p.filter[1] = lpf(r, cutoff, dt, p.filter[1])

		// Ping-pong feedback
		dl, dr := p.delay[0][p.head], p.delay[1][p.head]
		mixL := p.filter[0] + dl*0.3 + dr*0.1
		mixR := p.filter[1] + dr*0.3 + dl*0.1
		p.delay[0][p.head] = mixL * 0.7
		p.delay[1][p.head] = mixR * 0.7
		p.head = (p.head + 1) % len(p.delay[0])

		samples[i][0] = mixL * vol
		samples[i][1] = mixR * vol
		p.time += dt
	}
	return len(samples), true
}

func (p *Pad) Err() error { return nil }

// click is a short decaying sine.
type click struct {
	freq, amp float64
	pos, n    int
	sr        beep.SampleRate
}

func newClick(sr beep.SampleRate, freq, amp float64, d time.Duration) *click {
	return &click{freq: freq, amp: amp, n: sr.N(d), sr: sr}
}

func (c *click) Stream(samples [][2]float64) (int, bool) {
	if c.pos >= c.n {
		return 0, false
	}
	for i := range samples {
		if c.pos >= c.n {
			return i, true
		}
		t := float64(c.pos) / float64(c.sr)
		env := math.Exp(-6 * float64(c.pos) / float64(c.n))
		v := c.amp * env * math.Sin(2*math.Pi*c.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		c.pos++
	}
	return len(samples), true
}

func (c *click) Err() error { return nil }

// Player mixes the pad with one click per population change and plays
// the result on the default output device once started.
type Player struct {
	mu      sync.Mutex
	pad     *Pad
	ctrl    *beep.Ctrl
	mixer   *beep.Mixer
	volume  *effects.Volume
	started bool
}

func NewPlayer() *Player {
	pad := NewPad(SampleRate)
	ctrl := &beep.Ctrl{Streamer: pad}
	mixer := &beep.Mixer{}
	mixer.Add(ctrl)
	return &Player{
		pad:    pad,
		ctrl:   ctrl,
		mixer:  mixer,
		volume: &effects.Volume{Streamer: mixer, Base: 2},
	}
}

// Streamer is the master output, usable without a device for rendering.
func (p *Player) Streamer() beep.Streamer { return p.volume }
func (p *Player) Pad() *Pad               { return p.pad }

func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.volume)
	p.started = true
	return nil
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	speaker.Clear()
	p.started = false
}

// locked runs f with exclusive access to the streamer graph.
func (p *Player) locked(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	f()
}

func (p *Player) SetIntensity(x float64) { p.pad.SetIntensity(x) }

func (p *Player) SetPaused(paused bool) {
	p.locked(func() { p.ctrl.Paused = paused })
}

// ToggleMute flips the master mute and reports whether output is now silent.
func (p *Player) ToggleMute() bool {
	var silent bool
	p.locked(func() {
		p.volume.Silent = !p.volume.Silent
		silent = p.volume.Silent
	})
	return silent
}

// OnDecision queues a bright click for each add and a lower one for each
// remove.
func (p *Player) OnDecision(d population.Decision) {
	var c *click
	switch d.Action {
	case population.ActionAdd:
		c = newClick(SampleRate, 1760, 0.12, 40*time.Millisecond)
	case population.ActionRemove:
		c = newClick(SampleRate, 440, 0.12, 60*time.Millisecond)
	default:
		return
	}
	p.locked(func() {
		if p.mixer.Len() < maxVoices+1 {
			p.mixer.Add(c)
		}
	})
}

// Voices is the number of streamers in the mix, the pad included.
func (p *Player) Voices() int {
	var n int
	p.locked(func() { n = p.mixer.Len() })
	return n
}
