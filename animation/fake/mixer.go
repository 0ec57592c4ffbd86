// Package fake implements an in-memory animation mixer.
package fake

import (
	"sort"
	"sync"

	"go.viam.com/armrig/animation"
	"go.viam.com/armrig/utils"
)

// DefaultClipDuration is the length in seconds given to clips created without one.
const DefaultClipDuration = 1.0

// Mixer holds named actions and advances their time and fades on Update.
type Mixer struct {
	mu      sync.Mutex
	actions map[string]*Action
}

// NewMixer returns a mixer with one action per name, each DefaultClipDuration long.
func NewMixer(names ...string) *Mixer {
	durations := make(map[string]float64, len(names))
	for _, n := range names {
		durations[n] = DefaultClipDuration
	}
	return NewMixerWithDurations(durations)
}

// NewMixerWithDurations returns a mixer with one action per clip, with the given lengths in seconds.
func NewMixerWithDurations(durations map[string]float64) *Mixer {
	m := &Mixer{actions: make(map[string]*Action, len(durations))}
	for name, d := range durations {
		m.actions[name] = &Action{
			mixer:     m,
			name:      name,
			duration:  d,
			weight:    1,
			timeScale: 1,
			loop:      animation.LoopRepeat,
			reps:      -1,
		}
	}
	return m
}

// Action implements animation.Mixer.
func (m *Mixer) Action(name string) (animation.Action, bool) {
	a, ok := m.FakeAction(name)
	if !ok {
		return nil, false
	}
	return a, true
}

// FakeAction returns the concrete action for name.
func (m *Mixer) FakeAction(name string) (*Action, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actions[name]
	return a, ok
}

// Names returns the sorted action names.
func (m *Mixer) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.actions))
	for n := range m.actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Update advances every running action by dt seconds.
func (m *Mixer) Update(dt float64) {
	if dt <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		a.update(dt)
	}
}

type fade struct {
	from, to float64
	elapsed  float64
	duration float64
}

func (f *fade) value() float64 {
	if f.duration <= 0 {
		return f.to
	}
	return utils.Lerp(f.from, f.to, utils.Clamp(f.elapsed/f.duration, 0, 1))
}

func (f *fade) done() bool {
	return f.elapsed >= f.duration
}

// Action is a clip's playback state.
type Action struct {
	mixer *Mixer

	name      string
	duration  float64
	time      float64
	weight    float64
	timeScale float64
	loop      animation.LoopMode
	reps      int
	clamp     bool

	enabled  bool
	running  bool
	paused   bool
	finished bool
	fading   *fade

	resets int
	plays  int
}

// Name returns the action name.
func (a *Action) Name() string {
	return a.name
}

// Play starts playback.
func (a *Action) Play() {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.enabled = true
	a.running = true
	a.plays++
}

// Stop halts playback.
func (a *Action) Stop() {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.stopLocked()
}

func (a *Action) stopLocked() {
	a.running = false
	a.enabled = false
	a.fading = nil
}

// Reset rewinds the action.
func (a *Action) Reset() {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.time = 0
	a.paused = false
	a.finished = false
	a.enabled = true
	a.fading = nil
	a.resets++
}

// IsRunning reports whether the action is playing and not paused on its last frame.
func (a *Action) IsRunning() bool {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.running && a.enabled && !a.paused
}

// Weight returns the effective weight.
func (a *Action) Weight() float64 {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.effectiveWeight()
}

func (a *Action) effectiveWeight() float64 {
	if !a.enabled || !a.running {
		return 0
	}
	if a.fading != nil {
		return a.weight * a.fading.value()
	}
	return a.weight
}

// SetWeight sets the base weight.
func (a *Action) SetWeight(weight float64) {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.weight = weight
}

// SetTimeScale sets the playback speed multiplier.
func (a *Action) SetTimeScale(scale float64) {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.timeScale = scale
}

// SetLoop sets the loop mode.
func (a *Action) SetLoop(mode animation.LoopMode, repetitions int) {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.loop = mode
	a.reps = repetitions
}

// SetClampWhenFinished sets whether the last frame is held when the clip ends.
func (a *Action) SetClampWhenFinished(clamp bool) {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.clamp = clamp
}

// FadeIn ramps the weight up from 0.
func (a *Action) FadeIn(seconds float64) {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.fading = &fade{from: 0, to: 1, duration: seconds}
}

// FadeOut ramps the weight down to 0 from its current effective value.
func (a *Action) FadeOut(seconds float64) {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	from := 1.0
	if a.weight > 0 {
		from = a.effectiveWeight() / a.weight
	}
	a.fading = &fade{from: from, to: 0, duration: seconds}
}

func (a *Action) update(dt float64) {
	if !a.running || !a.enabled {
		return
	}
	if a.fading != nil {
		a.fading.elapsed += dt
		if a.fading.done() {
			if a.fading.to == 0 {
				a.stopLocked()
				return
			}
			a.fading = nil
		}
	}
	if a.paused {
		return
	}
	a.time += dt * a.timeScale
	if a.duration <= 0 || a.time < a.duration {
		return
	}
	if a.loop == animation.LoopRepeat {
		for a.time >= a.duration {
			a.time -= a.duration
		}
		return
	}
	a.time = a.duration
	a.finished = true
	if a.clamp {
		a.paused = true
		return
	}
	a.enabled = false
}

// Time returns the local clip time in seconds.
func (a *Action) Time() float64 {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.time
}

// Loop returns the loop mode and repetitions.
func (a *Action) Loop() (animation.LoopMode, int) {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.loop, a.reps
}

// ClampWhenFinished reports whether the last frame is held.
func (a *Action) ClampWhenFinished() bool {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.clamp
}

// TimeScale returns the playback speed multiplier.
func (a *Action) TimeScale() float64 {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.timeScale
}

// Finished reports whether a non-repeating clip reached its end.
func (a *Action) Finished() bool {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.finished
}

// Fading reports whether a fade is in progress.
func (a *Action) Fading() bool {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.fading != nil
}

// Resets returns how many times Reset was called.
func (a *Action) Resets() int {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.resets
}

// Plays returns how many times Play was called.
func (a *Action) Plays() int {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.plays
}
