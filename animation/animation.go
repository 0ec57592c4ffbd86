// Package animation defines the clip playback surface the blend engine drives. Actions are
// owned by the host's animation mixer; the engine only plays, weights and crossfades them.
package animation

// LoopMode controls what an action does when its clip reaches the end.
type LoopMode int

const (
	// LoopOnce plays the clip a single time.
	LoopOnce LoopMode = iota
	// LoopRepeat restarts the clip from the beginning each time it ends.
	LoopRepeat
)

func (m LoopMode) String() string {
	switch m {
	case LoopOnce:
		return "once"
	case LoopRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// An Action is the playback state of one clip.
type Action interface {
	Name() string

	// Play starts or resumes playback.
	Play()
	// Stop halts playback and drops the action's influence.
	Stop()
	// Reset rewinds to the first frame and cancels any fade in progress.
	Reset()
	IsRunning() bool

	// Weight is the effective weight, including any fade in progress.
	Weight() float64
	SetWeight(weight float64)
	SetTimeScale(scale float64)
	SetLoop(mode LoopMode, repetitions int)
	// SetClampWhenFinished holds the last frame instead of disabling the action when a
	// non-repeating clip ends.
	SetClampWhenFinished(clamp bool)

	// FadeIn ramps the weight from 0 to 1 over the given number of seconds.
	FadeIn(seconds float64)
	// FadeOut ramps the weight from its current value to 0 over the given number of seconds.
	FadeOut(seconds float64)
}

// A Mixer resolves actions by clip name and advances them.
type Mixer interface {
	Action(name string) (Action, bool)
	Update(dt float64)
}
