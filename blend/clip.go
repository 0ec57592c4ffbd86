// Package blend maps a 2D pointer signal onto weights over a fixed set of directional pose
// clips, either by continuously blending all of them or by crossfading between one at a time.
package blend

import (
	"strings"

	"github.com/pkg/errors"
)

// ClipName is one of the five directional clips.
type ClipName int

// The directional clips. Idle is the neutral pose held inside the dead zone.
const (
	TopLeft ClipName = iota
	TopRight
	BottomLeft
	BottomRight
	Idle

	// NumClips is the number of clips.
	NumClips = int(Idle) + 1
)

// AllClips lists every clip in index order.
var AllClips = [NumClips]ClipName{TopLeft, TopRight, BottomLeft, BottomRight, Idle}

var clipNames = [NumClips]string{"TopLeft", "TopRight", "BottomLeft", "BottomRight", "Idle"}

func (c ClipName) String() string {
	if c < 0 || int(c) >= NumClips {
		return "Unknown"
	}
	return clipNames[c]
}

// ParseClipName parses a clip name case-insensitively.
func ParseClipName(s string) (ClipName, error) {
	for i, n := range clipNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return ClipName(i), nil
		}
	}
	return 0, errors.Errorf("unknown clip %q, expected one of %s", s, strings.Join(clipNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (c ClipName) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClipName) UnmarshalText(text []byte) error {
	parsed, err := ParseClipName(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
