package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/armrig/blend"
	"go.viam.com/armrig/kinematics"
	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/spatialmath"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.Driver.FPS, test.ShouldEqual, DefaultFPS)
	test.That(t, cfg.Chain, test.ShouldResemble, kinematics.DefaultChainConfig())
	test.That(t, cfg.Blend, test.ShouldResemble, blend.DefaultConfig())
	level, err := cfg.Level()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, logging.INFO)
}

func TestReadExampleConfig(t *testing.T) {
	t.Setenv("ARMRIG_LOG_LEVEL", "debug")
	cfg, err := Read(filepath.Join("..", "etc", "configs", "arm.json5"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEndWith, "arm.json5")

	test.That(t, cfg.Chain.Joints, test.ShouldHaveLength, 5)
	test.That(t, cfg.Chain.Joints[1].Axis, test.ShouldEqual, spatialmath.AxisZ)
	test.That(t, cfg.Chain.Joints[1].Limit.Max, test.ShouldEqual, 1.22)
	test.That(t, cfg.Chain.Joints[4].Oscillation.Wave, test.ShouldEqual, kinematics.WaveCos)
	test.That(t, *cfg.Chain.InitialTarget, test.ShouldResemble, r3.Vector{Y: 2, Z: 2})
	test.That(t, cfg.Chain.Smoothing, test.ShouldEqual, kinematics.SmoothingExponential)

	test.That(t, cfg.Blend.Mode, test.ShouldEqual, blend.ModeDiscrete)
	test.That(t, cfg.Blend.RadialDeadZone, test.ShouldBeTrue)
	test.That(t, cfg.Blend.LerpSpeed, test.ShouldEqual, blend.DefaultLerpSpeed)

	level, err := cfg.Level()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, logging.DEBUG)
}

func TestFromReader(t *testing.T) {
	cfg, err := FromReader("", strings.NewReader(`{
		// only a blend set
		blend: { mode: "continuous", lerp_speed: 5 },
	}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Chain, test.ShouldBeNil)
	test.That(t, cfg.Blend.LerpSpeed, test.ShouldEqual, 5.0)
	test.That(t, cfg.Blend.DeadZone, test.ShouldEqual, blend.DefaultDeadZone)
	test.That(t, cfg.Driver.FPS, test.ShouldEqual, DefaultFPS)

	for _, tc := range []struct {
		name   string
		input  string
		errStr string
	}{
		{"syntax", `{ blend: `, "failed to decode Config"},
		{"empty", `{}`, "must enable a chain, a blend set, or both"},
		{"blend", `{ blend: { mode: "jumpy" } }`, `error validating "blend"`},
		{"chain", `{ chain: { end_effector: "hand" } }`, `"joints" is required`},
		{"fps", `{ blend: {}, driver: { fps: -1 } }`, `error validating "driver"`},
		{"level", `{ blend: {}, log_level: "loud" }`, `error validating "log_level"`},
		{"axis", `{ chain: { end_effector: "h", joints: [{ name: "a", axis: "q" }] } }`, `unknown axis "q"`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("test.json5", strings.NewReader(tc.input))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errStr)
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json5"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestDecodeAttributes(t *testing.T) {
	cfg, err := DecodeAttributes(map[string]interface{}{
		"chain": map[string]interface{}{
			"end_effector":   "hand",
			"initial_target": map[string]interface{}{"x": 1, "y": "2", "z": 3.5},
			"smoothing":      "spring",
			"joints": []interface{}{
				map[string]interface{}{
					"name":  "shoulder",
					"axis":  "Z",
					"plane": "sagittal",
					"gain":  "0.8",
					"limit": map[string]interface{}{"min": -1.22, "max": 1.22},
				},
			},
		},
		"blend": map[string]interface{}{
			"mode":      "discrete",
			"dead_zone": 0.2,
			"clips":     map[string]interface{}{"Idle": "rest"},
		},
		"driver": map[string]interface{}{"fps": "30"},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Chain.Joints[0].Axis, test.ShouldEqual, spatialmath.AxisZ)
	test.That(t, cfg.Chain.Joints[0].Gain, test.ShouldEqual, 0.8)
	test.That(t, cfg.Chain.Joints[0].Rate, test.ShouldEqual, kinematics.DefaultJointRate)
	test.That(t, cfg.Chain.Smoothing, test.ShouldEqual, kinematics.SmoothingSpring)
	test.That(t, *cfg.Chain.InitialTarget, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3.5})
	test.That(t, cfg.Blend.ActionName(blend.Idle), test.ShouldEqual, "rest")
	test.That(t, cfg.Driver.FPS, test.ShouldEqual, 30.0)

	_, err = DecodeAttributes(map[string]interface{}{
		"chain": map[string]interface{}{
			"end_effector": "hand",
			"joints":       []interface{}{map[string]interface{}{"name": "a", "axis": "up"}},
		},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown axis "up"`)
}
