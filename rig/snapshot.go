package rig

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/armrig/blend"
	"go.viam.com/armrig/referenceframe"
	"go.viam.com/armrig/utils"
)

// JointState is one joint's angle at the time of a snapshot.
type JointState struct {
	Name  string
	Angle float64
	Limit *referenceframe.Limit
}

// Snapshot is a point-in-time view of a rig.
type Snapshot struct {
	Frame   uint64
	Elapsed float64

	HasChain    bool
	Joints      []JointState
	Target      r3.Vector
	EndEffector r3.Vector
	Distance    float64
	Converged   bool

	HasBlend bool
	Mode     blend.Mode
	Signal   blend.Signal
	Active   blend.ClipName
	Weights  blend.Weights
}

// Snapshot captures the rig between ticks.
func (r *Rig) Snapshot() Snapshot {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	s := Snapshot{Frame: r.frames, Elapsed: r.elapsed, Signal: r.signal.Load()}
	if chain := r.currentChain(); chain != nil {
		s.HasChain = true
		for _, j := range chain.Joints() {
			s.Joints = append(s.Joints, JointState{Name: j.Name(), Angle: j.Angle(), Limit: j.Limit()})
		}
		s.Target = chain.Target()
		s.EndEffector = chain.EndEffector()
		s.Distance = chain.Distance()
		s.Converged = chain.Converged()
	}
	if engine := r.currentEngine(); engine != nil {
		s.HasBlend = true
		s.Mode = engine.Mode()
		s.Active = engine.Active()
		s.Weights = engine.Weights()
	}
	return s
}

// Angles returns the joint angles as inputs, root first.
func (s Snapshot) Angles() []referenceframe.Input {
	angles := make([]referenceframe.Input, len(s.Joints))
	for i, j := range s.Joints {
		angles[i] = referenceframe.Input{Value: j.Angle}
	}
	return angles
}

// Table renders the snapshot as text tables: one of joints and one of clip weights.
func (s Snapshot) Table() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "frame %d at %.3fs\n", s.Frame, s.Elapsed)

	if s.HasChain {
		t := table.NewWriter()
		t.SetTitle(fmt.Sprintf("target %s, end effector %s, distance %.3f", formatVector(s.Target),
			formatVector(s.EndEffector), s.Distance))
		t.AppendHeader(table.Row{"#", "Joint", "Angle (deg)", "Limit (deg)"})
		for i, j := range s.Joints {
			limit := "none"
			if j.Limit != nil {
				limit = fmt.Sprintf("[%.1f, %.1f]", utils.RadToDeg(j.Limit.Min), utils.RadToDeg(j.Limit.Max))
			}
			t.AppendRow(table.Row{i, j.Name, fmt.Sprintf("%.2f", utils.RadToDeg(j.Angle)), limit})
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}

	if s.HasBlend {
		t := table.NewWriter()
		t.SetTitle(fmt.Sprintf("%s blend, signal (%.2f, %.2f)", s.Mode, s.Signal.X, s.Signal.Y))
		t.AppendHeader(table.Row{"Clip", "Weight", "Active"})
		for _, c := range blend.AllClips {
			active := ""
			if c == s.Active {
				active = "*"
			}
			t.AppendRow(table.Row{c, fmt.Sprintf("%.3f", s.Weights.Of(c)), active})
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}
