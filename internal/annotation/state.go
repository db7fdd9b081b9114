package annotation

import (
	"slices"

	"github.com/ironsheep/chiroplot-mcp/internal/landmarks"
)

// Workflow steps reported in State.WorkflowStep. The comparison variant
// passes through StepActual; single-line variants go from StepReference
// straight to done.
const (
	StepLoad      = 1
	StepReference = 2
	StepActual    = 3
)

// PhaseState is the read-only view of one phase.
type PhaseState struct {
	Phase        Phase   `json:"phase"`
	Points       []Point `json:"points"`
	LabelVisible []bool  `json:"label_visible"`
	Committed    bool    `json:"committed"`
}

// State is a snapshot of a session.
type State struct {
	SessionID     string           `json:"session_id"`
	Variant       string           `json:"variant"`
	Region        landmarks.Region `json:"region"`
	RequiredCount int              `json:"required_count"`
	ActivePhase   Phase            `json:"active_phase"`
	Phases        []PhaseState     `json:"phases"`

	// NextLandmark is the label the next PlacePoint would use, empty when
	// the active sequence is full or the session is done.
	NextLandmark string `json:"next_landmark,omitempty"`

	HasBitmap    bool `json:"has_bitmap"`
	BitmapWidth  int  `json:"bitmap_width,omitempty"`
	BitmapHeight int  `json:"bitmap_height,omitempty"`
	CanvasWidth  int  `json:"canvas_width"`
	CanvasHeight int  `json:"canvas_height"`

	WorkflowStep  int  `json:"workflow_step"`
	WorkflowSteps int  `json:"workflow_steps"`
	CanExport     bool `json:"can_export"`
}

// Snapshot returns the current state. Slices in the result are copies.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		SessionID:     s.id,
		Variant:       s.variant.Name,
		Region:        s.region,
		RequiredCount: s.registry.Count(s.region),
		ActivePhase:   s.phase,
		HasBitmap:     s.bitmap != nil,
		WorkflowStep:  s.workflowStepLocked(),
		WorkflowSteps: StepReference + s.variant.Phases,
		CanExport:     s.doneLocked(),
	}
	st.CanvasWidth, st.CanvasHeight = s.surface.Size()
	if s.bitmap != nil {
		st.BitmapWidth, st.BitmapHeight = s.bitmap.Width, s.bitmap.Height
	}
	for p := 0; p < s.variant.Phases; p++ {
		st.Phases = append(st.Phases, PhaseState{
			Phase:        Phase(p),
			Points:       slices.Clone(s.points[p]),
			LabelVisible: slices.Clone(s.visible[p]),
			Committed:    s.committed[p],
		})
	}
	if !st.CanExport {
		st.NextLandmark, _ = s.registry.Name(s.region, len(s.points[s.phase]))
	}
	return st
}

// workflowStepLocked is StepLoad until a required radiograph is loaded,
// then advances once per committed phase. The final value means done.
func (s *Session) workflowStepLocked() int {
	if s.variant.RequiresBitmap && s.bitmap == nil {
		return StepLoad
	}
	step := StepReference
	for p := 0; p < s.variant.Phases; p++ {
		if s.committed[p] {
			step++
		}
	}
	return step
}
