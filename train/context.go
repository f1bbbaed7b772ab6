package train

import "github.com/processcore/compressor/fluid"

// EvaluationContext holds the per-train state that must survive across
// consecutive operating-point evaluations: the last non-zero inlet stream
// seen at each stage index, used by the multi-stream train's recirculation
// mode when a stage's net rate computes to zero (spec §4.5). A train
// confines its EvaluationContext to the single goroutine evaluating it at
// any given time (spec §5).
type EvaluationContext struct {
	lastNonZeroInletStream map[int]*fluid.Stream
}

// NewEvaluationContext returns an empty context.
func NewEvaluationContext() *EvaluationContext {
	return &EvaluationContext{lastNonZeroInletStream: make(map[int]*fluid.Stream)}
}

func (c *EvaluationContext) recall(stageIndex int) (*fluid.Stream, bool) {
	s, ok := c.lastNonZeroInletStream[stageIndex]
	return s, ok
}

func (c *EvaluationContext) remember(stageIndex int, s *fluid.Stream) {
	c.lastNonZeroInletStream[stageIndex] = s
}

// Reset clears all cached recirculation state.
func (c *EvaluationContext) Reset() {
	c.lastNonZeroInletStream = make(map[int]*fluid.Stream)
}
