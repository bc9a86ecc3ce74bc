package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobHistory_AddResult(t *testing.T) {
	h := &JobHistory{}

	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: fmt.Sprintf("run-%d", i), Success: true})
	}

	assert.Len(t, h.Results, 100, "history keeps only the last 100 results")
	assert.Equal(t, "run-149", h.Results[len(h.Results)-1].JobName)
	assert.Equal(t, "run-50", h.Results[0].JobName)
}

func TestJobHistory_GetLatestResults(t *testing.T) {
	h := &JobHistory{}
	h.AddResult(JobResult{JobName: "a"})
	h.AddResult(JobResult{JobName: "b"})
	h.AddResult(JobResult{JobName: "c"})

	latest := h.GetLatestResults(2)
	assert.Len(t, latest, 2)
	assert.Equal(t, "b", latest[0].JobName)
	assert.Equal(t, "c", latest[1].JobName)

	assert.Len(t, h.GetLatestResults(10), 3)
	assert.Empty(t, h.GetLatestResults(0))
}

func TestJobHistory_GetSuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})
	h.AddResult(JobResult{Success: true})

	assert.InDelta(t, 0.75, h.GetSuccessRate(), 1e-12)
}
