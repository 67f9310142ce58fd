package reembed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReportsAtInterval(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 100, 10)
	tracker.Start()

	tracker.Update(5)
	assert.Empty(t, out.String())

	tracker.Update(10)
	assert.Contains(t, out.String(), "10/100")
}

func TestProgressFinishCapsAtTotal(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 50, 10)
	tracker.Start()

	tracker.Increment(200)
	tracker.Finish()

	assert.Contains(t, out.String(), "50/50")
	assert.Contains(t, out.String(), "100.0%")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestProgressIgnoredBeforeStart(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 10, 1)

	tracker.Update(5)
	tracker.Finish()
	assert.Empty(t, out.String())
	assert.Zero(t, tracker.Elapsed())
}
