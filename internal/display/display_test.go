package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faculty-desk-unit/internal/render"
)

func TestConsoleSink_InitRequiresWriter(t *testing.T) {
	assert.Error(t, NewConsoleSink(nil, 20).Init())

	var buf bytes.Buffer
	assert.NoError(t, NewConsoleSink(&buf, 20).Init())
}

func TestConsoleSink_ApplyWritesFrame(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 20)

	err := sink.Apply(render.Frame{
		Name:         "Dr. Grace Hopper",
		Department:   "Computer Science",
		StatusLabel:  "AVAILABLE",
		NetworkGlyph: "*",
		BrokerGlyph:  "!",
		QueueSummary: "Request 1 of 2",
		Requester:    "Ada Lovelace",
		BodyPreview:  []string{"first line", "second line"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Dr. Grace Hopper")
	assert.Contains(t, out, "AVAILABLE  [net *] [mq !]")
	assert.Contains(t, out, "Request 1 of 2")
	assert.Contains(t, out, "second line")
}

func TestConsoleSink_ApplySkipsEmptyRequester(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 20)

	require.NoError(t, sink.Apply(render.Frame{
		StatusLabel:  "UNAVAILABLE",
		NetworkGlyph: "!",
		BrokerGlyph:  "!",
		QueueSummary: "No pending requests",
	}))

	assert.Contains(t, buf.String(), "No pending requests")
}
