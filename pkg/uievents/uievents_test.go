package uievents

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := FromFuzzer{ReportEvent: &EventMessage{Event: "new", Stats: "pool=3", TimeMs: 42}}
	require.NoError(t, WriteMessage(&buf, msg))

	var got FromFuzzer
	require.NoError(t, ReadMessage(&buf, &got))
	require.NotNil(t, got.ReportEvent)
	assert.Equal(t, "new", got.ReportEvent.Event)
	assert.Equal(t, int64(42), got.ReportEvent.TimeMs)
}

func TestReadMessageRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	var got FromFuzzer
	err := ReadMessage(&buf, &got)
	assert.Error(t, err)
}
