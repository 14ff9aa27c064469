package notify

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/marquee/internal/datatable"
)

func TestQueueDrain(t *testing.T) {
	q := NewQueue()
	q.Notify(datatable.Toast{Level: datatable.LevelInfo, Message: "one"})
	q.Notify(datatable.Toast{Level: datatable.LevelError, Message: "two"})
	assert.Equal(t, 2, q.Len())

	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Message)
	assert.Equal(t, "two", got[1].Message)
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Drain())
}

func TestConsole(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Notify(datatable.Toast{Level: datatable.LevelWarning, Title: "Nothing to export", Message: "select rows first"})
	c.Notify(datatable.Toast{Level: datatable.LevelSuccess, Message: "done"})

	assert.Equal(t, "Nothing to export: select rows first\ndone\n", buf.String())
}

func TestLogAndMulti(t *testing.T) {
	logger, hook := test.NewNullLogger()
	q := NewQueue()
	m := Multi{q, NewLog(logger)}

	m.Notify(datatable.Toast{Level: datatable.LevelError, Title: "Something went wrong", Message: "boom"})

	assert.Equal(t, 1, q.Len())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "boom", hook.LastEntry().Message)
	assert.Equal(t, "error", hook.LastEntry().Data["toast"])
}
