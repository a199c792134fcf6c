package notifier

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/pfrederiksen/motogp-ics/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(name string) *event.Record {
	return &event.Record{
		Name:        name,
		Location:    "Circuito de Jerez",
		Description: "2024-04-26T09:45:00+0200 FP1 A\n2024-04-28T14:00:00+0200 Race A",
	}
}

func TestFormat(t *testing.T) {
	got := Format(testRecord("MotoGP Spanish GP (A)"))

	assert.Equal(t, "MotoGP Spanish GP (A)\n"+
		"Circuit: Circuito de Jerez\n"+
		"Schedule:\n"+
		"2024-04-26T09:45:00+0200 FP1 A\n"+
		"2024-04-28T14:00:00+0200 Race A\n"+
		strings.Repeat("-", 46)+"\n", got)
}

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)

	require.NoError(t, n.Notify(testRecord("first")))
	require.NoError(t, n.Notify(testRecord("second")))

	assert.Equal(t, Format(testRecord("first"))+Format(testRecord("second")), buf.String())
}

func TestConsoleNotifierConcurrent(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Notify(testRecord("event"))
		}()
	}
	wg.Wait()

	assert.Equal(t, strings.Repeat(Format(testRecord("event")), 10), buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestConsoleNotifierWriteError(t *testing.T) {
	assert.Error(t, NewConsoleNotifier(failingWriter{}).Notify(testRecord("x")))
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Notify(testRecord("x")))
}
