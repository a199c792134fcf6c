package notifier

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pfrederiksen/motogp-ics/internal/event"
)

// Separator ends each progress block.
var Separator = strings.Repeat("-", 46)

// Notifier receives every accepted record.
type Notifier interface {
	Notify(rec *event.Record) error
}

type discard struct{}

func (discard) Notify(*event.Record) error { return nil }

// Discard drops all notifications.
var Discard Notifier = discard{}

// ConsoleNotifier writes a progress block per record. It is safe for
// concurrent use; blocks are never interleaved.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier creates a notifier writing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Notify prints rec.
func (n *ConsoleNotifier) Notify(rec *event.Record) error {
	block := Format(rec)

	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := io.WriteString(n.out, block)
	return err
}

// Format renders the progress block for rec.
func Format(rec *event.Record) string {
	return fmt.Sprintf("%s\nCircuit: %s\nSchedule:\n%s\n%s\n",
		rec.Name, rec.Location, rec.Description, Separator)
}
