// Package speech holds the output side of narration: sinks that receive
// announcements and either record or print them.
package speech

import (
	"fmt"
	"io"
	"time"
)

// Utterance is one announcement handed to a speech channel.
type Utterance struct {
	At        time.Duration `json:"at"`
	Text      string        `json:"text"`
	Interrupt bool          `json:"interrupt,omitempty"`
}

// Sink accepts announcements. Interrupting speech preempts anything in
// progress; the rest is queued.
type Sink interface {
	Speak(text string, interrupt bool)
}

// Recorder keeps every utterance in arrival order.
type Recorder struct {
	now        func() time.Duration
	Utterances []Utterance
}

// NewRecorder stamps utterances with now; nil means zero timestamps.
func NewRecorder(now func() time.Duration) *Recorder {
	if now == nil {
		now = func() time.Duration { return 0 }
	}
	return &Recorder{now: now}
}

func (r *Recorder) Speak(text string, interrupt bool) {
	r.Utterances = append(r.Utterances, Utterance{At: r.now(), Text: text, Interrupt: interrupt})
}

// Texts returns just the spoken strings.
func (r *Recorder) Texts() []string {
	out := make([]string, len(r.Utterances))
	for i, u := range r.Utterances {
		out[i] = u.Text
	}
	return out
}

// Interrupts counts interrupting utterances.
func (r *Recorder) Interrupts() int {
	n := 0
	for _, u := range r.Utterances {
		if u.Interrupt {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() { r.Utterances = nil }

// Console prints announcements, one per line. Interrupts are marked with
// a leading "! ".
type Console struct {
	W   io.Writer
	Now func() time.Duration
}

func (c *Console) Speak(text string, interrupt bool) {
	mark := " "
	if interrupt {
		mark = "!"
	}
	if c.Now != nil {
		fmt.Fprintf(c.W, "[%6.2fs] %s %s\n", c.Now().Seconds(), mark, text)
		return
	}
	fmt.Fprintf(c.W, "%s %s\n", mark, text)
}

// Tee fans announcements out to several sinks.
type Tee []Sink

func (t Tee) Speak(text string, interrupt bool) {
	for _, s := range t {
		if s != nil {
			s.Speak(text, interrupt)
		}
	}
}
