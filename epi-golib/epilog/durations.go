package epilog

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"
)

// Step is a named, timed stage of a run.
type Step struct {
	Name string
	Took time.Duration
}

// Durations collects step timings in the order they completed, e.g. metadata
// loading then signal loading then the fold split.
type Durations []Step

// Record appends a step.
func (d *Durations) Record(name string, took time.Duration) {
	*d = append(*d, Step{Name: name, Took: took})
}

// Since records the time elapsed since start for the named step.
func (d *Durations) Since(name string, start time.Time) {
	d.Record(name, time.Since(start))
}

// Get returns the latest timing for the named step.
func (d Durations) Get(name string) (time.Duration, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Name == name {
			return d[i].Took, true
		}
	}
	return 0, false
}

// Total sums all recorded steps.
func (d Durations) Total() time.Duration {
	var total time.Duration
	for _, s := range d {
		total += s.Took
	}
	return total
}

// Flush logs one line per step with its share of the total, then clears the steps.
func (d *Durations) Flush(out Interface) {
	if len(*d) == 0 {
		return
	}
	total := d.Total()

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, s := range *d {
		share := 0.
		if total > 0 {
			share = 100 * float64(s.Took) / float64(total)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t\n", s.Name, s.Took.Round(time.Millisecond), share)
	}
	fmt.Fprintf(tw, "total\t%s\t\t\n", total.Round(time.Millisecond))
	tw.Flush()

	out.Println("durations:\n" + buf.String())
	*d = nil
}

// WithDurations returns a copy of l with its own empty Durations.
func (l *Logger) WithDurations() *Logger {
	derived := *l
	derived.Durations = nil
	return &derived
}
