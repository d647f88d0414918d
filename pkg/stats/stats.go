// Package stats records how many probes each phase of a solve spends and how
// quickly the candidate sets shrink.
//
// A Trace belongs to one solve session. A Collector merges the traces of a
// batch, exports them as Prometheus metrics on a private registry, and prints
// the end-of-run report.
package stats

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
)

// Phase is a stage of the solve protocol.
type Phase int

const (
	PhaseLength Phase = iota
	PhaseSpaces
	PhaseWord1
	PhaseWord2
	PhaseWord3
	PhasePhrase
	PhaseConfirm

	numPhases
)

var phaseNames = [numPhases]string{"Length", "Spaces", "Word1", "Word2", "Word3", "Phrase", "Confirm"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Phases lists every phase in protocol order.
func Phases() []Phase {
	ps := make([]Phase, numPhases)
	for i := range ps {
		ps[i] = Phase(i)
	}
	return ps
}

const (
	// NumSlots is the number of candidate sets tracked per solve: the reduced
	// corpus, the three word slots and the phrase corpus.
	NumSlots = 5
	// MaxAttempts bounds the attempts per slot whose sizes are kept.
	MaxAttempts = 50
)

// Slot names a tracked candidate set.
const (
	SlotReduced = 0
	SlotWord1   = 1
	SlotWord2   = 2
	SlotWord3   = 3
	SlotPhrase  = 4
)

var slotNames = [NumSlots]string{"reduced", "word1", "word2", "word3", "phrase"}

// Trace is the record of one solve session.
type Trace struct {
	probes [numPhases]int
	sizes  [NumSlots][]int
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// AddProbe counts one probe in the given phase.
func (t *Trace) AddProbe(p Phase) {
	t.probes[p]++
}

// Probes returns the number of probes spent in phase p.
func (t *Trace) Probes(p Phase) int {
	return t.probes[p]
}

// Total returns the number of probes spent solving, not counting
// confirmation.
func (t *Trace) Total() int {
	n := 0
	for p, c := range t.probes {
		if Phase(p) != PhaseConfirm {
			n += c
		}
	}
	return n
}

// RecordSize records the size of a slot's candidate set before the given
// attempt. Attempts past MaxAttempts are dropped.
func (t *Trace) RecordSize(slot, attempt, size int) {
	if slot < 0 || slot >= NumSlots || attempt < 0 || attempt >= MaxAttempts {
		return
	}
	for len(t.sizes[slot]) <= attempt {
		t.sizes[slot] = append(t.sizes[slot], 0)
	}
	t.sizes[slot][attempt] = size
}

// Sizes returns the recorded sizes of a slot, by attempt.
func (t *Trace) Sizes(slot int) []int {
	return t.sizes[slot]
}

func (t *Trace) String() string {
	var parts []string
	for _, p := range Phases() {
		parts = append(parts, fmt.Sprintf("%s=%d", p, t.probes[p]))
	}
	return fmt.Sprintf("%s total=%d", strings.Join(parts, " "), t.Total())
}

// Collector aggregates the traces of a batch. It is safe for concurrent use.
type Collector struct {
	registry   *prometheus.Registry
	probes     *prometheus.CounterVec
	solves     *prometheus.CounterVec
	corpusSize *prometheus.HistogramVec

	mu         sync.Mutex
	phrases    int
	failures   int
	phaseTotal [numPhases]int
	sizeSum    [NumSlots][MaxAttempts]int
	sizeCount  [NumSlots][MaxAttempts]int
}

// NewCollector returns a Collector with its metrics registered on a fresh
// registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phrasefinder",
			Name:      "probes_total",
			Help:      "Oracle probes issued, by solve phase.",
		}, []string{"phase"}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phrasefinder",
			Name:      "solves_total",
			Help:      "Solve sessions, by outcome.",
		}, []string{"outcome"}),
		corpusSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "phrasefinder",
			Name:      "corpus_size",
			Help:      "Candidate set size before each attempt, by slot.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"slot"}),
	}
	c.registry.MustRegister(c.probes, c.solves, c.corpusSize)
	return c
}

// WriteMetrics writes the collector's metrics to path in the Prometheus text
// format, for the node exporter's textfile collector.
func (c *Collector) WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// Add merges a finished session. Failed sessions count towards the failure
// total only.
func (c *Collector) Add(t *Trace, err error) {
	if err != nil || t == nil {
		c.solves.WithLabelValues("failure").Inc()
		c.mu.Lock()
		c.failures++
		c.mu.Unlock()
		return
	}
	c.solves.WithLabelValues("success").Inc()

	for _, p := range Phases() {
		if n := t.probes[p]; n > 0 {
			c.probes.WithLabelValues(p.String()).Add(float64(n))
		}
	}
	for slot, sizes := range t.sizes {
		for _, size := range sizes {
			c.corpusSize.WithLabelValues(slotNames[slot]).Observe(float64(size))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.phrases++
	for p, n := range t.probes {
		c.phaseTotal[p] += n
	}
	for slot, sizes := range t.sizes {
		for attempt, size := range sizes {
			c.sizeSum[slot][attempt] += size
			c.sizeCount[slot][attempt]++
		}
	}
}

// Phrases returns the number of solved phrases merged so far.
func (c *Collector) Phrases() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phrases
}

// Failures returns the number of failed sessions merged so far.
func (c *Collector) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

// PhaseTotal returns the probes spent in phase p across all solved phrases.
func (c *Collector) PhaseTotal(p Phase) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phaseTotal[p]
}

// AverageSizes returns, per attempt, the mean candidate set size of a slot.
func (c *Collector) AverageSizes(slot int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var avg []float64
	for attempt := 0; attempt < MaxAttempts && c.sizeCount[slot][attempt] > 0; attempt++ {
		avg = append(avg, float64(c.sizeSum[slot][attempt])/float64(c.sizeCount[slot][attempt]))
	}
	return avg
}

// Report writes the per-phase probe counts and the average candidate set
// sizes.
func (c *Collector) Report(w io.Writer) error {
	c.mu.Lock()
	phrases, failures, totals := c.phrases, c.failures, c.phaseTotal
	c.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Phrases solved: %s, failed: %s\n",
		humanize.Comma(int64(phrases)), humanize.Comma(int64(failures)))

	total := 0
	for _, p := range Phases() {
		n := totals[p]
		if p != PhaseConfirm {
			total += n
		}
		fmt.Fprintf(&sb, "%-8s %12s %8s\n", p, humanize.Comma(int64(n)), average(n, phrases))
	}
	fmt.Fprintf(&sb, "%-8s %12s %8s\n", "TOTAL", humanize.Comma(int64(total)), average(total, phrases))

	for slot := 0; slot < NumSlots; slot++ {
		sizes := c.AverageSizes(slot)
		if len(sizes) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%-8s", slotNames[slot])
		for _, s := range sizes {
			fmt.Fprintf(&sb, " %s", humanize.CommafWithDigits(s, 1))
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func average(n, count int) string {
	if count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(n)/float64(count))
}
