package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/mymoney/output"
)

// TimingCollector builds a tree of timed operations.
type TimingCollector struct {
	mu      sync.Mutex
	roots   []*timerNode
	current *timerNode

	now func() time.Time
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *timerNode
	children []*timerNode
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return 0
	}
	return n.end.Sub(n.start)
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{now: time.Now}
}

// Start begins timing an operation under the innermost running timer.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now(), parent: c.current}
	if c.current == nil {
		c.roots = append(c.roots, node)
	} else {
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &timingTimer{collector: c, node: node}
}

// Report writes the timing tree. Nothing is written if no timer was started.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTimingTree(w, root, styles)
	}
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

// End stops the timer and makes its parent the innermost running timer.
func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if !t.node.end.IsZero() {
		return
	}
	t.node.end = t.collector.now()
	if t.collector.current == t.node {
		t.collector.current = t.node.parent
	}
}

// Child starts a timer nested directly under this one.
func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{name: name, start: t.collector.now(), parent: t.node}
	t.node.children = append(t.node.children, node)
	t.collector.current = node

	return &timingTimer{collector: t.collector, node: node}
}
