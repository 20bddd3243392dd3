package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/mymoney/output"
)

// slowThreshold marks operations rendered with a warning style.
const slowThreshold = 100 * time.Millisecond

// formatTimingTree writes one root and its descendants:
//
//	run input.txt: 3ms
//	├─ load input.txt: 1ms
//	└─ interpret 9 commands: 2ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Header(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.duration()))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	d := node.duration()
	timing := formatDuration(d)
	tree := prefix + branch
	if styles != nil {
		tree = styles.Muted(tree)
		timing = styles.Timing(timing, d >= slowThreshold)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, node.name, timing)

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
