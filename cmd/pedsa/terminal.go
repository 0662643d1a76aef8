package main

import "github.com/containerd/console"

const defaultTerminalWidth = 80

// terminalWidth returns the current terminal's column width, falling
// back to defaultTerminalWidth when stdout isn't a tty (pipes, CI logs).
func terminalWidth() int {
	c := console.Current()
	size, err := c.Size()
	if err != nil || size.Width == 0 {
		return defaultTerminalWidth
	}
	return int(size.Width)
}

// minMetricColWidth widens the stats table's label column on wide
// terminals so values stay aligned past long metric names.
func minMetricColWidth(termWidth int) int {
	if termWidth >= 100 {
		return 24
	}
	return 16
}
