// Package render draws a terminal dashboard of mailbox occupancy across an
// actormesh.System: a grayscale-density-to-character mapping and truecolor
// ANSI escapes, applied to load ratios.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kestrelcore/actormesh"
	"github.com/lguibr/asciiring/helpers"
)

// loadChars are ordered lightest to darkest, used as an occupancy ramp.
const loadChars = " .,:;i1tfLCG08@"

// barWidth is the number of characters a mailbox's load bar occupies.
const barWidth = 24

// ClearScreen clears the terminal before a redraw.
func ClearScreen() {
	helpers.ClearScreen()
}

// ratioToChar maps an occupancy ratio in [0,1] to a density character.
func ratioToChar(ratio float64) byte {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	idx := int(ratio * float64(len(loadChars)-1))
	return loadChars[idx]
}

// ratioToAnsi picks a truecolor escape for ratio, green at 0, red at 1.
func ratioToAnsi(ratio float64) string {
	r := uint8(255 * ratio)
	g := uint8(255 * (1 - ratio))
	return fmt.Sprintf("\033[38;2;%d;%d;0m", r, g)
}

// Bar renders one MailboxLoad as a fixed-width, color-graded density bar:
// the path left-aligned in 40 columns, then barWidth cells wrapped in ANSI
// color escapes, then depth/capacity. A depth of 6 in a capacity of 24
// fills 6 cells with ':' and leaves 18 blank: "[::::::                  ] 6/24".
func Bar(load actormesh.MailboxLoad) string {
	ratio := 0.0
	if load.Capacity > 0 {
		ratio = float64(load.Depth) / float64(load.Capacity)
	}
	filled := int(ratio * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	var b strings.Builder
	ansi := ratioToAnsi(ratio)
	ch := ratioToChar(ratio)
	b.WriteString(ansi)
	for i := 0; i < barWidth; i++ {
		if i < filled {
			b.WriteByte(ch)
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString("\033[0m")

	return fmt.Sprintf("%-40s [%s] %d/%d", load.Address.Path, b.String(), load.Depth, load.Capacity)
}

// Render draws every local actor's mailbox load, busiest first.
func Render(sys *actormesh.System) string {
	loads := sys.MailboxLoads()
	sort.Slice(loads, func(i, j int) bool { return loads[i].Depth > loads[j].Depth })

	var out strings.Builder
	out.WriteString("ACTORMESH DASHBOARD\n")
	stats := sys.GetSystemStats()
	out.WriteString(fmt.Sprintf("actors=%d pending-asks=%d dead-letters=%d\n\n",
		stats.ActorCount, stats.PendingAsks, stats.DeadLetters.Size))
	for _, l := range loads {
		out.WriteString(Bar(l))
		out.WriteString("\n")
	}
	return out.String()
}
