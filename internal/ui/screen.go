// ABOUTME: Player screen rendering
// ABOUTME: Draws filename, metadata, transport status and level meters with ANSI
package ui

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Fallback dimensions when the terminal size is unknown
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

const (
	clearScreen = "\x1b[2J\x1b[H"
	clearLine   = "\x1b[2K"

	// Rows above the metadata and below it (status, blank, two meters)
	headerRows = 2
	footerRows = 4
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	meterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	peakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// metadataOrder lists keys shown before the rest, which follow alphabetically
var metadataOrder = []string{"title", "artist", "album", "date", "genre", "format"}

// Status is the transport line below the metadata
type Status struct {
	Paused  bool
	Volume  int // percent
	Elapsed mo.Option[time.Duration]
	Total   time.Duration
}

// Screen renders the player into a terminal. Output is buffered until
// Flush. Lines end in \r\n since raw mode turns off output processing.
type Screen struct {
	out      *bufio.Writer
	width    int
	height   int
	metaRows int
}

// NewScreen creates a screen writing to out
func NewScreen(out io.Writer) *Screen {
	return &Screen{
		out:    bufio.NewWriter(out),
		width:  DefaultWidth,
		height: DefaultHeight,
	}
}

// SetSize sets the terminal dimensions used for layout
func (s *Screen) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	s.width, s.height = width, height
}

// Size returns the layout dimensions
func (s *Screen) Size() (int, int) {
	return s.width, s.height
}

// ResetScreen clears the terminal
func (s *Screen) ResetScreen() {
	s.out.WriteString(clearScreen)
	s.metaRows = 0
}

// DisplayFilename shows the file being played on the first row
func (s *Screen) DisplayFilename(path string) {
	s.line(1, titleStyle.Render(truncate("♪ "+path, s.width)))
}

// DisplayMetadata lists metadata below the filename, as many entries as
// fit above the status and meters
func (s *Screen) DisplayMetadata(metadata map[string]string) {
	keys := sortedKeys(metadata)
	room := max(s.height-headerRows-footerRows-1, 0)
	if len(keys) > room {
		keys = keys[:room]
	}

	for i, key := range keys {
		label := labelStyle.Render(fmt.Sprintf("%-8s", titleCase(key)+":"))
		value := truncate(metadata[key], max(s.width-12, 4))
		s.line(headerRows+1+i, "  "+label+" "+value)
	}
	s.metaRows = len(keys)
}

// DisplayStatus shows play state, elapsed and total time, and volume
func (s *Screen) DisplayStatus(status Status) {
	state := "▶ playing"
	if status.Paused {
		state = pausedStyle.Render("⏸ paused")
	}

	clock := "--:--"
	if d, ok := status.Elapsed.Get(); ok {
		clock = formatDuration(d)
	}

	text := fmt.Sprintf("%s  %s / %s  vol %d%%",
		state, clock, formatDuration(status.Total), status.Volume)
	s.line(s.statusRow(), text)
}

// DisplayMeter draws left and right average levels in [0, 1]
func (s *Screen) DisplayMeter(levels [2]float32) {
	width := max(s.width-6, 10)
	for i, name := range []string{"L", "R"} {
		s.line(s.statusRow()+2+i, fmt.Sprintf("%s %s", name, renderMeter(levels[i], width)))
	}
}

// Flush writes buffered output to the terminal
func (s *Screen) Flush() error {
	return s.out.Flush()
}

func (s *Screen) statusRow() int {
	return headerRows + 1 + s.metaRows + 1
}

// line replaces the contents of a 1-based row
func (s *Screen) line(row int, text string) {
	if row > s.height {
		return
	}
	fmt.Fprintf(s.out, "\x1b[%d;1H%s%s\r\n", row, clearLine, text)
}

func sortedKeys(metadata map[string]string) []string {
	keys := lo.Filter(lo.Keys(metadata), func(k string, _ int) bool {
		return metadata[k] != ""
	})
	slices.SortFunc(keys, func(a, b string) int {
		ia, ib := slices.Index(metadataOrder, a), slices.Index(metadataOrder, b)
		switch {
		case ia >= 0 && ib >= 0:
			return ia - ib
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return keys
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderMeter draws a level bar, highlighted when close to clipping
func renderMeter(level float32, width int) string {
	level = lo.Clamp(level, 0, 1)
	bar := renderBar(int(level*1000), 1000, width)
	if level > 0.9 {
		return peakStyle.Render(bar)
	}
	return meterStyle.Render(bar)
}

func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := lo.Clamp((value*width)/max, 0, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// truncate shortens s to fit width display cells
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	sec := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
