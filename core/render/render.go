/*
The render pkg has kmeans.Renderer implementations for terminals: Scatter draws
each step as a coloured scatter plot (lipgloss), JSONLines writes one JSON
object per step for piping.
*/
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kmviz/pkg/kmeans"
)

const (
	pointRune      = '•'
	unassignedRune = '·'
	centroidRune   = '×'
	legendRune     = "■"
)

// Palette is cycled through by cluster index.
var Palette = []lipgloss.Color{
	lipgloss.Color("#00ff9f"),
	lipgloss.Color("#ff5f87"),
	lipgloss.Color("#5fafff"),
	lipgloss.Color("#ffd75f"),
	lipgloss.Color("#af87ff"),
	lipgloss.Color("#ff875f"),
	lipgloss.Color("#5fd7d7"),
	lipgloss.Color("#d7d7d7"),
}

// Scatter renders snapshots as a scatter plot. Create with NewScatter.
type Scatter struct {
	w io.Writer
	// Plot area in cells.
	width  int
	height int

	r      *lipgloss.Renderer
	border lipgloss.Style
	dim    lipgloss.Style
	title  lipgloss.Style
}

// NewScatter creates a Scatter writing to w, with a plot area of width x height
// cells (60x20 for values <= 0). Colours are only emitted if w is a terminal.
func NewScatter(w io.Writer, width, height int) *Scatter {
	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 20
	}
	r := lipgloss.NewRenderer(w)
	return &Scatter{
		w:      w,
		width:  width,
		height: height,
		r:      r,
		border: r.NewStyle().Foreground(lipgloss.Color("#6e7681")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("#6e7681")),
		title:  r.NewStyle().Bold(true),
	}
}

func (s *Scatter) clusterStyle(i int) lipgloss.Style {
	return s.r.NewStyle().Foreground(Palette[i%len(Palette)])
}

// bounds of everything that is drawn.
type bounds struct {
	minX, maxX, minY, maxY float64
}

func boundsOf(sets ...[]kmeans.Point) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, set := range sets {
		for _, p := range set {
			b.minX = math.Min(b.minX, p.X)
			b.maxX = math.Max(b.maxX, p.X)
			b.minY = math.Min(b.minY, p.Y)
			b.maxY = math.Max(b.maxY, p.Y)
		}
	}
	return b
}

// scale maps v in [lo, hi] onto [0, n-1].
func scale(v, lo, hi float64, n int) int {
	if hi <= lo || n <= 1 {
		return 0
	}
	i := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

type cell struct {
	r rune
	// label < 0 is unassigned.
	label int
}

// grid places all points, then centroids on top. Row 0 is the max Y.
func (s *Scatter) grid(snap kmeans.Snapshot) [][]cell {
	g := make([][]cell, s.height)
	for i := range g {
		g[i] = make([]cell, s.width)
		for j := range g[i] {
			g[i][j] = cell{r: ' ', label: -1}
		}
	}

	b := boundsOf(snap.DataSet, snap.Centroids)
	put := func(p kmeans.Point, c cell) {
		row := s.height - 1 - scale(p.Y, b.minY, b.maxY, s.height)
		col := scale(p.X, b.minX, b.maxX, s.width)
		g[row][col] = c
	}
	for j, p := range snap.DataSet {
		if j < len(snap.Labels) {
			put(p, cell{r: pointRune, label: snap.Labels[j]})
			continue
		}
		put(p, cell{r: unassignedRune, label: -1})
	}
	for i, c := range snap.Centroids {
		put(c, cell{r: centroidRune, label: i})
	}
	return g
}

func (s *Scatter) header(snap kmeans.Snapshot) string {
	return s.title.Render(fmt.Sprintf("step %d", snap.StepCount)) +
		s.dim.Render(fmt.Sprintf("  k=%d  %s  %s", snap.K, snap.Strategy, snap.State))
}

func (s *Scatter) legend(snap kmeans.Snapshot) string {
	sizes := snap.ClusterSizes()
	parts := make([]string, 0, len(snap.Centroids))
	for i, c := range snap.Centroids {
		size := "-"
		if i < len(sizes) {
			size = fmt.Sprint(sizes[i])
		}
		parts = append(parts, s.clusterStyle(i).Render(legendRune)+
			fmt.Sprintf(" %d: (%.2f, %.2f) n=%s", i, c.X, c.Y, size))
	}
	return strings.Join(parts, "\n")
}

// Render implements kmeans.Renderer.
func (s *Scatter) Render(snap kmeans.Snapshot) error {
	var sb strings.Builder
	sb.WriteString(s.header(snap) + "\n")
	sb.WriteString(s.border.Render("╭"+strings.Repeat("─", s.width)+"╮") + "\n")
	for _, row := range s.grid(snap) {
		sb.WriteString(s.border.Render("│"))
		for _, c := range row {
			switch {
			case c.r == ' ':
				sb.WriteRune(' ')
			case c.label < 0:
				sb.WriteString(s.dim.Render(string(c.r)))
			case c.r == centroidRune:
				sb.WriteString(s.clusterStyle(c.label).Bold(true).Render(string(c.r)))
			default:
				sb.WriteString(s.clusterStyle(c.label).Render(string(c.r)))
			}
		}
		sb.WriteString(s.border.Render("│") + "\n")
	}
	sb.WriteString(s.border.Render("╰"+strings.Repeat("─", s.width)+"╯") + "\n")
	if l := s.legend(snap); l != "" {
		sb.WriteString(l + "\n")
	}
	_, err := io.WriteString(s.w, sb.String())
	return err
}

// Line is one JSONLines record.
type Line struct {
	Step      int          `json:"step"`
	K         int          `json:"k"`
	Strategy  string       `json:"strategy"`
	State     string       `json:"state"`
	Converged bool         `json:"converged"`
	Centroids [][2]float64 `json:"centroids"`
	Sizes     []int        `json:"sizes"`
	Labels    []int        `json:"labels"`
}

// LineOf converts a snapshot. The data set itself is left out, the labels
// give the assignment in data set order.
func LineOf(snap kmeans.Snapshot) Line {
	l := Line{
		Step:      snap.StepCount,
		K:         snap.K,
		Strategy:  snap.Strategy.String(),
		State:     snap.State.String(),
		Converged: snap.Converged,
		Centroids: make([][2]float64, len(snap.Centroids)),
		Sizes:     snap.ClusterSizes(),
		Labels:    snap.Labels,
	}
	for i, c := range snap.Centroids {
		l.Centroids[i] = [2]float64{c.X, c.Y}
	}
	if l.Labels == nil {
		l.Labels = []int{}
	}
	return l
}

// JSONLines renders snapshots as one JSON object per line.
type JSONLines struct {
	enc *json.Encoder
}

// NewJSONLines creates a JSONLines writing to w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w)}
}

// Render implements kmeans.Renderer.
func (j *JSONLines) Render(snap kmeans.Snapshot) error {
	return j.enc.Encode(LineOf(snap))
}
