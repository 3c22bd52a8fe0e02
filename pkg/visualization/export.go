package visualization

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
)

// Star is one rendered item of a constellation
type Star struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Icon      string   `json:"icon,omitempty"`
	Position  Position `json:"position"`
	Completed bool     `json:"completed"`
	Scale     float64  `json:"scale"`
	Momentum  int      `json:"momentum"`
}

// Link is an edge annotated with whether both of its stars are completed
type Link struct {
	Edge
	Connected bool `json:"connected"`
}

// Constellation represents a laid out set of stars with their links
type Constellation struct {
	Seed  int64  `json:"seed"`
	Stars []Star `json:"stars"`
	Links []Link `json:"links"`
}

// NewConstellation joins stars with edges computed over their positions.
// A link is connected when both endpoints are completed.
func NewConstellation(seed int64, stars []Star, edges []Edge) *Constellation {
	links := make([]Link, 0, len(edges))
	for _, e := range edges {
		if e.A >= len(stars) || e.B >= len(stars) {
			continue
		}
		links = append(links, Link{
			Edge:      e,
			Connected: stars[e.A].Completed && stars[e.B].Completed,
		})
	}
	return &Constellation{Seed: seed, Stars: stars, Links: links}
}

// ExportJSON exports the constellation to JSON
func (c *Constellation) ExportJSON() ([]byte, error) {
	return json.Marshal(c)
}

// SVG styling
const (
	svgBaseRadius     = 2.2
	svgCompletedFill  = "#f6d365"
	svgPendingFill    = "#3b4261"
	svgConnectedLine  = "#f6d36566"
	svgDashedLine     = "#565f8966"
	svgBackground     = "#0b1026"
	svgStrokeWidth    = 0.3
	svgLabelFontSize  = 2.4
	svgLabelOffsetY   = 4.2
	svgLabelFillColor = "#a9b1d6"
)

// RenderSVG writes the constellation as a 100x100 SVG document
func RenderSVG(w io.Writer, c *Constellation) error {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g" preserveAspectRatio="xMidYMid meet">`, DefaultSize, DefaultSize)
	b.WriteString("\n")
	fmt.Fprintf(&b, `  <rect width="100%%" height="100%%" fill="%s"/>`, svgBackground)
	b.WriteString("\n")

	for _, l := range c.Links {
		a := c.Stars[l.A].Position
		z := c.Stars[l.B].Position
		stroke, dash := svgDashedLine, "1 1"
		if l.Connected {
			stroke, dash = svgConnectedLine, "0"
		}
		fmt.Fprintf(&b, `  <line x1="%.3f" y1="%.3f" x2="%.3f" y2="%.3f" stroke="%s" stroke-width="%g" stroke-dasharray="%s"/>`,
			a.X, a.Y, z.X, z.Y, stroke, svgStrokeWidth, dash)
		b.WriteString("\n")
	}

	for _, s := range c.Stars {
		fill := svgPendingFill
		if s.Completed {
			fill = svgCompletedFill
		}
		scale := s.Scale
		if scale == 0 {
			scale = 1
		}
		fmt.Fprintf(&b, `  <g id="star-%s">`, html.EscapeString(s.ID))
		fmt.Fprintf(&b, `<circle cx="%.3f" cy="%.3f" r="%.3f" fill="%s"/>`, s.Position.X, s.Position.Y, svgBaseRadius*scale, fill)
		fmt.Fprintf(&b, `<text x="%.3f" y="%.3f" font-size="%g" text-anchor="middle" fill="%s">%s</text>`,
			s.Position.X, s.Position.Y+svgLabelOffsetY, svgLabelFontSize, svgLabelFillColor, html.EscapeString(s.Label))
		b.WriteString("</g>\n")
	}

	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ASCII glyphs
const (
	asciiCompleted = '*'
	asciiPending   = 'o'
	asciiConnected = '.'
)

// RenderASCII draws the constellation on a cols x rows character grid.
// Connected links are traced with dots; stars are numbered in a legend
// below the grid.
func RenderASCII(w io.Writer, c *Constellation, cols, rows int) error {
	if cols < 2 || rows < 2 {
		return fmt.Errorf("grid too small: %dx%d", cols, rows)
	}

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	cell := func(p Position) (int, int) {
		x := int(p.X / DefaultSize * float64(cols-1))
		y := int(p.Y / DefaultSize * float64(rows-1))
		return clamp(x, 0, cols-1), clamp(y, 0, rows-1)
	}

	for _, l := range c.Links {
		if !l.Connected {
			continue
		}
		a, z := c.Stars[l.A].Position, c.Stars[l.B].Position
		steps := max(cols, rows)
		for i := 1; i < steps; i++ {
			t := float64(i) / float64(steps)
			x, y := cell(Position{X: a.X + (z.X-a.X)*t, Y: a.Y + (z.Y-a.Y)*t})
			grid[y][x] = asciiConnected
		}
	}

	for _, s := range c.Stars {
		x, y := cell(s.Position)
		if s.Completed {
			grid[y][x] = asciiCompleted
		} else {
			grid[y][x] = asciiPending
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	for i, s := range c.Stars {
		mark := asciiPending
		if s.Completed {
			mark = asciiCompleted
		}
		fmt.Fprintf(&b, "%c %2d. %s %s\n", mark, i+1, s.Icon, s.Label)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
