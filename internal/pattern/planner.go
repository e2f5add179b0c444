package pattern

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// solveGridPath parses an inline character grid (S start, G goal, X
// blocked, . free) and returns the shortest path via breadth-first
// search. Coordinates are 1-indexed [row, col]; path_len counts moves.
func solveGridPath(prompt string) (string, error) {
	grid, start, goal, err := parseGrid(prompt)
	if err != nil {
		return "", err
	}
	path := shortestPath(grid, start, goal)
	if path == nil {
		return "", fmt.Errorf("goal is unreachable")
	}
	coords := make([]any, len(path))
	for i, c := range path {
		coords[i] = []any{c[0] + 1, c[1] + 1}
	}
	return marshalJSON(map[string]any{
		"path_len": len(path) - 1,
		"path":     coords,
	})
}

type cell [2]int

func parseGrid(prompt string) (grid [][]byte, start, goal cell, err error) {
	var width int
	for _, line := range strings.Split(prompt, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 || !gridRow(fields) {
			continue
		}
		if width == 0 {
			width = len(fields)
		}
		if len(fields) != width {
			continue
		}
		row := make([]byte, len(fields))
		for i, f := range fields {
			row[i] = f[0]
		}
		grid = append(grid, row)
	}
	if len(grid) == 0 {
		return nil, cell{}, cell{}, fmt.Errorf("no grid found in prompt")
	}
	start, goal = cell{-1, -1}, cell{-1, -1}
	for r, row := range grid {
		for c, ch := range row {
			switch ch {
			case 'S':
				start = cell{r, c}
			case 'G':
				goal = cell{r, c}
			}
		}
	}
	if start[0] < 0 || goal[0] < 0 {
		return nil, cell{}, cell{}, fmt.Errorf("grid is missing start or goal")
	}
	return grid, start, goal, nil
}

func gridRow(fields []string) bool {
	for _, f := range fields {
		if len(f) != 1 || !strings.ContainsAny(f, "SGX.") {
			return false
		}
	}
	return true
}

func shortestPath(grid [][]byte, start, goal cell) []cell {
	rows, cols := len(grid), len(grid[0])
	prev := make(map[cell]cell)
	seen := map[cell]bool{start: true}
	queue := []cell{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			var path []cell
			for c := goal; ; c = prev[c] {
				path = append([]cell{c}, path...)
				if c == start {
					return path
				}
			}
		}
		for _, d := range []cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			next := cell{cur[0] + d[0], cur[1] + d[1]}
			if next[0] < 0 || next[0] >= rows || next[1] < 0 || next[1] >= cols {
				continue
			}
			if seen[next] || grid[next[0]][next[1]] == 'X' {
				continue
			}
			seen[next] = true
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	return nil
}

const slotLayout = "2006-01-02T15:04"

// solveScheduling intersects per-attendee 30-minute slots and picks the
// earliest one everybody shares.
func solveScheduling(prompt string) (string, error) {
	matches := slotLineRe.FindAllStringSubmatch(prompt, -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("no availability lines found")
	}
	common := make(map[string]int)
	var attendees []string
	for _, m := range matches {
		attendees = append(attendees, m[1])
		for _, ts := range timestampRe.FindAllString(m[2], -1) {
			common[ts]++
		}
	}
	var shared []string
	for ts, n := range common {
		if n == len(matches) {
			shared = append(shared, ts)
		}
	}
	if len(shared) == 0 {
		return "", fmt.Errorf("no common slot for %d attendees", len(matches))
	}
	sort.Strings(shared)
	start, err := time.Parse(slotLayout, shared[0])
	if err != nil {
		return "", fmt.Errorf("parse slot %q: %w", shared[0], err)
	}
	sort.Strings(attendees)
	names := make([]any, len(attendees))
	for i, a := range attendees {
		names[i] = a
	}
	return marshalJSON(map[string]any{
		"start":     start.Format(slotLayout),
		"end":       start.Add(30 * time.Minute).Format(slotLayout),
		"attendees": names,
	})
}
