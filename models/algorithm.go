package models

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm selects the shortest-path strategy used to route toward food.
type Algorithm int

const (
	AStar Algorithm = iota
	Dijkstra
)

func (a Algorithm) String() string {
	switch a {
	case AStar:
		return "A*"
	case Dijkstra:
		return "Dijkstra"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Key returns the lowercase identifier used in config files, urls and metric labels.
func (a Algorithm) Key() string {
	if a == Dijkstra {
		return "dijkstra"
	}
	return "astar"
}

// Toggle returns the other algorithm.
func (a Algorithm) Toggle() Algorithm {
	if a == AStar {
		return Dijkstra
	}
	return AStar
}

func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.Key()), nil
}

func (a *Algorithm) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAlgorithm(string(text))
	return
}

var ErrUnknownAlgorithm = errors.New("unknown search algorithm")

// ParseAlgorithm accepts "astar", "a*" and "dijkstra", case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "astar", "a*", "a-star":
		return AStar, nil
	case "dijkstra":
		return Dijkstra, nil
	}
	return AStar, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}
