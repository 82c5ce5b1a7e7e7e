package main

import (
	"fmt"

	"autosnake/game"
	"autosnake/grid_world"
	"autosnake/models"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	borderPadding = 10
	statusWidth   = 260
	fontSize      = 18
	lineHeight    = 26
)

var colors = map[grid_world.CellKind]rl.Color{
	grid_world.Empty:    {R: 30, G: 30, B: 36, A: 255},
	grid_world.Visited:  {R: 52, G: 73, B: 110, A: 255},
	grid_world.FoodPath: {R: 214, G: 190, B: 80, A: 255},
	grid_world.TailPath: {R: 150, G: 100, B: 170, A: 255},
	grid_world.Food:     rl.Red,
	grid_world.Body:     {R: 90, G: 180, B: 90, A: 255},
	grid_world.Tail:     rl.Orange,
	grid_world.Head:     rl.Lime,
}

// renderer lays the board out to fill the window, left of a status panel.
type renderer struct {
	cellSize int32
	offsetX  int32
	offsetY  int32
}

func (r *renderer) layout(grid models.Grid) {
	width := int32(rl.GetScreenWidth()) - statusWidth - 2*borderPadding
	height := int32(rl.GetScreenHeight()) - 2*borderPadding

	r.cellSize = min(width/int32(grid.Columns), height/int32(grid.Rows))
	if r.cellSize < 1 {
		r.cellSize = 1
	}
	r.offsetX = borderPadding
	r.offsetY = (int32(rl.GetScreenHeight()) - r.cellSize*int32(grid.Rows)) / 2
}

func (r *renderer) draw(snap game.Snapshot) {
	r.layout(snap.Grid)
	board := grid_world.NewBoard(snap.Grid, snap.Snake, snap.Food, snap.HasFood, snap.Decision)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	rl.DrawRectangle(
		r.offsetX-1,
		r.offsetY-1,
		r.cellSize*int32(snap.Grid.Columns)+2,
		r.cellSize*int32(snap.Grid.Rows)+2,
		rl.DarkGray)

	board.Visit(func(c models.Cell, kind grid_world.CellKind) {
		x := r.offsetX + int32(c.Col)*r.cellSize
		y := r.offsetY + int32(c.Row)*r.cellSize
		rl.DrawRectangle(x, y, r.cellSize, r.cellSize, colors[kind])
		rl.DrawRectangleLines(x, y, r.cellSize, r.cellSize, rl.Black)
		if kind == grid_world.Head {
			if d, ok := snap.Snake.Heading(); ok {
				v := headTriangle(float32(x), float32(y), float32(r.cellSize), d)
				rl.DrawTriangle(v[0], v[1], v[2], rl.DarkGreen)
			}
		}
	})

	r.drawStatus(snap)
	rl.EndDrawing()
}

// headTriangle returns an arrow inside the cell at (x, y) pointing along d,
// tip first, in the counter-clockwise order DrawTriangle expects.
func headTriangle(x, y, size float32, d models.Direction) [3]rl.Vector2 {
	inset := size / 4
	left, right := x+inset, x+size-inset
	top, bottom := y+inset, y+size-inset
	midX, midY := x+size/2, y+size/2

	switch d {
	case models.Down:
		return [3]rl.Vector2{{X: midX, Y: bottom}, {X: right, Y: top}, {X: left, Y: top}}
	case models.Left:
		return [3]rl.Vector2{{X: left, Y: midY}, {X: right, Y: bottom}, {X: right, Y: top}}
	case models.Right:
		return [3]rl.Vector2{{X: right, Y: midY}, {X: left, Y: top}, {X: left, Y: bottom}}
	}
	return [3]rl.Vector2{{X: midX, Y: top}, {X: left, Y: bottom}, {X: right, Y: bottom}}
}

func (r *renderer) drawStatus(snap game.Snapshot) {
	x := int32(rl.GetScreenWidth()) - statusWidth + borderPadding
	y := int32(borderPadding)

	state := snap.Outcome.String()
	if snap.Paused && !snap.Outcome.Finished() {
		state = "paused"
	}
	rule := "-"
	if snap.Tick > 0 {
		rule = snap.Decision.Strategy.String()
	}

	lines := []string{
		"autosnake",
		"",
		fmt.Sprintf("state:    %s", state),
		fmt.Sprintf("search:   %s", snap.Algorithm),
		fmt.Sprintf("length:   %d / %d", len(snap.Snake), snap.Grid.Size()),
		fmt.Sprintf("tick:     %d", snap.Tick),
		fmt.Sprintf("rule:     %s", rule),
		fmt.Sprintf("expanded: %d", len(snap.Decision.Visited)),
		fmt.Sprintf("decision: %s", snap.AvgDecision),
		"",
		"p pause  a search",
		"r reset  q quit",
	}
	for _, line := range lines {
		rl.DrawText(line, x, y, fontSize, rl.RayWhite)
		y += lineHeight
	}
}
