package board_views

import (
	"fmt"
	"html/template"

	"autosnake/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// cellDim is the width and height of a board square in pixels.
const cellDim = 24

// BoardGrid is an svg grid of rects, one per board cell, whose fills follow
// the snake, food and search diagnostics.
type BoardGrid struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewBoardGrid(
	done <-chan struct{},
	boards <-chan Board,
) (bg *BoardGrid) {
	// Template names double as ids; hyphens would break the template directive.
	bg = &BoardGrid{id: "boardgrid"}
	bg.updates = channerics.Convert(done, boards, bg.onUpdate)
	return
}

func (bg *BoardGrid) Updates() <-chan []fastview.EleUpdate {
	return bg.updates
}

func cellID(row, col int) string {
	return fmt.Sprintf("%d-%d-cell", row, col)
}

// onUpdate returns an update for every cell. Every batch fully describes the
// board, so dropping one in transit is harmless.
func (bg *BoardGrid) onUpdate(board Board) (ops []fastview.EleUpdate) {
	ops = make([]fastview.EleUpdate, 0, board.Rows*board.Columns)
	for _, row := range board.Cells {
		for _, cell := range row {
			ops = append(ops, fastview.SetAttrs(
				cellID(cell.Row, cell.Col),
				"fill", cell.Fill,
				"class", cell.Kind,
			))
		}
	}
	return
}

// Parse defines the svg board, drawn from the Board passed to Execute.
func (bg *BoardGrid) Parse(
	t *template.Template,
) (name string, err error) {
	name = bg.id
	_, err = t.Funcs(template.FuncMap{"cellID": cellID}).Parse(
		`{{ define "` + name + `" }}
		<div id="` + bg.id + `-container" style="padding:20px; display:inline-block;">
			{{ $cell_dim := ` + fmt.Sprintf("%d", cellDim) + ` }}
			{{ $width := mult $cell_dim .Columns }}
			{{ $height := mult $cell_dim .Rows }}
			<svg id="` + bg.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ add $width 1 }}px"
				height="{{ add $height 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ range $row := .Cells }}
					{{ range $cell := $row }}
					<rect id="{{ cellID $cell.Row $cell.Col }}"
						class="{{ $cell.Kind }}"
						x="{{ mult $cell.Col $cell_dim }}"
						y="{{ mult $cell.Row $cell_dim }}"
						width="{{ $cell_dim }}"
						height="{{ $cell_dim }}"
						fill="{{ $cell.Fill }}"
						stroke="white"
						stroke-width="1"/>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}
