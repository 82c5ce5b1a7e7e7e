package board_views

import (
	"html/template"

	"autosnake/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Status is a table of the game's state, search and timing figures.
type Status struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatus(
	done <-chan struct{},
	boards <-chan Board,
) (st *Status) {
	st = &Status{id: "status"}
	st.updates = channerics.Convert(done, boards, st.onUpdate)
	return
}

func (st *Status) Updates() <-chan []fastview.EleUpdate {
	return st.updates
}

func statusID(key string) string {
	return "status-" + key
}

func (st *Status) onUpdate(board Board) []fastview.EleUpdate {
	ops := make([]fastview.EleUpdate, 0, len(board.Status))
	for _, item := range board.Status {
		ops = append(ops, fastview.SetText(statusID(item.Key), item.Value))
	}
	return ops
}

// Parse defines the status table plus the control buttons, which send
// commands back over the page's websocket.
func (st *Status) Parse(
	t *template.Template,
) (name string, err error) {
	name = st.id
	_, err = t.Funcs(template.FuncMap{"statusID": statusID}).Parse(
		`{{ define "` + name + `" }}
		<div id="` + st.id + `-container" style="padding:20px; display:inline-block; vertical-align:top; font-family:monospace;">
			<table>
				{{ range $item := .Status }}
				<tr>
					<td>{{ $item.Label }}</td>
					<td id="{{ statusID $item.Key }}">{{ $item.Value }}</td>
				</tr>
				{{ end }}
			</table>
			<div style="padding-top:12px;">
				<button onclick="sendCommand('toggle-pause')">pause / resume</button>
				<button onclick="sendCommand('toggle-algorithm')">switch search</button>
				<button onclick="sendCommand('reset')">reset</button>
			</div>
		</div>
		{{ end }}`)
	return
}
