package root_view

import (
	"context"
	"html/template"
	"time"

	"autosnake/game"
	"autosnake/server/board_views"
	"autosnake/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// batchRate is how long element updates are merged before being sent on.
const batchRate = time.Millisecond * 20

// RootView is the main page's index.html, which is the container for all the
// view components and the wiring for their channels. One RootView serves one
// page: its views consume the snapshot channel they were built with.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView builds the page's views over a stream of snapshots. Every
// goroutine it starts ends when ctx is cancelled. A nil snapshots channel
// gives a page that can be rendered but never updates.
func NewRootView(
	ctx context.Context,
	snapshots <-chan game.Snapshot,
) (*RootView, error) {
	views, err := fastview.NewViewBuilder[game.Snapshot, board_views.Board]().
		WithContext(ctx).
		WithModel(snapshots, board_views.Convert).
		WithView(func(
			done <-chan struct{},
			boards <-chan board_views.Board) fastview.ViewComponent {
			return board_views.NewBoardGrid(done, boards)
		}).
		WithView(func(
			done <-chan struct{},
			boards <-chan board_views.Board) fastview.ViewComponent {
			return board_views.NewStatus(done, boards)
		}).
		Build()
	if err != nil {
		return nil, err
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}, nil
}

// Updates returns the main ele-update channel for all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page's template, with websocket bootstrap code, and returns its name.
// It also sets up the func-map that the child components depend on.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	rt := parent.Funcs(
		template.FuncMap{
			"add":  func(i, j int) int { return i + j },
			"sub":  func(i, j int) int { return i - j },
			"mult": func(i, j int) int { return i * j },
			"div":  func(i, j int) int { return i / j },
		})

	var bodySpec string
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(rt)
		if parseErr != nil {
			return "", parseErr
		}
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	// The main template bootstraps the rest: sets up the client websocket,
	// applies pushed updates and sends control commands back.
	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<title>autosnake</title>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
				ws.onopen = function (event) {
					console.log("Web socket opened")
				};

				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};

				// When the server pushes view updates, find these eles and update them.
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						if (!ele) {
							continue
						}
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}

				function sendCommand(command) {
					if (ws.readyState === WebSocket.OPEN) {
						ws.send(JSON.stringify({ command: command }))
					}
				}

				document.addEventListener("keydown", function (event) {
					switch (event.key) {
					case "p": sendCommand("toggle-pause"); break;
					case "a": sendCommand("toggle-algorithm"); break;
					case "r": sendCommand("reset"); break;
					}
				})
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = rt.Parse(indexTemplate)
	return
}

// fanIn aggregates the views' ele-update channels into a single channel,
// and throttles its output.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		batchRate)
}

// batchify merges updates arriving within rate of each other, keeping only the
// latest update per ele-id. A pending batch is flushed when the window
// closes, even if no further input arrives.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		pending := map[string]fastview.EleUpdate{}
		order := []string{}
		var flush <-chan time.Time

		for {
			var out chan<- []fastview.EleUpdate
			var batch []fastview.EleUpdate
			if flush == nil && len(pending) > 0 {
				out = output
				batch = orderedVals(order, pending)
			}

			select {
			case <-done:
				return
			case updates, ok := <-source:
				if !ok {
					return
				}
				for _, update := range updates {
					if _, seen := pending[update.EleId]; !seen {
						order = append(order, update.EleId)
					}
					pending[update.EleId] = update
				}
				if flush == nil && len(pending) > 0 {
					flush = time.After(rate)
				}
			case <-flush:
				flush = nil
			case out <- batch:
				pending = map[string]fastview.EleUpdate{}
				order = order[:0]
			}
		}
	}()

	return output
}

// orderedVals returns the map's values in the order their keys were first seen.
func orderedVals[K comparable, V any](order []K, mp map[K]V) []V {
	vals := make([]V, 0, len(order))
	for _, k := range order {
		vals = append(vals, mp[k])
	}
	return vals
}
