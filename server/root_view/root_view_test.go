package root_view

import (
	"bytes"
	"context"
	"html/template"
	"testing"
	"time"

	"autosnake/game"
	"autosnake/models"
	"autosnake/server/board_views"
	"autosnake/server/fastview"

	. "github.com/smartystreets/goconvey/convey"
)

func testSnapshot() game.Snapshot {
	grid, _ := models.NewGrid(3, 4)
	return game.Snapshot{
		GameID:  "g-1",
		Tick:    4,
		Grid:    grid,
		Snake:   models.Snake{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
		Food:    models.Cell{Row: 2, Col: 3},
		HasFood: true,
	}
}

func TestBatchify(t *testing.T) {
	Convey("When batching element updates", t, func() {
		done := make(chan struct{})
		defer close(done)
		source := make(chan []fastview.EleUpdate)
		batches := batchify(done, source, time.Millisecond*200)

		Convey("Later updates to the same element replace earlier ones", func() {
			source <- []fastview.EleUpdate{fastview.SetText("a", "1"), fastview.SetText("b", "1")}
			source <- []fastview.EleUpdate{fastview.SetText("a", "2")}

			batch := <-batches
			So(batch, ShouldHaveLength, 2)
			So(batch[0], ShouldResemble, fastview.SetText("a", "2"))
			So(batch[1], ShouldResemble, fastview.SetText("b", "1"))
		})

		Convey("A lone update is flushed without further input", func() {
			source <- []fastview.EleUpdate{fastview.SetText("c", "x")}
			select {
			case batch := <-batches:
				So(batch, ShouldResemble, []fastview.EleUpdate{fastview.SetText("c", "x")})
			case <-time.After(time.Second):
				So("flush timed out", ShouldBeEmpty)
			}
		})
	})
}

func TestRootView(t *testing.T) {
	Convey("Given a root view over a snapshot stream", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snapshots := make(chan game.Snapshot)
		rv, err := NewRootView(ctx, snapshots)
		So(err, ShouldBeNil)

		Convey("The page renders both views and the socket bootstrap", func() {
			tmpl := template.New("index.html")
			name, err := rv.Parse(tmpl)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "mainpage")

			var buf bytes.Buffer
			So(tmpl.ExecuteTemplate(&buf, name, board_views.Convert(testSnapshot())), ShouldBeNil)
			page := buf.String()
			So(page, ShouldContainSubstring, `id="boardgrid"`)
			So(page, ShouldContainSubstring, `id="status-container"`)
			So(page, ShouldContainSubstring, "sendCommand")
			So(page, ShouldContainSubstring, "/ws")
		})

		Convey("A snapshot produces updates for the board and the status", func() {
			snapshots <- testSnapshot()

			ids := map[string]bool{}
			timeout := time.After(2 * time.Second)
			for !ids["0-0-cell"] || !ids["status-length"] {
				select {
				case batch := <-rv.Updates():
					for _, update := range batch {
						ids[update.EleId] = true
					}
				case <-timeout:
					So(ids, ShouldContainKey, "0-0-cell")
					return
				}
			}
			So(ids, ShouldContainKey, "2-3-cell")
			So(ids, ShouldContainKey, "status-algorithm")
		})
	})
}
