package fastview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

// serveClient runs one client per request and reports what Sync returned.
func serveClient(updates <-chan int, onMessage MessageFunc) (*httptest.Server, <-chan error) {
	syncErrs := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cli, err := NewClient(updates, w, r, onMessage)
		if err != nil {
			syncErrs <- err
			return
		}
		syncErrs <- cli.Sync()
	}))
	return srv, syncErrs
}

func dial(srv *httptest.Server) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	So(err, ShouldBeNil)
	return conn
}

func closeFromPage(conn *websocket.Conn) {
	err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	So(err, ShouldBeNil)
}

func syncResult(syncErrs <-chan error) error {
	select {
	case err := <-syncErrs:
		return err
	case <-time.After(2 * time.Second):
		return errors.New("sync did not return")
	}
}

func TestClientPublish(t *testing.T) {
	Convey("Given updates arriving faster than the publish rate", t, func() {
		updates := make(chan int, 3)
		updates <- 1
		updates <- 2
		updates <- 3

		srv, syncErrs := serveClient(updates, nil)
		defer srv.Close()
		conn := dial(srv)
		defer conn.Close()

		Convey("The first is sent at once and only the latest of the rest follows", func() {
			var first, second int
			So(conn.SetReadDeadline(time.Now().Add(time.Second)), ShouldBeNil)
			So(conn.ReadJSON(&first), ShouldBeNil)
			So(conn.ReadJSON(&second), ShouldBeNil)

			So(first, ShouldEqual, 1)
			So(second, ShouldEqual, 3)

			Convey("And a close from the page ends Sync without error", func() {
				closeFromPage(conn)
				So(syncResult(syncErrs), ShouldBeNil)
			})
		})
	})

	Convey("Given an update source that closes with an update still held back", t, func() {
		updates := make(chan int, 2)
		updates <- 6
		updates <- 7
		close(updates)

		srv, syncErrs := serveClient(updates, nil)
		defer srv.Close()
		conn := dial(srv)
		defer conn.Close()

		Convey("The held update is flushed and the socket stays up for the page", func() {
			var first, second int
			So(conn.SetReadDeadline(time.Now().Add(time.Second)), ShouldBeNil)
			So(conn.ReadJSON(&first), ShouldBeNil)
			So(conn.ReadJSON(&second), ShouldBeNil)
			So(first, ShouldEqual, 6)
			So(second, ShouldEqual, 7)

			closeFromPage(conn)
			So(syncResult(syncErrs), ShouldBeNil)
		})
	})
}

func TestClientMessages(t *testing.T) {
	Convey("Given a page sending commands", t, func() {
		received := make(chan string, 4)
		onMessage := func(_ context.Context, msg []byte) error {
			if string(msg) == "explode" {
				return errors.New("unknown command")
			}
			received <- string(msg)
			return nil
		}

		srv, syncErrs := serveClient(make(chan int), onMessage)
		defer srv.Close()
		conn := dial(srv)
		defer conn.Close()

		Convey("Each message reaches the handler in order", func() {
			So(conn.WriteMessage(websocket.TextMessage, []byte("pause")), ShouldBeNil)
			So(conn.WriteMessage(websocket.TextMessage, []byte("reset")), ShouldBeNil)

			for _, want := range []string{"pause", "reset"} {
				select {
				case got := <-received:
					So(got, ShouldEqual, want)
				case <-time.After(time.Second):
					So("no message", ShouldEqual, want)
				}
			}

			closeFromPage(conn)
			So(syncResult(syncErrs), ShouldBeNil)
		})

		Convey("A handler error tears the connection down", func() {
			So(conn.WriteMessage(websocket.TextMessage, []byte("explode")), ShouldBeNil)

			err := syncResult(syncErrs)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "handle message")
			So(err.Error(), ShouldContainSubstring, "unknown command")
		})
	})
}
