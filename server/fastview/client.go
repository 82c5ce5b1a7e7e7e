package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// The rate at which ele-updates will be sent to the client, so as not to overburden.
	// Kept below the usual game tick so most ticks reach the page.
	pubResolution  = time.Millisecond * 40
	pingResolution = time.Millisecond * 200
	// Example code sets this to 10*pingResolution. By definition, it encompasses the number of
	// pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// MessageFunc handles one message received from the browser, such as a
// control command. A returned error tears down the connection.
type MessageFunc func(ctx context.Context, msg []byte) error

// A client publishes updates to a web client via websocket and hands any
// messages the page sends back to a MessageFunc.
type client[T any] struct {
	updates   <-chan T
	onMessage MessageFunc
	ws        *websock
	pongs     chan struct{}
	rootCtx   context.Context
}

// NewClient upgrades the request to a websocket and returns a publisher for
// it. Items in the updates chan should represent idempotent update objects,
// such that intervening updates can be discarded when they are received too
// quickly (> pub-rate), and only sending the latest update is sufficient to
// specify the new client state. onMessage may be nil, in which case incoming
// messages are read and discarded.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
	onMessage MessageFunc,
) (*client[T], error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return nil, err
	}
	ws.SetReadLimit(maxMessageSize)

	if onMessage == nil {
		onMessage = func(context.Context, []byte) error { return nil }
	}

	cli := &client[T]{
		updates:   updates,
		onMessage: onMessage,
		ws:        NewWebSocket(ws),
		pongs:     make(chan struct{}, 1),
		rootCtx:   r.Context(),
	}
	// The handler runs on the reading goroutine, so it must never block.
	ws.SetPongHandler(func(_ string) error {
		select {
		case cli.pongs <- struct{}{}:
		default:
		}
		return nil
	})
	return cli, nil
}

// Sync publishes incoming updates to the websocket, keeps it alive with
// ping-pong and dispatches messages from the page, until the peer goes away
// or the request context ends. Updates are published at a compiled rate;
// of the updates received faster than that rate only the latest is sent.
// Sync returns nil upon client disconnect or an error if an unexpected error occurred.
// NOTE: taking too long here could block senders on the updates chan, so the
// upstream source should drop rather than queue.
func (cli *client[T]) Sync() error {
	group, groupCtx := errgroup.WithContext(cli.rootCtx)

	// Closing the socket is what unblocks a reader waiting on the peer.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		<-groupCtx.Done()
		cli.ws.Close()
	}()

	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})

	err := group.Wait()
	<-closed
	if errors.Is(err, errPeerClosed) {
		return nil
	}
	return err
}

// errPeerClosed stops the other routines when the page closes the socket.
var errPeerClosed = errors.New("peer closed the websocket")

var ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")

// Runs the ping-pong for the client liveness check.
// NOTE: This function requires that readMessages is running to ensure the pong handler is called.
func (cli *client[T]) pingPong(ctx context.Context) error {
	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}

			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-cli.pongs:
			lastPong = time.Now()
		}
	}
}

func (cli *client[T]) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (err error) {
			if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if isError(err) {
					err = fmt.Errorf("ping failed: %T %v", err, err)
				}
			}
			return
		})
}

// readMessages reads messages from the page and passes them to onMessage.
// Errors returned by websocket Read methods are permanent, hence any error
// must trigger full teardown; a normal close is not an error.
func (cli *client[T]) readMessages(ctx context.Context) error {
	for {
		var msg []byte
		err := cli.ws.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, msg, readErr = ws.ReadMessage()
				return
			})
		if isClosure(err) {
			return errPeerClosed
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		if err = cli.onMessage(ctx, msg); err != nil {
			return fmt.Errorf("handle message: %w", err)
		}
	}
}

// publish writes updates to the socket at most once per pubResolution. An
// update arriving too soon replaces any pending one and is written once the
// window has passed, so the latest state always reaches the page.
func (cli *client[T]) publish(ctx context.Context) error {
	var (
		lastSync   time.Time
		pending    T
		hasPending bool
		flush      <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-cli.updates:
			// Graceful input channel closure; the page still gets the last state.
			if !ok {
				if hasPending {
					return cli.write(ctx, pending)
				}
				return nil
			}
			pending, hasPending = updates, true
		case <-flush:
			flush = nil
		}

		if !hasPending || flush != nil {
			continue
		}
		if wait := pubResolution - time.Since(lastSync); wait > 0 {
			flush = time.After(wait)
			continue
		}

		lastSync = time.Now()
		hasPending = false
		if err := cli.write(ctx, pending); err != nil {
			return err
		}
	}
}

func (cli *client[T]) write(ctx context.Context, updates T) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (writeErr error) {
			if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
				writeErr = fmt.Errorf("failed to set deadline: %T %w", writeErr, writeErr)
				return
			}

			if writeErr = ws.WriteJSON(updates); writeErr != nil {
				if isError(writeErr) {
					writeErr = fmt.Errorf("publish failed: %T %v", writeErr, writeErr)
				}
			}
			return
		})
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// ErrSockCongestion indicates there are too many waiters on the socket for a given op.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

const (
	readDeadline     = time.Second
	writeDeadline    = time.Second
	closeGracePeriod = 100 * time.Millisecond
)

// websock merely serializes reads and writes to the websocket, whose requirements
// are that there may be only one concurrent read and writer at a time.
type websock struct {
	// These are merely mutexes, but channel semantics are cleaner.
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func NewWebSocket(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Returns the underlying websocket.
// This should only be used non-concurrently for setup, e.g. adding handlers.
func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

// Close sends a close frame and closes the connection, which also fails any
// Read blocked on the peer. Writers are excluded while closing.
func (sock *websock) Close() {
	sock.writeSem <- struct{}{}
	defer func() { <-sock.writeSem }()

	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	sock.ws.Close()
}

// Read serializes read operations on the internal web socket.
func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

// Write serializes write operations to the websocket.
func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
