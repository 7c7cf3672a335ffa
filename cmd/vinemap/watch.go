package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"cdr.dev/slog"
	"github.com/fsnotify/fsnotify"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/vinemap/vinemap"
	"github.com/vinemap/vinemap/lib/log"
	"github.com/vinemap/vinemap/lib/xbrowser"
	"github.com/vinemap/vinemap/lib/xhttp"
)

type watcherOpts struct {
	inputPath string
	host      string
	port      string
	render    vinemap.Options
}

type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	watcherOpts

	renderCh chan struct{}

	fw *fsnotify.Watcher
	l  net.Listener

	wsclientsMu sync.Mutex
	closing     bool
	wsclientsWG sync.WaitGroup
	wsclients   map[*wsclient]struct{}

	errMu sync.Mutex
	err   error

	resMu sync.Mutex
	res   *renderResult
}

// renderResult is the payload pushed to every connected page.
type renderResult struct {
	SVG string `json:"svg"`
	Err string `json:"err"`
}

func newWatcher(ctx context.Context, opts watcherOpts) (*watcher, error) {
	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{
		ctx:    ctx,
		cancel: cancel,

		watcherOpts: opts,

		renderCh:  make(chan struct{}, 1),
		wsclients: make(map[*wsclient]struct{}),
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		cancel()
		return nil, err
	}
	w.fw = fw

	l, err := net.Listen("tcp", net.JoinHostPort(opts.host, opts.port))
	if err != nil {
		cancel()
		fw.Close()
		return nil, err
	}
	w.l = l
	log.Info(ctx, "listening", slog.F("url", fmt.Sprintf("http://%v", l.Addr())))
	return w, nil
}

func (w *watcher) run() error {
	defer w.close()

	w.goFunc(w.watchLoop)
	w.goFunc(w.renderLoop)
	w.goServe()

	w.wg.Wait()
	w.close()
	return w.err
}

func (w *watcher) close() {
	w.wsclientsMu.Lock()
	if w.closing {
		w.wsclientsMu.Unlock()
		return
	}
	w.closing = true
	w.wsclientsMu.Unlock()

	w.cancel()
	w.setErr(w.fw.Close())
	w.setErr(w.l.Close())
	w.wsclientsWG.Wait()
}

func (w *watcher) setErr(err error) {
	w.errMu.Lock()
	if w.err == nil && !errors.Is(err, context.Canceled) {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *watcher) goFunc(fn func(context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.cancel()
		w.setErr(fn(w.ctx))
	}()
}

// watchLoop re-renders on input changes. Editors produce bursts of events
// per save (chmod, write, chmod again, or many writes for a large file), so
// changes are batched until 16ms of quiet. A slow poll catches changes the
// file notification API missed, and a deleted-then-recreated input (the
// usual atomic-save dance) is re-watched with backoff.
func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified, err := w.ensureWatch(ctx)
	if err != nil {
		return err
	}
	log.Info(ctx, "rendering", slog.F("path", w.inputPath))
	w.requestRender()

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(10 * time.Second)
	defer pollTicker.Stop()

	for {
		select {
		case <-pollTicker.C:
			mt, err := w.ensureWatch(ctx)
			if err != nil {
				return err
			}
			if !mt.Equal(lastModified) {
				lastModified = mt
				w.requestRender()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			log.Debug(ctx, "file system event", slog.F("event", ev.String()))
			mt, err := w.ensureWatch(ctx)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod && mt.Equal(lastModified) {
				// Benign chmod, e.g. macOS editors after every save.
				continue
			}
			lastModified = mt
			eatBurstTimer.Reset(16 * time.Millisecond)
		case <-eatBurstTimer.C:
			log.Info(ctx, "change detected, re-rendering", slog.F("path", w.inputPath))
			w.requestRender()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			log.Error(ctx, "fsnotify error", slog.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) requestRender() {
	select {
	case w.renderCh <- struct{}{}:
	default:
	}
}

// ensureWatch adds the input path to the watcher, retrying with backoff
// while the file is briefly absent mid-save.
func (w *watcher) ensureWatch(ctx context.Context) (time.Time, error) {
	interval := 16 * time.Millisecond
	tc := time.NewTimer(0)
	<-tc.C
	for {
		err := w.fw.Add(w.inputPath)
		if err == nil {
			var fi os.FileInfo
			fi, err = os.Stat(w.inputPath)
			if err == nil {
				return fi.ModTime(), nil
			}
		}
		if interval >= time.Second {
			log.Error(ctx, "failed to watch input, retrying",
				slog.F("path", w.inputPath),
				slog.F("retry_in", interval),
				slog.Error(err),
			)
		}

		tc.Reset(interval)
		select {
		case <-tc.C:
			if interval < 16*time.Second {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) renderLoop(ctx context.Context) error {
	firstRender := true
	for {
		select {
		case <-w.renderCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		svg, err := renderSVG(ctx, w.inputPath, w.render)
		errs := ""
		if err != nil {
			errs = fmt.Sprintf("failed to render: %v", err)
			log.Error(ctx, "render failed", slog.Error(err))
		}
		w.broadcast(&renderResult{
			SVG: string(svg),
			Err: errs,
		})

		if firstRender {
			firstRender = false
			url := fmt.Sprintf("http://%v", w.l.Addr())
			if err := xbrowser.Open(ctx, url); err != nil {
				log.Warn(ctx, "failed to open browser",
					slog.F("url", url),
					slog.Error(err),
				)
			}
		}
	}
}

func (w *watcher) goServe() {
	m := http.NewServeMux()
	m.HandleFunc("/", w.handleRoot)
	m.Handle("/watch", xhttp.Adapt(w.handleWatch))

	s := xhttp.NewServer(xhttp.LogRequests(m))
	w.goFunc(func(ctx context.Context) error {
		return xhttp.Serve(ctx, 30*time.Second, s, w.l)
	})
}

func (w *watcher) handleRoot(hw http.ResponseWriter, r *http.Request) {
	hw.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(hw, `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>%s</title>
	<style>
		body { margin: 0; }
		#vm-err { display: none; padding: 8px; color: #b00; font: 14px monospace; white-space: pre-wrap; }
	</style>
</head>
<body>
	<div id="vm-err"></div>
	<div id="vm-svg"></div>
	<script>
	(function() {
		function connect() {
			var ws = new WebSocket("ws://" + location.host + "/watch");
			ws.onmessage = function(ev) {
				var msg = JSON.parse(ev.data);
				var err = document.getElementById("vm-err");
				err.style.display = msg.err ? "block" : "none";
				err.textContent = msg.err;
				if (msg.svg) {
					document.getElementById("vm-svg").innerHTML = msg.svg;
				}
			};
			ws.onclose = function() { setTimeout(connect, 1000); };
		}
		connect();
	})();
	</script>
</body>
</html>`, w.inputPath)
}

func (w *watcher) handleWatch(hw http.ResponseWriter, r *http.Request) error {
	w.wsclientsMu.Lock()
	if w.closing {
		w.wsclientsMu.Unlock()
		return xhttp.Errorf(http.StatusServiceUnavailable, "server shutting down")
	}
	// Register before the upgrade so close() waits for this connection even
	// when it is torn down mid-hijack.
	w.wsclientsWG.Add(1)
	w.wsclientsMu.Unlock()

	c, err := websocket.Accept(hw, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		w.wsclientsWG.Done()
		return err
	}

	go func() {
		defer w.wsclientsWG.Done()
		defer c.Close(websocket.StatusInternalError, "closed")

		ctx, cancel := context.WithTimeout(w.ctx, time.Hour)
		defer cancel()

		cl := &wsclient{
			w:         w,
			resultsCh: make(chan struct{}, 1),
			c:         c,
		}

		w.wsclientsMu.Lock()
		w.wsclients[cl] = struct{}{}
		w.wsclientsMu.Unlock()
		defer func() {
			w.wsclientsMu.Lock()
			delete(w.wsclients, cl)
			w.wsclientsMu.Unlock()
		}()

		ctx = c.CloseRead(ctx)
		go wsHeartbeat(ctx, c)
		_ = cl.writeLoop(ctx)
	}()
	return nil
}

type wsclient struct {
	w         *watcher
	resultsCh chan struct{}
	c         *websocket.Conn
}

func (cl *wsclient) writeLoop(ctx context.Context) error {
	for {
		res := cl.w.getRes()
		if res != nil {
			wctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := wsjson.Write(wctx, cl.c, res)
			cancel()
			if err != nil {
				return err
			}
		}

		select {
		case <-cl.resultsCh:
		case <-ctx.Done():
			cl.c.Close(websocket.StatusGoingAway, "server shutting down")
			return ctx.Err()
		}
	}
}

func (w *watcher) getRes() *renderResult {
	w.resMu.Lock()
	defer w.resMu.Unlock()
	return w.res
}

func (w *watcher) broadcast(res *renderResult) {
	w.resMu.Lock()
	w.res = res
	w.resMu.Unlock()

	w.wsclientsMu.Lock()
	defer w.wsclientsMu.Unlock()
	log.Info(w.ctx, "broadcasting update", slog.F("clients", len(w.wsclients)))
	for cl := range w.wsclients {
		select {
		case cl.resultsCh <- struct{}{}:
		default:
		}
	}
}

func wsHeartbeat(ctx context.Context, c *websocket.Conn) {
	t := time.NewTimer(0)
	<-t.C
	for {
		if err := c.Ping(ctx); err != nil {
			return
		}

		t.Reset(30 * time.Second)
		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
	}
}
