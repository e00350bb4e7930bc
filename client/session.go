package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State describes how a session is currently receiving updates.
type State string

const (
	// StateConnecting means no update channel is established yet.
	StateConnecting State = "connecting"
	// StateLive means updates arrive over the push connection.
	StateLive State = "live"
	// StateDegraded means the push connection is down and the session
	// is polling snapshots instead.
	StateDegraded State = "degraded"
	// StateClosed is terminal.
	StateClosed State = "closed"
)

const (
	defaultPollInterval   = 30 * time.Second
	reconnectInterval     = 5 * time.Second
	handshakeTimeout      = 10 * time.Second
	snapshotFetchTimeout  = 10 * time.Second
	eventParticipants     = "participants"
	eventSelection        = "selection"
)

// Snapshot is the full room view a renderer draws from. Events never
// carry deltas, so applying one replaces its slice wholesale and leaves
// the other untouched.
type Snapshot struct {
	Participants []string
	Selected     []string
	Count        int
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{Count: s.Count}
	out.Participants = append([]string(nil), s.Participants...)
	out.Selected = append([]string(nil), s.Selected...)
	return out
}

type Options struct {
	// BaseURL is the http(s) root of the service, without a trailing slash.
	BaseURL string
	RoomID  string
	// Token is the owner or participant credential for the room.
	Token string

	// PollInterval is the snapshot cadence while degraded. Zero means
	// the server default.
	PollInterval time.Duration

	// OnSnapshot receives the merged view after every applied update.
	OnSnapshot func(Snapshot)
	// OnStateChange is invoked when the session moves between live,
	// degraded and closed.
	OnStateChange func(State)

	HTTPClient *http.Client
}

// Session keeps one room's view current, preferring the push channel
// and falling back to polling when it drops. Callbacks run on the
// session goroutine, one at a time.
type Session struct {
	opts       Options
	httpClient *http.Client

	mu       sync.Mutex
	state    State
	snapshot Snapshot
	conn     *websocket.Conn

	done     chan struct{}
	wg       sync.WaitGroup
	closeOne sync.Once
}

func NewSession(opts Options) (*Session, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.RoomID == "" {
		return nil, fmt.Errorf("room id is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: snapshotFetchTimeout}
	}

	return &Session{
		opts:       opts,
		httpClient: httpClient,
		state:      StateConnecting,
		done:       make(chan struct{}),
	}, nil
}

// Start begins receiving updates. It returns immediately; updates are
// delivered through the callbacks until Close or ctx cancellation.
func (s *Session) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Close tears the session down and waits until its goroutine has
// exited, so no callback fires after Close returns.
func (s *Session) Close() {
	s.closeOne.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.mu.Unlock()
	})
	s.wg.Wait()
}

// CurrentState reports how updates are arriving right now.
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentSnapshot returns a copy of the latest merged view.
func (s *Session) CurrentSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.clone()
}

func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()
	defer s.setState(StateClosed)

	for {
		if s.closed(ctx) {
			return
		}

		conn, err := s.dial(ctx)
		if err == nil {
			s.setState(StateLive)
			// The server replays current membership and the last draw
			// on subscribe, so the first events rebuild the full view.
			s.readLoop(ctx, conn)
			if s.closed(ctx) {
				return
			}
		}

		// Push channel unavailable: poll full snapshots and keep
		// retrying the connection in between.
		s.setState(StateDegraded)
		if s.pollUntilReconnect(ctx) {
			return
		}
	}
}

// pollUntilReconnect fetches snapshots at the poll cadence until a dial
// attempt succeeds or the session ends. It reports whether the session
// is done.
func (s *Session) pollUntilReconnect(ctx context.Context) bool {
	s.fetchSnapshot(ctx)

	poll := time.NewTicker(s.opts.PollInterval)
	defer poll.Stop()
	retry := time.NewTicker(reconnectInterval)
	defer retry.Stop()

	for {
		select {
		case <-s.done:
			return true
		case <-ctx.Done():
			return true
		case <-poll.C:
			s.fetchSnapshot(ctx)
		case <-retry.C:
			conn, err := s.dial(ctx)
			if err != nil {
				continue
			}
			s.setState(StateLive)
			// Re-apply a full snapshot after the gap; merged events
			// alone cannot repair state missed while degraded.
			s.fetchSnapshot(ctx)
			s.readLoop(ctx, conn)
			if s.closed(ctx) {
				return true
			}
			s.setState(StateDegraded)
			s.fetchSnapshot(ctx)
		}
	}
}

func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL := s.opts.BaseURL
	if after, ok := strings.CutPrefix(wsURL, "https://"); ok {
		wsURL = "wss://" + after
	} else if after, ok := strings.CutPrefix(wsURL, "http://"); ok {
		wsURL = "ws://" + after
	}

	path := fmt.Sprintf("%s/api/v1/rooms/%s/ws", wsURL, s.opts.RoomID)
	if s.opts.Token != "" {
		path += "?token=" + url.QueryEscape(s.opts.Token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	conn, resp, err := dialer.DialContext(ctx, path, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("failed to connect to websocket: %w", err)
	}

	// Checked and assigned under one lock: Close holds the same lock when
	// it looks for a conn to tear down, so it always sees either no conn
	// or this one.
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		_ = conn.Close()
		return nil, fmt.Errorf("session closed")
	default:
	}
	s.conn = conn
	s.mu.Unlock()

	return conn, nil
}

type wireEvent struct {
	Type         string      `json:"type"`
	Participants []nameEntry `json:"participants"`
	Selected     []nameEntry `json:"selected"`
	Count        int         `json:"count"`
}

type nameEntry struct {
	Name string `json:"name"`
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
	}()

	for {
		var ev wireEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}

		switch ev.Type {
		case eventParticipants:
			s.apply(func(snap *Snapshot) {
				snap.Participants = names(ev.Participants)
			})
		case eventSelection:
			s.apply(func(snap *Snapshot) {
				snap.Selected = names(ev.Selected)
				snap.Count = ev.Count
			})
		}

		if s.closed(ctx) {
			return
		}
	}
}

type snapshotPayload struct {
	Participants []nameEntry `json:"participants"`
	Selection    *struct {
		Selected []nameEntry `json:"selected"`
		Count    int         `json:"count"`
	} `json:"selection"`
}

func (s *Session) fetchSnapshot(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, snapshotFetchTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/v1/rooms/%s/updates", s.opts.BaseURL, s.opts.RoomID)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return
	}
	if s.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	var payload snapshotPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return
	}

	s.apply(func(snap *Snapshot) {
		snap.Participants = names(payload.Participants)
		if payload.Selection != nil {
			snap.Selected = names(payload.Selection.Selected)
			snap.Count = payload.Selection.Count
		} else {
			snap.Selected = nil
			snap.Count = 0
		}
	})
}

func (s *Session) apply(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.snapshot)
	snap := s.snapshot.clone()
	cb := s.opts.OnSnapshot
	s.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	if s.state == next || s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = next
	cb := s.opts.OnStateChange
	s.mu.Unlock()

	if cb != nil {
		cb(next)
	}
}

func (s *Session) closed(ctx context.Context) bool {
	select {
	case <-s.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func names(entries []nameEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
