// Package session is the websocket client layer: it dials the session
// server, performs the HELLO/WELCOME handshake, keeps the connection alive
// and feeds decoded messages to the caller. Outbound actions get uuid ids so
// acks can be routed back to what was sent.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tycoon.gg/internal/metrics"
	"tycoon.gg/internal/protocol"
)

type Config struct {
	URL        string
	PlayerName string
	LobbyID    string
	Token      string

	Logger *log.Logger

	WriteTimeout time.Duration
	PingInterval time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration

	// Validator, when set, checks inbound STATE and ACK shapes against the
	// JSON Schemas. Violations are logged, not fatal.
	Validator *protocol.Validator

	// OnState runs on the read goroutine for every STATE message.
	OnState func(*protocol.StateMsg)
	// OnAck runs for every ACK, with the action the ack answers (nil if the
	// id is unknown, e.g. after a reconnect).
	OnAck func(protocol.AckMsg, *protocol.Action)
	// OnTrade runs for fetch_trade responses.
	OnTrade func(protocol.TradeMsg)
	// OnWelcome runs once per successful handshake.
	OnWelcome func(protocol.WelcomeMsg)
}

type Session struct {
	cfg Config

	mu      sync.Mutex
	out     chan []byte
	pending map[string]*protocol.Action
}

func New(cfg Config) (*Session, error) {
	if cfg.URL == "" || cfg.PlayerName == "" || cfg.LobbyID == "" {
		return nil, fmt.Errorf("url, player name and lobby id are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.ReconnectMin == 0 {
		cfg.ReconnectMin = 500 * time.Millisecond
	}
	if cfg.ReconnectMax == 0 {
		cfg.ReconnectMax = 15 * time.Second
	}
	return &Session{
		cfg:     cfg,
		pending: make(map[string]*protocol.Action),
	}, nil
}

// Run dials and serves the connection until the context is cancelled,
// reconnecting with doubling backoff on any failure.
func (s *Session) Run(ctx context.Context) error {
	backoff := s.cfg.ReconnectMin
	for {
		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.cfg.Logger.Printf("session: %v, reconnecting in %v", err, backoff)
		}
		metrics.Reconnects.Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.cfg.ReconnectMax {
			backoff = s.cfg.ReconnectMax
		}
	}
}

func (s *Session) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	welcome, err := s.handshake(conn)
	if err != nil {
		return err
	}
	s.cfg.Logger.Printf("session: WELCOME lobby=%s player=%s state_every_ms=%d",
		welcome.LobbyID, welcome.PlayerName, welcome.StateEveryMs)
	if s.cfg.OnWelcome != nil {
		s.cfg.OnWelcome(welcome)
	}

	out := make(chan []byte, 64)
	s.mu.Lock()
	s.out = out
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.out = nil
		s.mu.Unlock()
	}()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Writer goroutine; also owns the keepalive pings.
	go func() {
		ping := time.NewTicker(s.cfg.PingInterval)
		defer ping.Stop()
		for {
			select {
			case <-connCtx.Done():
				return
			case <-ping.C:
				deadline := time.Now().Add(s.cfg.WriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					cancel()
					return
				}
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	readTimeout := 3 * s.cfg.PingInterval
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		if connCtx.Err() != nil {
			return connCtx.Err()
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		s.dispatch(msg)
	}
}

func (s *Session) handshake(conn *websocket.Conn) (protocol.WelcomeMsg, error) {
	var welcome protocol.WelcomeMsg

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      s.cfg.PlayerName,
		LobbyID:         s.cfg.LobbyID,
		Capabilities: protocol.Capabilities{
			AckRequired: true,
			TradeFetch:  true,
			MaxQueue:    64,
		},
	}
	if s.cfg.Token != "" {
		hello.Auth = &protocol.HelloAuth{Token: s.cfg.Token}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := conn.WriteJSON(hello); err != nil {
		return welcome, fmt.Errorf("send HELLO: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return welcome, fmt.Errorf("await WELCOME: %w", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeWelcome {
		return welcome, fmt.Errorf("expected WELCOME, got %q", base.Type)
	}
	if err := json.Unmarshal(msg, &welcome); err != nil {
		return welcome, fmt.Errorf("decode WELCOME: %w", err)
	}
	return welcome, nil
}

func (s *Session) dispatch(msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return
	}
	switch base.Type {
	case protocol.TypeState:
		if s.cfg.Validator != nil {
			if err := s.cfg.Validator.CheckState(msg); err != nil {
				s.cfg.Logger.Printf("session: STATE schema violation: %v", err)
			}
		}
		var st protocol.StateMsg
		if err := json.Unmarshal(msg, &st); err != nil {
			s.cfg.Logger.Printf("session: bad STATE: %v", err)
			return
		}
		metrics.Snapshots.Inc()
		metrics.SnapshotVersion.Set(float64(st.Version))
		if s.cfg.OnState != nil {
			s.cfg.OnState(&st)
		}

	case protocol.TypeAck:
		if s.cfg.Validator != nil {
			if err := s.cfg.Validator.CheckAck(msg); err != nil {
				s.cfg.Logger.Printf("session: ACK schema violation: %v", err)
			}
		}
		var ack protocol.AckMsg
		if err := json.Unmarshal(msg, &ack); err != nil {
			return
		}
		s.mu.Lock()
		sent := s.pending[ack.AckFor]
		delete(s.pending, ack.AckFor)
		s.mu.Unlock()
		metrics.ObserveAck(ack.OK, ack.Code)
		if !ack.OK && !protocol.IsKnownCode(ack.Code) {
			s.cfg.Logger.Printf("session: unknown error code %q: %s", ack.Code, ack.Message)
		}
		if s.cfg.OnAck != nil {
			s.cfg.OnAck(ack, sent)
		}

	case protocol.TypeTrade:
		var tr protocol.TradeMsg
		if err := json.Unmarshal(msg, &tr); err != nil {
			return
		}
		if s.cfg.OnTrade != nil {
			s.cfg.OnTrade(tr)
		}
	}
}

// Send queues one action and returns its id. Returns an error while
// disconnected; the engine simply retries on a later snapshot.
func (s *Session) Send(a *protocol.Action) (string, error) {
	id := uuid.NewString()
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		LobbyID:         s.cfg.LobbyID,
		ID:              id,
		Action:          *a,
	}
	b, err := json.Marshal(act)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	out := s.out
	if out == nil {
		s.mu.Unlock()
		return "", fmt.Errorf("not connected")
	}
	s.pending[id] = a
	s.mu.Unlock()

	select {
	case out <- b:
		metrics.Actions.WithLabelValues(a.Type).Inc()
		return id, nil
	default:
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return "", fmt.Errorf("send queue full")
	}
}

// FetchTrade asks the session layer to hydrate a trade known only by id.
// Best effort; the caller keeps its stub view until OnTrade fires.
func (s *Session) FetchTrade(tradeID string) (string, error) {
	return s.Send(&protocol.Action{Type: protocol.ActFetchTrade, TradeID: tradeID})
}
