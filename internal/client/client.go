package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/protocol"
)

// ErrClosed is returned once the client has disconnected.
var ErrClosed = errors.New("client closed")

// Client is a websocket connection to a blackjack server.
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *protocol.Message
	incoming  chan *protocol.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.RWMutex
	connected bool
	room      string
	you       string
}

// New creates a client for serverURL, e.g. "http://localhost:8080".
func New(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		serverURL: serverURL,
		send:      make(chan *protocol.Message, 64),
		incoming:  make(chan *protocol.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// WebSocketURL turns an http(s) or ws(s) base URL into the /ws endpoint.
func WebSocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

// Connect dials the server and starts the pumps.
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	return nil
}

// Close disconnects from the server.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.connected = false
	})
	return nil
}

// Connected reports whether the connection is up.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Incoming delivers every message from the server. It is closed when the
// connection drops.
func (c *Client) Incoming() <-chan *protocol.Message {
	return c.incoming
}

// Room returns the code of the room last seen in a private snapshot.
func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

// ID returns this connection's player id as reported by the server.
func (c *Client) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.you
}

func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.incoming)
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.logger.Debug("Received message", "type", msg.Type)
		c.track(&msg)

		select {
		case c.incoming <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// track follows room membership from private snapshots and leave
// confirmations.
func (c *Client) track(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeState:
		var v blackjack.View
		if err := json.Unmarshal(msg.Data, &v); err != nil || v.You == "" {
			return
		}
		c.mu.Lock()
		c.room, c.you = v.Code, v.You
		c.mu.Unlock()
	case protocol.TypeLeft:
		var left protocol.Left
		if err := json.Unmarshal(msg.Data, &left); err != nil {
			return
		}
		c.mu.Lock()
		if c.room == left.Code {
			c.room = ""
		}
		c.mu.Unlock()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Send queues a command.
func (c *Client) Send(t protocol.MessageType, data any) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		return err
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// WaitFor reads messages until match accepts one. Messages it skips are
// discarded.
func (c *Client) WaitFor(ctx context.Context, match func(*protocol.Message) bool) (*protocol.Message, error) {
	for {
		select {
		case msg, ok := <-c.incoming:
			if !ok {
				return nil, ErrClosed
			}
			if match(msg) {
				return msg, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// WaitForState waits for a private snapshot accepted by match.
func (c *Client) WaitForState(ctx context.Context, match func(blackjack.View) bool) (blackjack.View, error) {
	var v blackjack.View
	_, err := c.WaitFor(ctx, func(msg *protocol.Message) bool {
		if msg.Type != protocol.TypeState {
			return false
		}
		var view blackjack.View
		if err := msg.Decode(&view); err != nil || view.You == "" {
			return false
		}
		if !match(view) {
			return false
		}
		v = view
		return true
	})
	return v, err
}

// CreateRoom opens a new room and joins it.
func (c *Client) CreateRoom(name string) error {
	return c.Send(protocol.TypeCreateRoom, protocol.CreateRoom{Name: name})
}

// JoinRoom joins an existing room by code.
func (c *Client) JoinRoom(code, name string) error {
	return c.Send(protocol.TypeJoinRoom, protocol.JoinRoom{Code: code, Name: name})
}

// LeaveRoom leaves the current room.
func (c *Client) LeaveRoom() error {
	return c.Send(protocol.TypeLeaveRoom, protocol.RoomRef{Code: c.Room()})
}

func (c *Client) TakeSeat() error {
	return c.Send(protocol.TypeTakeSeat, protocol.RoomRef{Code: c.Room()})
}

func (c *Client) StandUp() error {
	return c.Send(protocol.TypeStandUp, protocol.RoomRef{Code: c.Room()})
}

func (c *Client) PlaceBet(amount int) error {
	return c.Send(protocol.TypePlaceBet, protocol.PlaceBet{Code: c.Room(), Amount: amount})
}

func (c *Client) StartRound() error {
	return c.Send(protocol.TypeStartRound, protocol.RoomRef{Code: c.Room()})
}

func (c *Client) BuyInsurance(buy bool) error {
	return c.Send(protocol.TypeBuyInsurance, protocol.BuyInsurance{Code: c.Room(), Buy: buy})
}

// Act sends a playing decision: hit, stand, double, split or surrender.
func (c *Client) Act(action string) error {
	return c.Send(protocol.TypeAction, protocol.Action{Code: c.Room(), Act: action})
}
