/*
Package gateway is the event-dispatched boundary of the session core.

This file defines the Client struct, one per websocket connection. It manages
the connection lifecycle and the message loops (ReadPump and WritePump), and
hands every parsed frame to the gateway's dispatcher.
*/
package gateway

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gambit/internal/app/game"
	"gambit/internal/pkg/logx"
)

const (
	// timeout duration for writing to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size in bytes of an inbound frame.
	maxMessageSize = 4096

	// sendQueueSize buffers outbound events per connection.
	sendQueueSize = 256
)

// Identity is the authenticated user attached to a connection, immutable for
// the connection's lifetime.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// Player converts the identity to its public player form.
func (i Identity) Player() game.Player {
	return game.Player{UserID: i.UserID, Username: i.Username}
}

// Client represents one active websocket connection of one user.
type Client struct {
	// gateway routes this client's frames and owns the registries.
	gateway *Gateway

	// underlying websocket connection object.
	conn *websocket.Conn

	// user is the authenticated identity from the handshake token.
	user Identity

	// connID uniquely identifies this connection (one user may hold many).
	connID string

	// send queues outbound messages for WritePump.
	send chan []byte

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(gw *Gateway, conn *websocket.Conn, user Identity, connID string) *Client {
	clientLogger := logx.Logger().With().
		Str("user_id", user.UserID).
		Str("conn_id", connID).
		Logger()

	return &Client{
		gateway: gw,
		conn:    conn,
		user:    user,
		connID:  connID,
		send:    make(chan []byte, sendQueueSize),
		logger:  clientLogger,
	}
}

// ReadPump reads frames from the connection, maintains the pong deadline, and
// dispatches each frame. It unregisters the connection on exit.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(messageBytes, &frame); err != nil {
			c.logger.Warn().Err(err).
				Bytes("message_bytes", messageBytes).
				Msg("Client sent invalid JSON")
			continue
		}

		c.gateway.Dispatch(c, frame)
	}
}

// cleanupOnDisconnect unregisters the client and closes the socket when the
// ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.gateway.Unregister(c, time.Now())

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump writes queued messages to the connection and keeps the heartbeat
// going with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// enqueue marshals and queues bytes for WritePump, dropping the message when
// the queue is full rather than blocking a room operation.
func (c *Client) enqueue(data any) {
	messageBytes, err := json.Marshal(data)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling data for client")
		return
	}

	select {
	case c.send <- messageBytes:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
	}
}

// SendEvent pushes a server-initiated event to this connection.
func (c *Client) SendEvent(event string, payload any) {
	c.enqueue(Push{Event: event, Payload: payload})
}

// sendAck answers an ack-bearing frame. A disconnected client's ack is queued
// where no WritePump reads it, or dropped once the queue is full.
func (c *Client) sendAck(ackID int64, ok bool, data any, errMsg string) {
	if ackID == 0 {
		return
	}

	c.enqueue(Ack{
		Event: eventAck,
		AckID: ackID,
		OK:    ok,
		Data:  data,
		Error: errMsg,
	})
}

// Kick closes the connection from the server side with a close frame.
func (c *Client) Kick(reason string) {
	c.logger.Warn().Str("reason", reason).Msg("Closing connection from server side.")

	closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close message.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to close kicked connection.")
	}
}
