// Feed follows the analysis API websocket and hands every published
// envelope to a callback, reconnecting with backoff.
package feed

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/analysisapi"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	maxRetries     = 10
	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = 60 * time.Second

	// Envelopes arrive once per refresh, so the deadline is generous.
	readTimeout  = 15 * time.Minute
	pingInterval = 30 * time.Second
)

// StartListener blocks until ctx is done or maxRetries consecutive
// connection attempts have failed.
func StartListener(ctx context.Context, host string, handleEnvelope func(envelope *analysisapi.Envelope)) {
	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}

	retryCount := 0
	for {
		if retryCount > 0 {
			retryDelay := RetryDelay(retryCount)
			log.Printf("Retrying connection in %v... (attempt %d/%d)", retryDelay, retryCount+1, maxRetries)
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				log.Println("Shutdown requested during retry wait")
				return
			}
		}

		log.Printf("Connecting to %s", u.String())

		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		c, _, err := dialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Connection failed: %v", err)
			retryCount++
			if retryCount >= maxRetries {
				log.Printf("Max retries (%d) reached. Giving up.", maxRetries)
				return
			}
			continue
		}

		log.Println("Connected! Accepting analysis results.")
		retryCount = 0

		connectionBroken := handleConnection(ctx, c, handleEnvelope)
		c.Close()
		if !connectionBroken {
			return
		}

		log.Println("Connection lost, will retry...")
	}
}

// RetryDelay is the exponential backoff before attempt retryCount+1.
func RetryDelay(retryCount int) time.Duration {
	if retryCount > 5 {
		return maxRetryDelay
	}
	retryDelay := time.Duration(1<<retryCount) * baseRetryDelay
	if retryDelay > maxRetryDelay {
		retryDelay = maxRetryDelay
	}
	return retryDelay
}

// ParseEnvelope returns nil for anything that is not an envelope.
func ParseEnvelope(message []byte) *analysisapi.Envelope {
	var envelope analysisapi.Envelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		return nil
	}
	return &envelope
}

// handleConnection returns true when the connection broke and false on
// a clean shutdown.
func handleConnection(
	ctx context.Context,
	c *websocket.Conn,
	handleEnvelope func(envelope *analysisapi.Envelope),
) bool {
	done := make(chan struct{})

	c.SetReadDeadline(time.Now().Add(readTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go func() {
		defer close(done)
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error: %v", err)
				} else {
					log.Printf("Connection closed: %v", err)
				}
				return
			}

			c.SetReadDeadline(time.Now().Add(readTimeout))

			if messageType != websocket.TextMessage {
				log.Printf("Received unexpected message type: %d", messageType)
				continue
			}
			if envelope := ParseEnvelope(message); envelope != nil {
				handleEnvelope(envelope)
			} else {
				log.Printf("Failed to parse envelope: %s", string(message))
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return true
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Printf("Failed to send ping: %v", err)
			}
		case <-ctx.Done():
			log.Println("Shutdown requested, closing connection...")

			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Error sending close message:", err)
			}

			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return false
		}
	}
}
