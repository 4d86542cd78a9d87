package main

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsWriteWait        = 5 * time.Second
)

// writeWSWithHeartbeat drains send into conn, pinging after idle periods.
// A closed send channel ends the stream with a close frame.
func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	write := func(messageType int, data []byte) error {
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
			return err
		}
		if err := conn.WriteMessage(messageType, data); err != nil {
			return err
		}
		lastWrite = time.Now()
		return nil
	}

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			if err := write(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := write(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
		}
	}
}
