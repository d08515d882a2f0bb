package control

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var statsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// statsTickInterval is 1Hz: mixer stats change slowly enough that a faster
// broadcast would just be wasted traffic.
const statsTickInterval = time.Second

// handleStatsWS upgrades to a WebSocket and pushes a stats snapshot once per
// statsTickInterval until the client disconnects. This is a pure
// observability surface: it never runs on the audio thread, but each
// snapshot goes through Mixer.Stats, which briefly takes channelsMutex.
func (h *handlers) handleStatsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := statsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[control] stats websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// Drain and discard anything the client sends, so a read error (close
	// frame, network drop) is the signal to stop the push loop.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statsTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			stats := h.mixer.Stats()
			payload := map[string]any{
				"playbackTimeInSeconds": h.mixer.PlaybackTimeInSeconds(),
				"activeChannels":        stats.ActiveChannels,
				"underrunCount":         stats.UnderrunCount,
				"errored":               stats.Errored,
			}
			b, err := json.Marshal(payload)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
