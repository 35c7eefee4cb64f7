package booking

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers []*websocket.Conn
	mu          sync.Mutex
)

// HandleSlotWS keeps a websocket open and pushes slot availability events to
// the calendar client until it disconnects.
func HandleSlotWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	mu.Lock()
	subscribers = append(subscribers, conn)
	mu.Unlock()

	for {
		// This keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Clean up on disconnect
	mu.Lock()
	newList := make([]*websocket.Conn, 0, len(subscribers))
	for _, c := range subscribers {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers = newList
	mu.Unlock()

	conn.Close()
}

// BroadcastSlotEvent fans a serialized slot event out to every subscriber,
// dropping dead connections.
func BroadcastSlotEvent(val []byte) {
	mu.Lock()
	defer mu.Unlock()

	newList := subscribers[:0]
	for _, conn := range subscribers {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}
	subscribers = newList
}
