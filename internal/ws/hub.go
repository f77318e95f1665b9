package ws

import (
	"log"
	"sync"
)

// Hub fans messages out to clients grouped into rooms, one room per
// conversation. Registration and broadcast go through channels so all
// room-map mutation happens on the Run goroutine.
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan roomMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *log.Logger
}

type roomMessage struct {
	room string
	data []byte
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan roomMessage, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			room := h.rooms[client.room]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[client.room] = room
			}
			room[client] = true
			total := len(room)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("WS connected | room=%s clients=%d", client.room, total)
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case msg := <-h.broadcast:
			h.mutex.RLock()
			clientsSnapshot := make([]*Client, 0, len(h.rooms[msg.room]))
			for c := range h.rooms[msg.room] {
				clientsSnapshot = append(clientsSnapshot, c)
			}
			h.mutex.RUnlock()

			// Stalled clients are removed inline: queueing them on
			// h.unregister from this goroutine can fill the buffer and
			// deadlock Run against itself.
			for _, client := range clientsSnapshot {
				select {
				case client.send <- msg.data:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	removed := false
	if room, ok := h.rooms[client.room]; ok {
		if _, ok := room[client]; ok {
			delete(room, client)
			close(client.send)
			removed = true
		}
		if len(room) == 0 {
			delete(h.rooms, client.room)
		}
	}
	h.mutex.Unlock()

	if removed && h.logger != nil {
		h.logger.Printf("WS disconnected | room=%s", client.room)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

func (h *Hub) Broadcast(room string, message []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- roomMessage{room: room, data: message}:
	default:
		if h.logger != nil {
			h.logger.Printf("WS broadcast dropped | room=%s reason=buffer_full", room)
		}
	}
}

func (h *Hub) RoomClientCount(room string) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[room])
}
