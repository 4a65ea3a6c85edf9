package websocket

import "github.com/rs/zerolog/log"

// targeted is a message addressed to the watchers of one article.
type targeted struct {
	articleID string
	message   []byte
}

// subscription is a watch/unwatch request from a client's read pump.
type subscription struct {
	client    *Client
	articleID string
	cancel    bool
}

// Hub maintains the set of active clients and broadcasts messages to them.
// All map access happens on the Run goroutine, so broadcasts from request
// handlers never race with client registration.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages for global broadcast.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages addressed to a single article's watchers.
	direct chan targeted

	// Watch/unwatch requests from client read pumps.
	subscribe chan subscription

	// A map of article IDs to the set of clients watching them.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:     make(chan []byte),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		direct:        make(chan targeted),
		subscribe:     make(chan subscription),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Feed client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscriptions(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Feed client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscriptions(client)
				}
			}
		case t := <-h.direct:
			for client := range h.subscriptions[t.articleID] {
				select {
				case client.Send <- t.message:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscriptions(client)
				}
			}
		case sub := <-h.subscribe:
			if sub.cancel {
				if subs, ok := h.subscriptions[sub.articleID]; ok {
					delete(subs, sub.client)
					if len(subs) == 0 {
						delete(h.subscriptions, sub.articleID)
					}
				}
				continue
			}
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			if h.subscriptions[sub.articleID] == nil {
				h.subscriptions[sub.articleID] = make(map[*Client]bool)
			}
			h.subscriptions[sub.articleID][sub.client] = true
		}
	}
}

// BroadcastTo sends a message to all clients watching a specific article.
func (h *Hub) BroadcastTo(articleID string, message []byte) {
	h.direct <- targeted{articleID: articleID, message: message}
}

// Subscribe registers the client as a watcher of articleID. Called from the
// client's read pump.
func (h *Hub) Subscribe(client *Client, articleID string) {
	h.subscribe <- subscription{client: client, articleID: articleID}
}

// Unsubscribe removes the client as a watcher of articleID.
func (h *Hub) Unsubscribe(client *Client, articleID string) {
	h.subscribe <- subscription{client: client, articleID: articleID, cancel: true}
}

func (h *Hub) removeSubscriptions(client *Client) {
	for articleID, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, articleID)
			}
		}
	}
}
