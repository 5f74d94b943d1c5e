package ws

// TopicAll receives every broadcast regardless of monitor.
const TopicAll = "all"

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages stream subscriptions by monitor ID.
type Hub struct {
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

// message couples payload with monitor identifier.
type message struct {
	monitorID string
	payload   []byte
}

// subscription defines register/unregister requests.
type subscription struct {
	monitorID string
	client    Subscriber
}

// NewHub creates an initialized Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.monitorID]; !ok {
				h.clients[sub.monitorID] = make(map[Subscriber]struct{})
			}
			h.clients[sub.monitorID][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.clients[sub.monitorID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.monitorID)
				}
			}
		case msg := <-h.broadcast:
			h.deliver(msg.monitorID, msg.payload)
			if msg.monitorID != TopicAll {
				h.deliver(TopicAll, msg.payload)
			}
		}
	}
}

func (h *Hub) deliver(topic string, payload []byte) {
	clients, ok := h.clients[topic]
	if !ok {
		return
	}
	for c := range clients {
		if err := c.Send(payload); err != nil {
			c.Close()
			delete(clients, c)
		}
	}
	if len(clients) == 0 {
		delete(h.clients, topic)
	}
}

// Register adds a client to a monitor stream. Use TopicAll for the firehose.
func (h *Hub) Register(monitorID string, client Subscriber) {
	h.register <- subscription{monitorID: monitorID, client: client}
}

// Unregister removes a client.
func (h *Hub) Unregister(monitorID string, client Subscriber) {
	h.unreg <- subscription{monitorID: monitorID, client: client}
}

// Broadcast sends payload to the monitor's clients and the firehose.
func (h *Hub) Broadcast(monitorID string, payload []byte) {
	h.broadcast <- message{monitorID: monitorID, payload: payload}
}
