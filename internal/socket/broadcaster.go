package socket

// Broadcaster provides high-level methods for pushing dashboard events to a
// client's open tabs.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// SendTicketCreated tells the client's other tabs about a ticket that was
// just created in one of them.
func (b *Broadcaster) SendTicketCreated(clientID string, ticket map[string]interface{}) {
	b.hub.SendToClient(clientID, MessageTicketCreated, ticket)
}

// SendDataRefreshed signals that a re-resolution landed and the dashboard
// should re-fetch.
func (b *Broadcaster) SendDataRefreshed(clientID string) {
	b.hub.SendToClient(clientID, MessageDataRefreshed, nil)
}

// SendSessionExpired tells a briefly idle browser its session was swept.
func (b *Broadcaster) SendSessionExpired(clientID string) {
	b.hub.SendToClient(clientID, MessageSessionExpired, nil)
}
