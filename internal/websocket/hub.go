package websocket

import (
	"encoding/json"
	"sync"
)

// ActivityEvent notifies a connected user about ledger activity driven by
// their wallet.
type ActivityEvent struct {
	Type            string `json:"type"`
	AssetCode       string `json:"asset_code,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Counterparty    string `json:"counterparty,omitempty"`
	TransactionHash string `json:"transaction_hash,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// BroadcastActivity fans an event out to every connection the user has
// open. Slow clients are skipped rather than blocking the caller.
func (h *Hub) BroadcastActivity(userID string, event ActivityEvent) {
	payload, _ := json.Marshal(event)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
