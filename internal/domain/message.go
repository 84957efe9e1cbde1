package domain

type MessageID string

// Message is a relayed chat entry. Content is an opaque blob from the
// server's perspective (clients encrypt end to end); the core never
// parses or rewrites it. Timestamp is unix milliseconds, ascending
// within a room. System notices (join/leave) are broadcast-only and are
// never appended to the log, so IsSystem is false for every stored row.
type Message struct {
	ID        MessageID `json:"id"`
	RoomID    RoomID    `json:"roomId"`
	UserID    UserID    `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp int64     `json:"timestamp"`
	IsSystem  bool      `json:"isSystem"`
	TTL       int       `json:"ttl,omitempty"`
}
