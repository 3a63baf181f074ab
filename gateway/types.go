package gateway

// Consumer is a gateway consumer record.
type Consumer struct {
	ID        string   `json:"id"`
	Username  string   `json:"username,omitempty"`
	CustomID  string   `json:"custom_id,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"created_at,omitempty"`
}

// ConsumerRef is the consumer reference embedded in child resources.
type ConsumerRef struct {
	ID string `json:"id"`
}

// APIKey is a key-auth credential belonging to a consumer.
type APIKey struct {
	ID        string       `json:"id"`
	Key       string       `json:"key"`
	CreatedAt int64        `json:"created_at,omitempty"`
	Consumer  *ConsumerRef `json:"consumer,omitempty"`
}

// ConsumerID returns the id of the owning consumer, or "" when the gateway omitted it.
func (k APIKey) ConsumerID() string {
	if k.Consumer == nil {
		return ""
	}
	return k.Consumer.ID
}

// CreateConsumerRequest holds the fields for a new consumer. At least one of
// Username or CustomID is required.
type CreateConsumerRequest struct {
	Username string   `json:"username,omitempty"`
	CustomID string   `json:"custom_id,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type createKeyRequest struct {
	Key string `json:"key,omitempty"`
}

// ConsumerPage is one page of a consumer listing.
type ConsumerPage struct {
	Data   []Consumer `json:"data"`
	Next   *string    `json:"next"`
	Offset string     `json:"offset,omitempty"`
}

type keyList struct {
	Data []APIKey `json:"data"`
	Next *string  `json:"next"`
}

// Status is the gateway node status payload.
type Status map[string]any
