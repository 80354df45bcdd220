package types

// Event kinds emitted by successful extrinsics.
const (
	EventTransfer     = "transfer"
	EventClaimCreated = "claim_created"
	EventClaimRevoked = "claim_revoked"
)

// EventAttribute is one key-value pair of an event. Indexed attributes
// are meant for lookups by account or claim.
type EventAttribute struct {
	Key   string `cramberry:"1"`
	Value string `cramberry:"2"`
	Index bool   `cramberry:"3"`
}

// Event records a state change made by an extrinsic.
type Event struct {
	Kind       string           `cramberry:"1"`
	Attributes []EventAttribute `cramberry:"2"`
}

// NewEvent builds an event of kind from alternating key, value pairs.
// Keys listed in indexed are marked for indexing.
func NewEvent(kind string, indexed []string, kv ...string) Event {
	ev := Event{Kind: kind, Attributes: make([]EventAttribute, 0, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		attr := EventAttribute{Key: kv[i], Value: kv[i+1]}
		for _, k := range indexed {
			if k == attr.Key {
				attr.Index = true
				break
			}
		}
		ev.Attributes = append(ev.Attributes, attr)
	}
	return ev
}

// Attr returns the value of the first attribute named key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
