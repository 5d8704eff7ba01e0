package domain

// PushMessage is a structured push notification: human-readable title/body
// plus a machine-readable data payload, addressed by device token.
type PushMessage struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// FanoutResult accounts for every responder a fanout attempted to reach.
// A responder lands in Succeeded when at least one channel delivered and
// none failed, in Failed otherwise. Responders without any contact channel
// appear in neither.
type FanoutResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

func (r FanoutResult) SucceededCount() int { return len(r.Succeeded) }
