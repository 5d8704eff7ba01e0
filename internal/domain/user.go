package domain

// User is a vehicle owner account. APIToken authenticates API calls,
// PushToken addresses acknowledgement notifications.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	PushToken string `json:"push_token,omitempty"`
	APIToken  string `json:"-"`
}
