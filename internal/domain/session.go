package domain

// Session is derived state, never stored. IsLoggedIn is always the
// validity of Token at the time of the last transition.
type Session struct {
	Token      string `json:"-"`
	IsLoggedIn bool   `json:"is_logged_in"`
	UserID     string `json:"user_id,omitempty"`
	Epoch      uint64 `json:"epoch"`
}
