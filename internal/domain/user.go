package domain

// Address is the postal address block of a profile.
type Address struct {
	City    string `json:"city"`
	Street  string `json:"street"`
	Country string `json:"country"`
}

// UserProfile is returned by GET /auth/profile.
type UserProfile struct {
	ID       string  `json:"_id,omitempty"`
	Email    string  `json:"email"`
	FullName string  `json:"fullName"`
	Bio      string  `json:"bio"`
	Address  Address `json:"address"`
	Contact  string  `json:"contact"`
}

// Credentials is the body of /auth/login and /auth/register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by /auth/login.
type LoginResponse struct {
	Token string `json:"token"`
}
