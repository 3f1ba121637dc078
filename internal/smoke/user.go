package smoke

import "net/url"

type TestUser struct {
	Username string
	Password string
	Email    string
}

// DefaultUser is the fixed account every run registers. Nothing removes it
// afterwards, so a second run against a persistent store gets a conflict on
// register; use purge-user to reset.
func DefaultUser() TestUser {
	return TestUser{
		Username: "testuser_direct",
		Password: "testpassword",
		Email:    "test_direct@example.com",
	}
}

func (u TestUser) registerForm() url.Values {
	return url.Values{
		"username": {u.Username},
		"password": {u.Password},
		"email":    {u.Email},
	}
}

func (u TestUser) loginForm() url.Values {
	return url.Values{
		"username": {u.Username},
		"password": {u.Password},
	}
}
