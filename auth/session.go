package auth

// Session identifies the authenticated user for the duration of one
// request. It is constructed by the middleware and passed explicitly to
// every domain operation; nothing reads an ambient global user.
type Session struct {
	UserID string
	Email  string
}
