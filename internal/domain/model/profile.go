package model

// Profile is owned elsewhere; this service only writes its Plan field.
type Profile struct {
	UserID string
	Plan   string
}
