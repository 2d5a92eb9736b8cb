package domain

// Identity exposes the current session to components that need the actor id.
// The session store is the single writer; everything else only reads.
type Identity interface {
	// Current returns a copy of the live session, or false when anonymous
	Current() (*Session, bool)
}

// Resetter is implemented by every collection cache so logout can empty it
type Resetter interface {
	Reset()
}
