package app

// Actor identifies who performed an operation, for audit logging.
// Members are records, not auth principals, so the actor is self-reported.
type Actor struct {
	Name string
	Role string
	IP   string
}

func (a Actor) orAnonymous() Actor {
	if a.Name == "" {
		a.Name = "anonymous"
	}
	return a
}
