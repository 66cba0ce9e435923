package domain

type SessionState struct {
	CartID    CartID
	SignedIn  bool
	Pending   Operation
	LastError error
	Drawer    string
}

func (s SessionState) HasCart() bool {
	return s.CartID != ""
}

// Apply folds one notification into the session mirror and returns the new state.
func (s SessionState) Apply(event Event) SessionState {
	switch event.Kind {
	case EventRequest:
		s.Pending = event.Operation
	case EventReceive:
		s.Pending = ""
		if event.Err != nil {
			s.LastError = event.Err
			return s
		}
		s.LastError = nil
		if event.Operation == OperationGetCart {
			s.CartID = event.CartID
		}
	case EventReset:
		return SessionState{SignedIn: s.SignedIn, Drawer: s.Drawer}
	case EventToggleDrawer:
		s.Drawer = event.Drawer
	}

	return s
}
