package observability

// NoOpObserver discards every event.
type NoOpObserver struct{}

func (n *NoOpObserver) ObserveOperation(OperationContext) {}

// NewNoOpObserver returns an Observer that does nothing.
func NewNoOpObserver() Observer {
	return &NoOpObserver{}
}

type multiObserver []Observer

func (m multiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}

// Multi fans events out to every non-nil observer. It returns nil when
// none is left.
func Multi(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	default:
		return m
	}
}
