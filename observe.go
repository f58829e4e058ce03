package prefs

// Observer receives the value a cell settled on after a successful update.
// This is the binding surface for reactive frameworks: register an observer
// that re-notifies whichever consumers previously read the cell. Observers run
// synchronously after the in-memory value advances and never see failed
// updates.
type Observer[T any] interface {
	CellChanged(key string, value T)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc[T any] func(key string, value T)

// CellChanged implements Observer.
func (f ObserverFunc[T]) CellChanged(key string, value T) {
	if f != nil {
		f(key, value)
	}
}

// WithObserver registers an observer notified after each successful update.
func WithObserver[T any](observer Observer[T]) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		if observer == nil {
			return
		}
		cfg.observers = append(cfg.observers, observer)
	}
}
