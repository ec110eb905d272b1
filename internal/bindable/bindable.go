// Package bindable provides a minimal observable value: a current value, a
// subscriber list and synchronous notification.
//
// A Bindable is owned by a single execution context (the UI update loop or a
// loop.Loop) and is not safe for concurrent use.
package bindable

// ValueChangedEvent describes a value transition.
type ValueChangedEvent[T comparable] struct {
	Old T
	New T
}

type subscriber[T comparable] struct {
	id uint64
	fn func(ValueChangedEvent[T])
}

// Bindable holds a value and notifies subscribers when it is replaced.
type Bindable[T comparable] struct {
	value  T
	subs   []subscriber[T]
	nextID uint64
}

// New returns a Bindable holding v.
func New[T comparable](v T) *Bindable[T] {
	return &Bindable[T]{value: v}
}

// Value returns the current value.
func (b *Bindable[T]) Value() T {
	return b.value
}

// Set replaces the value. Subscribers are notified only when the new value
// differs from the current one.
func (b *Bindable[T]) Set(v T) {
	if b.value == v {
		return
	}
	old := b.value
	b.value = v
	b.notify(ValueChangedEvent[T]{Old: old, New: v})
}

// TriggerChange re-dispatches the current value to every subscriber.
func (b *Bindable[T]) TriggerChange() {
	b.notify(ValueChangedEvent[T]{Old: b.value, New: b.value})
}

// BindValueChanged registers fn. When runOnceImmediately is set fn is invoked
// with the current value before BindValueChanged returns. The returned func
// removes the subscription and is safe to call more than once.
func (b *Bindable[T]) BindValueChanged(fn func(ValueChangedEvent[T]), runOnceImmediately bool) (unbind func()) {
	if fn == nil {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})
	if runOnceImmediately {
		fn(ValueChangedEvent[T]{Old: b.value, New: b.value})
	}
	return func() { b.remove(id) }
}

// Subscribers reports how many callbacks are registered.
func (b *Bindable[T]) Subscribers() int {
	return len(b.subs)
}

func (b *Bindable[T]) notify(ev ValueChangedEvent[T]) {
	// Snapshot so callbacks may unbind or bind during dispatch.
	subs := make([]subscriber[T], len(b.subs))
	copy(subs, b.subs)
	for _, s := range subs {
		if !b.has(s.id) {
			continue
		}
		s.fn(ev)
	}
}

func (b *Bindable[T]) has(id uint64) bool {
	for _, s := range b.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

func (b *Bindable[T]) remove(id uint64) {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
