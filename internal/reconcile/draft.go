package reconcile

import (
	"strings"
	"sync"
)

// Draft is the text a user is composing.
type Draft struct {
	mu    sync.Mutex
	value string
}

// Set replaces the draft text.
func (d *Draft) Set(v string) {
	d.mu.Lock()
	d.value = v
	d.mu.Unlock()
}

// Value returns the draft text.
func (d *Draft) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Clear empties the draft and returns what it held.
func (d *Draft) Clear() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.value
	d.value = ""
	return v
}

// Restore puts v back unless the user already typed something new.
func (d *Draft) Restore(v string) {
	d.mu.Lock()
	if strings.TrimSpace(d.value) == "" {
		d.value = v
	}
	d.mu.Unlock()
}
