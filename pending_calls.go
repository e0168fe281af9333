package main

import (
	"sort"
	"sync"
	"time"
)

// PendingCall is an immutable snapshot of an incoming call awaiting an
// operator decision (accept or decline) from the dashboard.
type PendingCall struct {
	CallSid      string
	From         string
	RegisteredAt time.Time
}

// PendingCallRegistry tracks calls parked on hold until a human decides what
// to do with them. Entries expire lazily: every read sweeps entries older
// than maxAge, so abandoned rings never need explicit cleanup.
type PendingCallRegistry struct {
	mu     sync.Mutex
	calls  map[string]PendingCall
	maxAge time.Duration
	now    func() time.Time
}

// NewPendingCallRegistry creates a registry whose entries expire after maxAge
func NewPendingCallRegistry(maxAge time.Duration) *PendingCallRegistry {
	return &PendingCallRegistry{
		calls:  make(map[string]PendingCall),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Register adds a pending call. Registering an already-present CallSid
// overwrites the entry; Twilio re-ringing the same call is treated as a
// fresh ring.
func (r *PendingCallRegistry) Register(callSid, from string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[callSid] = PendingCall{
		CallSid:      callSid,
		From:         from,
		RegisteredAt: r.now(),
	}
}

// Get returns the pending call for callSid, if still pending
func (r *PendingCallRegistry) Get(callSid string) (PendingCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	call, ok := r.calls[callSid]
	return call, ok
}

// Oldest returns the earliest-registered pending call. The dashboard shows a
// single incoming call at a time, so only the head of the queue is surfaced.
func (r *PendingCallRegistry) Oldest() (PendingCall, bool) {
	calls := r.List()
	if len(calls) == 0 {
		return PendingCall{}, false
	}
	return calls[0], true
}

// List returns all pending calls, oldest first
func (r *PendingCallRegistry) List() []PendingCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	calls := make([]PendingCall, 0, len(r.calls))
	for _, call := range r.calls {
		calls = append(calls, call)
	}
	sort.Slice(calls, func(i, j int) bool {
		return calls[i].RegisteredAt.Before(calls[j].RegisteredAt)
	})
	return calls
}

// Remove deletes a pending call and reports whether it was present.
// Removing an absent entry is a no-op, so a decline racing a hangup (or a
// second accept) stays safe.
func (r *PendingCallRegistry) Remove(callSid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	_, ok := r.calls[callSid]
	if ok {
		delete(r.calls, callSid)
	}
	return ok
}

// SweepExpired drops every entry older than the registry max age
func (r *PendingCallRegistry) SweepExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
}

// Len reports the number of pending calls without sweeping
func (r *PendingCallRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *PendingCallRegistry) sweepLocked() {
	now := r.now()
	for sid, call := range r.calls {
		if now.Sub(call.RegisteredAt) > r.maxAge {
			delete(r.calls, sid)
		}
	}
}
