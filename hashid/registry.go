package hashid

import (
	"maps"
	"sync"
)

// TypeProp is the type id of property files.
const TypeProp uint32 = 0x00B1B104

// Registry hashes names and optionally records them for reverse lookup.
//
// A Registry is safe for concurrent use. Recording is a registry-wide mode:
// while it is enabled, every non-literal name passed to Hash is remembered,
// except names containing a line break, which the names table cannot hold.
type Registry struct {
	mu        sync.Mutex
	aliases   map[string]uint32
	recording bool
	recorded  map[uint32]string
}

// Option configures a Registry.
type Option func(*Registry)

// WithAlias maps name to a fixed id instead of its hash. Alias lookup is
// case-insensitive like hashing.
func WithAlias(name string, id uint32) Option {
	return func(r *Registry) {
		r.aliases[normalize(name)] = id
	}
}

// NewRegistry creates a Registry. The "prop" alias for TypeProp is always
// installed and may be overridden.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		aliases:  map[string]uint32{"prop": TypeProp},
		recorded: make(map[uint32]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hash returns the id for name and records it when recording is enabled.
// Hex literals are never recorded.
func (r *Registry) Hash(name string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.aliases[normalize(name)]; ok {
		r.recordLocked(id, name)
		return id
	}
	if id, ok := ParseLiteral(name); ok {
		return id
	}
	id := Sum(name)
	r.recordLocked(id, name)
	return id
}

func (r *Registry) recordLocked(id uint32, name string) {
	if !r.recording || !tableSafe(name) {
		return
	}
	if _, ok := r.recorded[id]; !ok {
		r.recorded[id] = name
	}
}

// ClearRecorded forgets every recorded name.
func (r *Registry) ClearRecorded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.recorded)
}

// SetRecording enables or disables recording.
func (r *Registry) SetRecording(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = enabled
}

// Recording reports whether recording is enabled.
func (r *Registry) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Recorded returns a copy of the recorded id to name table.
func (r *Registry) Recorded() map[uint32]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.recorded)
}

// Record clears previously recorded names and enables recording until the
// returned session is closed.
func (r *Registry) Record() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{r: r, prev: r.recording}
	clear(r.recorded)
	r.recording = true
	return s
}

// Session is an active recording started by Registry.Record.
type Session struct {
	r    *Registry
	prev bool
	once sync.Once
}

// Close restores the recording state that was in effect when the session
// started. Close is idempotent.
func (s *Session) Close() {
	s.once.Do(func() {
		s.r.SetRecording(s.prev)
	})
}

// Names returns the names recorded so far in this session.
func (s *Session) Names() map[uint32]string {
	return s.r.Recorded()
}
