// Package debuginfo records which source file produced each verbatim entry
// of a packed container.
//
// Only entries copied byte for byte are recorded: their content on disk is
// the content in the container, so tooling can map a loaded resource back to
// the file that produced it. Encoder output has no such file.
package debuginfo

import (
	"sync"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/hashid"
	"github.com/meigma/dbpack/internal/codec"
)

// Key is the reserved key the recorded information is written under.
var Key = archive.Key{
	Group:    hashid.Sum("dbpack_debug"),
	Instance: hashid.Sum("debug_information"),
	Type:     hashid.Sum("cbor"),
}

// Entry is one verbatim file.
type Entry struct {
	Folder   string `cbor:"folder"`
	File     string `cbor:"file"`
	Group    uint32 `cbor:"group"`
	Instance uint32 `cbor:"instance"`
	Type     uint32 `cbor:"type"`
}

// Information is the serialized form of a Recorder.
type Information struct {
	Project string  `cbor:"project"`
	Input   string  `cbor:"input"`
	Files   []Entry `cbor:"files"`
}

// Recorder accumulates entries for one packing run.
type Recorder struct {
	mu   sync.Mutex
	info Information
}

// NewRecorder creates a Recorder for the named project packed from input.
func NewRecorder(project, input string) *Recorder {
	return &Recorder{info: Information{Project: project, Input: input}}
}

// Add records a verbatim file.
func (r *Recorder) Add(folder, file string, group, instance, typ uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.Files = append(r.info.Files, Entry{
		Folder:   folder,
		File:     file,
		Group:    group,
		Instance: instance,
		Type:     typ,
	})
}

// Len returns the number of recorded files.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.info.Files)
}

// Entries returns a copy of the recorded files in recording order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.info.Files...)
}

// Encode serializes the recorded information as deterministic CBOR.
func (r *Recorder) Encode() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return codec.Marshal(r.info)
}

// Writer receives the encoded information.
type Writer interface {
	WriteFile(key archive.Key, data []byte) error
}

// Save writes the recorded information into w under Key.
func (r *Recorder) Save(w Writer) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	return w.WriteFile(Key, data)
}

// Decode parses data produced by Encode.
func Decode(data []byte) (Information, error) {
	var info Information
	err := codec.Unmarshal(data, &info)
	return info, err
}
