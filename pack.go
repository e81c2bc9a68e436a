package dbpack

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/encoder"
	"github.com/meigma/dbpack/hashid"
	"github.com/meigma/dbpack/internal/debuginfo"
	"github.com/meigma/dbpack/internal/sizing"
	"github.com/meigma/dbpack/signature"
)

// Task is a single packing run of an input tree into an output container.
//
// A Task runs once, either in the calling goroutine with Run or in the
// background with Start. Its accessors are safe to call from any goroutine
// while it runs.
type Task struct {
	id     uuid.UUID
	input  string
	output string
	cfg    packConfig
	debug  *debuginfo.Recorder

	gate    gate
	started atomic.Bool
	done    chan struct{}

	mu       sync.Mutex
	current  string
	progress float64
	err      error
}

// NewTask creates a Task that packs the group folders under input into the
// container at output.
func NewTask(input, output string, opts ...Option) *Task {
	t := &Task{
		id:     uuid.New(),
		input:  input,
		output: output,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&t.cfg)
	}
	if t.cfg.registry == nil {
		t.cfg.registry = hashid.NewRegistry()
	}
	if !t.cfg.encodersSet {
		t.cfg.encoders = encoder.Defaults(t.cfg.registry)
	}
	if t.cfg.debug {
		abs, err := filepath.Abs(input)
		if err != nil {
			abs = input
		}
		t.debug = debuginfo.NewRecorder(t.cfg.debugProject, abs)
	}
	return t
}

// Pack packs input into output and returns the run's failure, if any.
func Pack(ctx context.Context, input, output string, opts ...Option) error {
	return NewTask(input, output, opts...).Run(ctx)
}

// ID returns the run identifier attached to the task's log records.
func (t *Task) ID() uuid.UUID {
	return t.id
}

// Input returns the directory being packed.
func (t *Task) Input() string {
	return t.input
}

// Output returns the container path being written.
func (t *Task) Output() string {
	return t.output
}

// Signature returns the signature source embedded by the run, or nil.
func (t *Task) Signature() signature.Source {
	return t.cfg.signature
}

// DebugEntries returns the debug information recorded so far, or nil when
// debug recording is disabled.
func (t *Task) DebugEntries() []DebugEntry {
	if t.debug == nil {
		return nil
	}
	return t.debug.Entries()
}

// CurrentFile returns the file being processed. After a failure it is the
// file that caused it.
func (t *Task) CurrentFile() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Progress returns the completed fraction of the run, in [0, 1].
func (t *Task) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Err returns the failure of a finished run, or nil.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Pause asks the run to stop before its next item. The item being
// processed is finished first.
func (t *Task) Pause() {
	t.gate.pause()
}

// Resume releases a paused run. It has no effect on a running one.
func (t *Task) Resume() {
	t.gate.release()
}

// Paused reports whether a pause has been requested and not yet released.
func (t *Task) Paused() bool {
	return t.gate.paused()
}

// Suspended reports whether the run is currently blocked by a pause.
func (t *Task) Suspended() bool {
	return t.gate.blocked()
}

// Done returns a channel closed when the run has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Start runs the task in a new goroutine. Use Wait or Done to observe its
// completion. Calling Start on a task that already ran does nothing.
func (t *Task) Start(ctx context.Context) {
	if t.started.Load() {
		return
	}
	go func() {
		_ = t.Run(ctx) //nolint:errcheck // reported through Wait and Err
	}()
}

// Wait blocks until the run finishes and returns its failure, if any.
// Wait must only be called after Run or Start.
func (t *Task) Wait() error {
	<-t.done
	return t.Err()
}

// Run packs the input tree and returns the run's failure, if any.
//
// The output container is finalized whatever the outcome, so a failed run
// still leaves a readable container holding the entries written before the
// failure. Failures are reported as *PackError.
func (t *Task) Run(ctx context.Context) error {
	if !t.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer close(t.done)

	start := time.Now()
	log := t.log()
	log.Info("packing", "input", t.input, "output", t.output)

	err := t.run(ctx, log)

	t.mu.Lock()
	t.err = err
	t.mu.Unlock()

	if err != nil {
		log.Error("pack failed", "file", t.CurrentFile(), "elapsed", time.Since(start), "error", err)
	} else {
		log.Info("packed", "output", t.output, "elapsed", time.Since(start))
	}

	for _, fn := range t.cfg.afterPack {
		fn(t)
	}
	return err
}

func (t *Task) run(ctx context.Context, log *slog.Logger) (err error) {
	root, err := os.OpenRoot(t.input)
	if err != nil {
		t.setCurrent(t.input)
		return t.fail(err)
	}
	defer root.Close()

	folders, err := groupFolders(root)
	if err != nil {
		t.setCurrent(t.input)
		return t.fail(err)
	}

	writerOpts := append([]archive.WriterOption{archive.WithLogger(t.cfg.logger)}, t.cfg.writerOpts...)
	w, err := archive.Create(t.output, writerOpts...)
	if err != nil {
		t.setCurrent(t.output)
		return t.fail(err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			t.setCurrent(t.output)
			err = t.fail(cerr)
		}
	}()

	reg := t.cfg.registry
	session := reg.Record()
	defer session.Close()

	for _, fn := range t.cfg.beforePack {
		fn(t)
	}

	t.emit(ProgressEvent{Stage: StageEnumerating, GroupsTotal: len(folders)})

	hasSignature := false
	for i, folder := range folders {
		groupPath := filepath.Join(t.input, folder)
		t.setCurrent(groupPath)
		group := reg.Hash(folder)

		items, err := fs.ReadDir(root.FS(), folder)
		if err != nil {
			return t.fail(err)
		}
		for _, entry := range items {
			if err := t.gate.wait(ctx); err != nil {
				return t.fail(err)
			}
			if err := ctx.Err(); err != nil {
				return t.fail(err)
			}

			it := item{
				folder: folder,
				name:   entry.Name(),
				group:  group,
				rel:    path.Join(folder, entry.Name()),
				path:   filepath.Join(groupPath, entry.Name()),
			}
			isDir := entry.IsDir()
			if entry.Type()&fs.ModeSymlink != 0 {
				t.setCurrent(it.path)
				info, err := root.Stat(it.rel)
				if err != nil {
					return t.fail(err)
				}
				isDir = info.IsDir()
				log.Debug("following symlink", "path", it.path, "dir", isDir)
			}
			if err := t.packItem(ctx, root, w, it, isDir); err != nil {
				return t.fail(err)
			}
		}

		if group == SignatureGroup {
			hasSignature = true
		}

		done := i + 1
		t.setProgress(float64(done) / float64(len(folders)))
		t.emit(ProgressEvent{
			Stage:       StagePacking,
			Path:        groupPath,
			GroupsDone:  done,
			GroupsTotal: len(folders),
		})
	}

	t.emit(ProgressEvent{Stage: StageMetadata, GroupsDone: len(folders), GroupsTotal: len(folders)})

	if err := writeNames(w, session.Names()); err != nil {
		return t.fail(fmt.Errorf("write names: %w", err))
	}

	switch {
	case t.cfg.signature == nil:
	case hasSignature:
		log.Debug("input already carries a signature", "group", fmt.Sprintf("0x%08x", SignatureGroup))
	default:
		entry, err := writeSignature(ctx, w, reg, t.cfg.signature)
		if err != nil {
			return t.fail(fmt.Errorf("write signature %s: %w", t.cfg.signature.FileName(), err))
		}
		log.Debug("signature written", "name", t.cfg.signature.FileName(), "key", entry.Key.String(), "size", entry.Size)
	}

	if t.debug != nil {
		if err := t.debug.Save(w); err != nil {
			return t.fail(fmt.Errorf("write debug information: %w", err))
		}
	}

	t.setProgress(1)
	t.emit(ProgressEvent{Stage: StageDone, GroupsDone: len(folders), GroupsTotal: len(folders)})
	return nil
}

// packItem writes one item through the first encoder that claims it, or
// verbatim when none does.
func (t *Task) packItem(ctx context.Context, root *os.Root, w *archive.Writer, it item, isDir bool) error {
	t.setCurrent(it.path)
	it, err := resolveItem(root, it, isDir, t.cfg.encoders)
	if err != nil {
		return err
	}
	t.setCurrent(it.path)

	for _, enc := range t.cfg.encoders {
		ok, err := enc.Encode(ctx, it.path, w, it.group)
		if err != nil {
			return fmt.Errorf("encoder %s: %w", enc.Name(), err)
		}
		if ok {
			return nil
		}
	}

	reg := t.cfg.registry
	base, ext := encoder.SplitName(it.name)
	key := archive.Key{Group: it.group, Instance: reg.Hash(base), Type: reg.Hash(ext)}

	data, err := t.readVerbatim(root, it.rel)
	if err != nil {
		return err
	}
	if err := w.WriteFile(key, data); err != nil {
		return err
	}

	if t.debug != nil {
		t.debug.Add(it.folder, it.name, key.Group, key.Instance, key.Type)
	}
	return nil
}

func (t *Task) readVerbatim(root *os.Root, rel string) ([]byte, error) {
	f, err := root.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sizing.ReadAllWithLimit(f, t.cfg.maxFileSize, ErrFileTooLarge)
}

// groupFolders lists the directories at the top of root in name order.
// Symlinks to directories inside root count as folders; dangling links are
// ignored like any other non-directory.
func groupFolders(root *os.Root) ([]string, error) {
	entries, err := fs.ReadDir(root.FS(), ".")
	if err != nil {
		return nil, err
	}
	folders := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := root.Stat(e.Name())
			switch {
			case errors.Is(err, fs.ErrNotExist):
				continue
			case err != nil:
				return nil, fmt.Errorf("group folder %s: %w", e.Name(), err)
			}
			if info.IsDir() {
				folders = append(folders, e.Name())
			}
			continue
		}
		if e.IsDir() {
			folders = append(folders, e.Name())
		}
	}
	return folders, nil
}

func (t *Task) fail(err error) error {
	var pe *PackError
	if errors.As(err, &pe) {
		return pe
	}
	return &PackError{Path: t.CurrentFile(), Err: err}
}

func (t *Task) setCurrent(p string) {
	t.mu.Lock()
	t.current = p
	t.mu.Unlock()
}

func (t *Task) setProgress(p float64) {
	t.mu.Lock()
	t.progress = p
	t.mu.Unlock()
}

func (t *Task) emit(ev ProgressEvent) {
	if t.cfg.progress == nil {
		return
	}
	ev.Progress = t.Progress()
	t.cfg.progress(ev)
}

func (t *Task) log() *slog.Logger {
	logger := t.cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With("run_id", t.id.String())
}
