package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/dbpack"
	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/internal/config"
	"github.com/meigma/dbpack/signature"
)

// packFlags holds the flags of the pack command.
type packFlags struct {
	signature     string
	signatureFile string
	compression   string
	maxFileSize   uint64
	debug         bool
	progress      bool
	all           bool
	projects      []string
}

func (f *packFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.signature, "signature", "none", "built-in signature: none, patch51 or bot_parts")
	fs.StringVar(&f.signatureFile, "signature-file", "", "embed this file as the signature instead of a built-in one")
	fs.StringVar(&f.compression, "compression", "none", "entry compression: none, zstd or lz4")
	fs.Uint64Var(&f.maxFileSize, "max-file-size", 0, "largest verbatim file in bytes (0 for no limit)")
	fs.BoolVar(&f.debug, "debug-info", false, "record debug information for verbatim files")
	fs.BoolVar(&f.progress, "progress", false, "print a line per packed group folder")
	fs.BoolVar(&f.all, "all", false, "pack every project in the project file")
	fs.StringSliceVarP(&f.projects, "project", "p", nil, "pack the named project from the project file (repeatable)")
}

// job is one project to pack.
type job struct {
	name    string
	project config.Project
}

func newPackCmd() *cobra.Command {
	var flags packFlags
	cmd := &cobra.Command{
		Use:   "pack [input [output]]",
		Short: "Pack a project folder into a container",
		Long: `Pack a project folder into a container.

With arguments, packs input into output (default: input + ".package").
Without arguments, packs projects from the project file named by --config
or $` + config.EnvVar + `. Flags given explicitly override project settings.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runPack(ctx, cmd, args, flags)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runPack(ctx context.Context, cmd *cobra.Command, args []string, flags packFlags) error {
	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(cmd.ErrOrStderr(), globals.verbose)

	jobs, concurrency, err := resolveJobs(cmd.Flags(), args, flags)
	if err != nil {
		return p.Error("cannot determine what to pack", err,
			"pass an input folder, or use --config with --project or --all")
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for _, j := range jobs {
		g.Go(func() error {
			return packOne(ctx, p, j, flags, logger)
		})
	}
	return g.Wait()
}

// resolveJobs turns arguments, flags and the project file into jobs.
func resolveJobs(fs *pflag.FlagSet, args []string, flags packFlags) ([]job, int, error) {
	if len(args) > 0 {
		input := args[0]
		output := filepath.Clean(input) + ".package"
		if len(args) == 2 {
			output = args[1]
		}
		proj := config.Project{
			Name:        filepath.Base(filepath.Clean(input)),
			Input:       input,
			Output:      output,
			Signature:   flags.signature,
			Compression: flags.compression,
			MaxFileSize: flags.maxFileSize,
			Debug:       flags.debug,
		}
		return []job{{name: proj.Name, project: proj}}, 1, nil
	}

	cfg, ok, err := loadConfig()
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, errors.New("no input folder and no project file")
	}

	var projects []config.Project
	switch {
	case len(flags.projects) > 0:
		for _, name := range flags.projects {
			proj, found := cfg.Project(name)
			if !found {
				return nil, 0, fmt.Errorf("project %q not found", name)
			}
			projects = append(projects, proj)
		}
	case flags.all || len(cfg.Projects) == 1:
		projects = cfg.Resolved()
	default:
		return nil, 0, fmt.Errorf("project file lists %d projects; choose with --project or --all", len(cfg.Projects))
	}
	if len(projects) == 0 {
		return nil, 0, errors.New("project file lists no projects")
	}

	jobs := make([]job, len(projects))
	for i, proj := range projects {
		overrideProject(fs, &proj, flags)
		jobs[i] = job{name: proj.Name, project: proj}
	}
	return jobs, cfg.Concurrency, nil
}

// overrideProject applies flags the user set explicitly.
func overrideProject(fs *pflag.FlagSet, proj *config.Project, flags packFlags) {
	if fs.Changed("signature") {
		proj.Signature = flags.signature
	}
	if fs.Changed("compression") {
		proj.Compression = flags.compression
	}
	if fs.Changed("max-file-size") {
		proj.MaxFileSize = flags.maxFileSize
	}
	if fs.Changed("debug-info") {
		proj.Debug = flags.debug
	}
}

// packOptions maps a project to packing options.
func packOptions(proj config.Project, flags packFlags) ([]dbpack.Option, error) {
	var opts []dbpack.Option

	switch {
	case flags.signatureFile != "":
		opts = append(opts, dbpack.WithSignatureSource(signature.FileSource(flags.signatureFile)))
	default:
		kind, err := signature.ParseKind(proj.Signature)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dbpack.WithSignature(kind))
	}

	compression, err := archive.ParseCompression(proj.Compression)
	if err != nil {
		return nil, err
	}
	if compression != archive.CompressionNone {
		opts = append(opts, dbpack.WithWriterOptions(
			archive.WithCompression(compression),
			archive.WithSkipCompression(archive.DefaultSkipCompression(1024)),
		))
	}

	if proj.MaxFileSize > 0 {
		opts = append(opts, dbpack.WithMaxFileSize(proj.MaxFileSize))
	}
	if proj.Debug {
		opts = append(opts, dbpack.WithDebugInfo(proj.Name))
	}
	return opts, nil
}

func packOne(ctx context.Context, p *printer, j job, flags packFlags, logger *slog.Logger) error {
	opts, err := packOptions(j.project, flags)
	if err != nil {
		return p.Error(fmt.Sprintf("invalid settings for %s", j.name), err)
	}
	opts = append(opts, dbpack.WithLogger(logger))
	if flags.progress {
		opts = append(opts, dbpack.WithProgress(func(ev dbpack.ProgressEvent) {
			if ev.Stage == dbpack.StagePacking {
				p.Detail("%s: %d/%d %s\n", j.name, ev.GroupsDone, ev.GroupsTotal, filepath.Base(ev.Path))
			}
		}))
	}

	task := dbpack.NewTask(j.project.Input, j.project.Output, opts...)
	if err := task.Run(ctx); err != nil {
		hints := []string{"file: " + task.CurrentFile()}
		if errors.Is(err, dbpack.ErrMissingNestedFile) {
			hints = append(hints, "a folder item must contain a file with its own name")
		}
		return p.Error(fmt.Sprintf("packing %s failed", j.name), err, hints...)
	}

	dgst, entries, err := describeOutput(j.project.Output)
	if err != nil {
		return p.Error(fmt.Sprintf("cannot read %s", j.project.Output), err)
	}
	p.Success("%s -> %s (%d entries, %s)\n", j.name, j.project.Output, entries, dgst)
	return nil
}

// describeOutput returns the digest and entry count of a packed container.
func describeOutput(path string) (digest.Digest, int, error) {
	r, err := archive.Open(path)
	if err != nil {
		return "", 0, err
	}
	entries := r.Len()
	if err := r.Close(); err != nil {
		return "", 0, err
	}

	f, err := os.Open(path) //nolint:gosec // path is the container just written
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	dgst, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", 0, err
	}
	return dgst, entries, nil
}
