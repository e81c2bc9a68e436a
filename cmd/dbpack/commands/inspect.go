package commands

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/dbpack"
	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/hashid"
)

type inspectFlags struct {
	verify bool
	ids    bool
}

func newInspectCmd() *cobra.Command {
	var flags inspectFlags
	cmd := &cobra.Command{
		Use:   "inspect <container>",
		Short: "List the entries of a container",
		Long: `List the entries of a container.

Ids are shown by name when the container carries a names table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err := inspect(cmd.OutOrStdout(), p, args[0], flags); err != nil {
				return p.Error("inspect failed", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "recompute the data digest")
	cmd.Flags().BoolVar(&flags.ids, "ids", false, "show raw ids instead of names")
	return cmd
}

func inspect(out io.Writer, p *printer, path string, flags inspectFlags) error {
	r, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	names := map[uint32]string{}
	if !flags.ids {
		names, err = readNames(r)
		if err != nil {
			return err
		}
	}

	p.Detail("%s\n", path)
	p.Info("entries:   %d\n", r.Len())
	p.Info("data size: %d\n", r.DataSize())
	p.Info("blake3:    %s\n\n", hex.EncodeToString(r.DataDigest()))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tINSTANCE\tTYPE\tSIZE\tMEMSIZE\tCOMPRESSION")
	for _, e := range r.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			label(names, e.Key.Group),
			label(names, e.Key.Instance),
			label(names, e.Key.Type),
			e.Size, e.MemSize, e.Compression)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if flags.verify {
		if err := r.Verify(); err != nil {
			return err
		}
		p.Success("data digest verified\n")
	}
	return nil
}

// readNames loads the names table, if the container has one.
func readNames(r *archive.Reader) (map[uint32]string, error) {
	e, ok := r.Lookup(dbpack.NamesKey)
	if !ok {
		return map[uint32]string{}, nil
	}
	data, err := r.ReadFile(e)
	if err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}
	return hashid.ParseNames(bytes.NewReader(data))
}

func label(names map[uint32]string, id uint32) string {
	if name, ok := names[id]; ok {
		if name == "" {
			return fmt.Sprintf("\"\" (0x%08x)", id)
		}
		return name
	}
	return fmt.Sprintf("0x%08x", id)
}
