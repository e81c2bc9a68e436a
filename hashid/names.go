package hashid

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// WriteNames writes names as UTF-8 lines of the form "name<TAB>0x%08x",
// sorted by name and then id so identical tables produce identical bytes.
// Names containing a line break cannot be represented and are left out.
func WriteNames(w io.Writer, names map[uint32]string) error {
	type pair struct {
		id   uint32
		name string
	}
	pairs := make([]pair, 0, len(names))
	for id, name := range names {
		if !tableSafe(name) {
			continue
		}
		pairs = append(pairs, pair{id: id, name: name})
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if c := cmp.Compare(a.name, b.name); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		if _, err := fmt.Fprintf(bw, "%s\t0x%08x\n", p.name, p.id); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseNames reads a table written by WriteNames.
func ParseNames(r io.Reader) (map[uint32]string, error) {
	names := make(map[uint32]string)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		i := strings.LastIndexByte(text, '\t')
		if i < 0 {
			return nil, fmt.Errorf("names line %d: missing tab separator", line)
		}
		id, err := strconv.ParseUint(strings.TrimPrefix(text[i+1:], "0x"), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("names line %d: %w", line, err)
		}
		names[uint32(id)] = text[:i]
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// tableSafe reports whether name fits on a single line of the names table.
func tableSafe(name string) bool {
	return !strings.ContainsAny(name, "\r\n")
}

func normalize(name string) string {
	return strings.ToLower(name)
}
