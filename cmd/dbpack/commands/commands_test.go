package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/dbpack"
	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/hashid"
	"github.com/meigma/dbpack/internal/config"
	"github.com/meigma/dbpack/internal/testutil"
	"github.com/meigma/dbpack/signature"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestPackAndInspect(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	in := filepath.Join(t.TempDir(), "MyMod")
	testutil.WriteTree(t, in, map[string]string{
		"textures/rock.png":  "rock",
		"props/tree.prop":    "raw",
		"0x40404000/sig.txt": "existing",
	})
	out := filepath.Join(t.TempDir(), "MyMod.package")

	stdout, _, err := execute(t, "pack", in, out, "--signature", "patch51", "--compression", "zstd", "--debug-info")
	require.NoError(t, err)
	assert.Contains(t, stdout, "MyMod -> "+out)
	assert.Contains(t, stdout, "sha256:")

	c := testutil.ReadContainer(t, out)
	assert.True(t, c.Has(dbpack.DebugInfoKey))
	assert.True(t, c.Has(dbpack.NamesKey))

	stdout, _, err = execute(t, "inspect", out, "--verify")
	require.NoError(t, err)
	assert.Contains(t, stdout, "textures")
	assert.Contains(t, stdout, "rock")
	assert.Contains(t, stdout, "0x40404000")
	assert.Contains(t, stdout, "data digest verified")

	stdout, _, err = execute(t, "inspect", out, "--ids")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0x"+hexID(hashid.Sum("textures")))
	assert.NotContains(t, stdout, "rock")
}

func hexID(id uint32) string {
	const digits = "0123456789abcdef"
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = digits[id&0xf]
		id >>= 4
	}
	return string(b)
}

func TestPackFailureReportsFile(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	in := t.TempDir()
	testutil.WriteTree(t, in, map[string]string{"grp/item.txt/other": "x"})
	out := filepath.Join(t.TempDir(), "out.package")

	_, stderr, err := execute(t, "pack", in, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbpack.ErrMissingNestedFile)
	assert.Contains(t, stderr, "failed")
	assert.Contains(t, stderr, filepath.Join(in, "grp", "item.txt"))

	// finalized despite the failure
	_, err = archive.Open(out)
	assert.NoError(t, err)
}

func TestPackRequiresInput(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	_, stderr, err := execute(t, "pack")
	require.Error(t, err)
	assert.Contains(t, stderr, "cannot determine what to pack")
}

func TestPackFromConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"a/grp/one.txt": "one",
		"b/grp/two.txt": "two",
		"dbpack.yaml": `
concurrency: 2
projects:
  - name: a
    input: a
  - name: b
    input: b
    signature: bot_parts
`,
	})
	t.Setenv(config.EnvVar, filepath.Join(dir, "dbpack.yaml"))

	_, _, err := execute(t, "pack")
	require.Error(t, err, "two projects need --project or --all")

	stdout, _, err := execute(t, "pack", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "a -> ")
	assert.Contains(t, stdout, "b -> ")

	for _, name := range []string{"a", "b"} {
		_, err := os.Stat(filepath.Join(dir, name+".package"))
		require.NoError(t, err)
	}

	src := signature.BotParts.Source()
	sig := archive.Key{Group: signature.Group, Instance: hashid.Sum(src.FileName()), Type: signature.Type}
	assert.True(t, testutil.ReadContainer(t, filepath.Join(dir, "b.package")).Has(sig))
	assert.False(t, testutil.ReadContainer(t, filepath.Join(dir, "a.package")).Has(sig))
}

func TestResolveJobsOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dbpack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
defaults:
  signature: patch51
projects:
  - name: mod
    input: src
`), 0o644))
	t.Setenv(config.EnvVar, path)

	var flags packFlags
	fs := pflag.NewFlagSet("pack", pflag.ContinueOnError)
	flags.register(fs)

	jobs, concurrency, err := resolveJobs(fs, nil, flags)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 2, concurrency)
	assert.Equal(t, "patch51", jobs[0].project.Signature)
	assert.Equal(t, filepath.Join(dir, "src"), jobs[0].project.Input)

	require.NoError(t, fs.Parse([]string{"--signature", "none", "--compression", "lz4", "--project", "mod"}))
	jobs, _, err = resolveJobs(fs, nil, flags)
	require.NoError(t, err)
	assert.Equal(t, "none", jobs[0].project.Signature)
	assert.Equal(t, "lz4", jobs[0].project.Compression)

	require.NoError(t, fs.Parse([]string{"--project", "missing"}))
	_, _, err = resolveJobs(fs, nil, flags)
	assert.ErrorContains(t, err, "not found")
}

func TestPackOptionsRejectsUnknownValues(t *testing.T) {
	t.Parallel()

	_, err := packOptions(config.Project{Signature: "nope"}, packFlags{})
	assert.Error(t, err)

	_, err = packOptions(config.Project{Compression: "gzip"}, packFlags{})
	assert.Error(t, err)

	opts, err := packOptions(config.Project{Name: "m", Compression: "zstd", Debug: true, MaxFileSize: 10}, packFlags{})
	require.NoError(t, err)
	assert.Len(t, opts, 4)
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dbpack 1.2.3")
	assert.Contains(t, stdout, "abc")
}
