package discovery

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rvcomply/internal/ir"
	"github.com/roach88/rvcomply/internal/objdump"
	"github.com/roach88/rvcomply/internal/testutil"
)

func writeClass(t *testing.T, root, class string, names ...string) Class {
	t.Helper()
	c := Class{
		Name:        class,
		ImageRoot:   filepath.Join(root, "images", class),
		ListingRoot: filepath.Join(root, "listings", class),
	}
	require.NoError(t, os.MkdirAll(c.ImageRoot, 0755))
	require.NoError(t, os.MkdirAll(c.ListingRoot, 0755))
	for _, name := range names {
		paths := c.PathsFor(name)
		require.NoError(t, os.WriteFile(paths.Image, []byte("S0030000FC\n"), 0644))
		require.NoError(t, os.WriteFile(paths.Listing, []byte(testutil.Listing(0x80000100, 0x80002000, 0x80002010, 0x80002020)), 0644))
	}
	return c
}

func TestPathsFor(t *testing.T) {
	c := Class{Name: "rv32i", ImageRoot: "work/rv32i", ListingRoot: "external/work/rv32i"}
	paths := c.PathsFor("I-ADD-01")

	assert.Equal(t, filepath.Join("work", "rv32i", "I-ADD-01.elf.srec"), paths.Image)
	assert.Equal(t, filepath.Join("external", "work", "rv32i", "I-ADD-01.elf.objdump"), paths.Listing)
	assert.Equal(t, filepath.Join("external", "work", "rv32i", "I-ADD-01.signature.output"), paths.Signature)
}

func TestBaseNamesDeduplicates(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, `
-- I-ADD-01.elf --
-- I-ADD-01.elf.srec --
-- I-ADD-01.elf.objdump --
-- I-SUB-01.elf.srec --
-- subdir/ignored.elf.srec --
`)

	names, err := BaseNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"I-ADD-01", "I-SUB-01"}, names)
}

func TestBaseNamesMissingDir(t *testing.T) {
	_, err := BaseNames(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad(t *testing.T) {
	c := writeClass(t, t.TempDir(), "rv32i", "I-ADD-01", "I-SUB-01")

	report, err := Load(context.Background(), c, nil)
	require.NoError(t, err)
	require.Empty(t, report.Skipped)

	want := []ir.TestDescriptor{
		{
			SourcePath: c.PathsFor("I-ADD-01").Image,
			Name:       "I-ADD-01",
			TestClass:  "rv32i",
			Addresses: ir.Addresses{
				EndAddress:     0x800000fc,
				SignatureBegin: 0x80002000,
				SignatureEnd:   0x80002010,
				RegisterState:  0x80002020,
			},
			SignaturePath: c.PathsFor("I-ADD-01").Signature,
			SourceType:    ir.SourceSREC,
		},
		{
			SourcePath: c.PathsFor("I-SUB-01").Image,
			Name:       "I-SUB-01",
			TestClass:  "rv32i",
			Addresses: ir.Addresses{
				EndAddress:     0x800000fc,
				SignatureBegin: 0x80002000,
				SignatureEnd:   0x80002010,
				RegisterState:  0x80002020,
			},
			SignaturePath: c.PathsFor("I-SUB-01").Signature,
			SourceType:    ir.SourceSREC,
		},
	}
	if diff := cmp.Diff(want, report.Tests); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSignatureAttachedWithoutExistenceCheck(t *testing.T) {
	c := writeClass(t, t.TempDir(), "rv32i", "I-ADD-01")

	report, err := Load(context.Background(), c, nil)
	require.NoError(t, err)
	require.Len(t, report.Tests, 1)

	_, statErr := os.Stat(report.Tests[0].SignaturePath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
	assert.NotEmpty(t, report.Tests[0].SignaturePath)
}

func TestLoadMissingListingIsDropped(t *testing.T) {
	c := writeClass(t, t.TempDir(), "rv32i", "A")
	// B has an image but no listing.
	require.NoError(t, os.WriteFile(c.PathsFor("B").Image, []byte("S0\n"), 0644))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	report, err := Load(context.Background(), c, logger)
	require.NoError(t, err)

	require.Len(t, report.Tests, 1)
	assert.Equal(t, "A", report.Tests[0].Name)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "B", report.Skipped[0].Name)
	assert.True(t, errors.Is(report.Skipped[0].Err, os.ErrNotExist))
	assert.Contains(t, logs.String(), "dropping test")
	assert.Contains(t, logs.String(), "test=B")
}

func TestLoadMalformedListingDoesNotAffectSiblings(t *testing.T) {
	c := writeClass(t, t.TempDir(), "rv32i", "A", "B", "C")
	require.NoError(t, os.WriteFile(c.PathsFor("B").Listing, []byte("80000100 <end_testcode>:\n"), 0644))

	report, err := Load(context.Background(), c, nil)
	require.NoError(t, err)

	names := []string{}
	for _, test := range report.Tests {
		names = append(names, test.Name)
	}
	assert.Equal(t, []string{"A", "C"}, names)

	require.Len(t, report.Skipped, 1)
	assert.True(t, objdump.IsMissingSymbol(report.Skipped[0].Err, objdump.SymbolBeginSignature))
	assert.Contains(t, report.Skipped[0].Reason(), "missing symbol")
}

func TestLoadEmptyClass(t *testing.T) {
	c := writeClass(t, t.TempDir(), "rv32imc")

	report, err := Load(context.Background(), c, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Tests)
	assert.Empty(t, report.Skipped)
}

func TestLoadMissingImageRoot(t *testing.T) {
	c := Class{Name: "rv32i", ImageRoot: filepath.Join(t.TempDir(), "nope")}

	_, err := Load(context.Background(), c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class rv32i")
}

func TestLoadCancelled(t *testing.T) {
	c := writeClass(t, t.TempDir(), "rv32i", "A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, c, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadAllSortsAcrossClasses(t *testing.T) {
	root := t.TempDir()
	rv32i := writeClass(t, root, "rv32i", "I-SUB-01", "I-ADD-01")
	rv32im := writeClass(t, root, "rv32im", "DIV", "I-ADD-01")

	report, err := LoadAll(context.Background(), []Class{rv32im, rv32i}, nil)
	require.NoError(t, err)

	var keys []string
	for _, test := range report.Tests {
		keys = append(keys, test.Key())
	}
	assert.Equal(t, []string{"rv32im/DIV", "rv32i/I-ADD-01", "rv32im/I-ADD-01", "rv32i/I-SUB-01"}, keys)
}

func TestLoadAllCollectsSkips(t *testing.T) {
	root := t.TempDir()
	rv32i := writeClass(t, root, "rv32i", "A")
	rv32im := writeClass(t, root, "rv32im", "B")
	require.NoError(t, os.Remove(rv32im.PathsFor("B").Listing))

	report, err := LoadAll(context.Background(), []Class{rv32i, rv32im}, nil)
	require.NoError(t, err)
	assert.Len(t, report.Tests, 1)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "rv32im", report.Skipped[0].Class)
}

func TestLoadAllRejectsDuplicateKeys(t *testing.T) {
	root := t.TempDir()
	c := writeClass(t, root, "rv32i", "A")

	_, err := LoadAll(context.Background(), []Class{c, c}, nil)
	assert.ErrorIs(t, err, ErrDuplicateTest)
}

func TestLoadAllPropagatesUnreadableRoot(t *testing.T) {
	root := t.TempDir()
	good := writeClass(t, root, "rv32i", "A")
	bad := Class{Name: "rv32e", ImageRoot: filepath.Join(root, "missing")}

	_, err := LoadAll(context.Background(), []Class{good, bad}, nil)
	assert.Error(t, err)
}
