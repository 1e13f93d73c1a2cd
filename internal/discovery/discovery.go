// Package discovery finds runnable compliance tests on disk.
//
// A test class has two directory roots: one holding compiled memory images
// and a parallel one holding their disassembly listings. For every base
// name found among the images, discovery derives three paths by suffix
// convention and extracts the listing's addresses:
//
//	<images>/<name>.elf.srec          memory image
//	<listings>/<name>.elf.objdump     disassembly listing
//	<listings>/<name>.signature.output reference signature
//
// Discovery tolerates partial failure: a test whose listing is missing or
// malformed is logged and dropped without affecting its siblings.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/rvcomply/internal/ir"
	"github.com/roach88/rvcomply/internal/objdump"
)

// Fixed artifact suffixes.
const (
	ImageSuffix     = ".elf.srec"
	ListingSuffix   = ".elf.objdump"
	SignatureSuffix = ".signature.output"
)

// ErrDuplicateTest is returned by LoadAll when two classes yield the same
// class/name key.
var ErrDuplicateTest = errors.New("duplicate test")

// Class locates one test class on disk.
type Class struct {
	Name        string `json:"name"`
	ImageRoot   string `json:"images"`
	ListingRoot string `json:"listings"`
}

// Paths are the three artifact locations derived for one base name.
type Paths struct {
	Image     string
	Listing   string
	Signature string
}

// PathsFor applies the suffix convention to a base name.
func (c Class) PathsFor(name string) Paths {
	listing := filepath.Join(c.ListingRoot, name+ListingSuffix)
	return Paths{
		Image:     filepath.Join(c.ImageRoot, name+ImageSuffix),
		Listing:   listing,
		Signature: strings.TrimSuffix(listing, ListingSuffix) + SignatureSuffix,
	}
}

// Skip records a test dropped during discovery.
type Skip struct {
	Class string `json:"class"`
	Name  string `json:"name"`
	Err   error  `json:"-"`
}

// Reason is the error text, for display.
func (s Skip) Reason() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Report is the outcome of discovering one or more classes.
type Report struct {
	Tests   []ir.TestDescriptor
	Skipped []Skip
}

// Load discovers the tests of a single class. Only an unreadable image
// root is an error; an empty result is valid.
func Load(ctx context.Context, class Class, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	names, err := BaseNames(class.ImageRoot)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", class.Name, err)
	}

	report := &Report{Tests: make([]ir.TestDescriptor, 0, len(names))}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		test, err := loadOne(class, name)
		if err != nil {
			logger.Warn("dropping test", "class", class.Name, "test", name, "error", err)
			report.Skipped = append(report.Skipped, Skip{Class: class.Name, Name: name, Err: err})
			continue
		}
		logger.Debug("discovered test", "class", class.Name, "test", name, "end", fmt.Sprintf("%#x", test.EndAddress))
		report.Tests = append(report.Tests, test)
	}

	return report, nil
}

func loadOne(class Class, name string) (ir.TestDescriptor, error) {
	paths := class.PathsFor(name)

	addrs, err := objdump.ExtractFile(paths.Listing)
	if err != nil {
		return ir.TestDescriptor{}, err
	}

	// The reference signature is attached without checking it exists; the
	// harness decides at run time whether verification is available.
	return ir.NewTestDescriptor(paths.Image, name, class.Name, addrs).WithSignature(paths.Signature), nil
}

// LoadAll discovers every class and returns the combined set sorted by
// name, then class.
func LoadAll(ctx context.Context, classes []Class, logger *slog.Logger) (*Report, error) {
	all := &Report{}
	seen := make(map[string]bool)

	for _, class := range classes {
		report, err := Load(ctx, class, logger)
		if err != nil {
			return nil, err
		}
		for _, test := range report.Tests {
			if seen[test.Key()] {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateTest, test.Key())
			}
			seen[test.Key()] = true
		}
		all.Tests = append(all.Tests, report.Tests...)
		all.Skipped = append(all.Skipped, report.Skipped...)
	}

	SortTests(all.Tests)
	return all, nil
}

// SortTests orders descriptors by name, then class.
func SortTests(tests []ir.TestDescriptor) {
	slices.SortStableFunc(tests, func(a, b ir.TestDescriptor) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.TestClass, b.TestClass)
	})
}

// BaseNames lists the distinct base names of the regular files in dir,
// sorted. The base name is everything before the first dot, so
// "I-ADD-01.elf.srec" and "I-ADD-01.elf" both yield "I-ADD-01".
func BaseNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	var names []string
	for _, entry := range entries {
		// Follow symlinks: a linked image counts like a regular file.
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		name, _, _ := strings.Cut(entry.Name(), ".")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	slices.Sort(names)
	return names, nil
}
