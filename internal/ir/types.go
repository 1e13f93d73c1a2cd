package ir

import (
	"fmt"
	"path/filepath"
)

// SourceType tags the format of a descriptor's memory image.
type SourceType string

// SourceSREC is the only image format the simulator currently loads.
const SourceSREC SourceType = "srec"

// Addresses are the four memory locations extracted from a disassembly
// listing. EndAddress already has the end-of-test offset applied.
type Addresses struct {
	EndAddress     uint64 `json:"end_address"`
	SignatureBegin uint64 `json:"signature_begin"`
	SignatureEnd   uint64 `json:"signature_end"`
	RegisterState  uint64 `json:"register_state"`
}

// TestDescriptor identifies one compliance test and the addresses the
// simulator needs to run and judge it.
type TestDescriptor struct {
	// SourcePath is the simulator-loadable memory image.
	SourcePath string `json:"source_path"`

	// Name is the binary's base file name, unique within TestClass.
	Name string `json:"name"`

	// TestClass is the instruction-set variant the test targets.
	TestClass string `json:"test_class"`

	Addresses

	// SignaturePath is the reference signature to verify against.
	// Empty when discovery attached none.
	SignaturePath string `json:"signature_path,omitempty"`

	SourceType SourceType `json:"source_type"`
}

// NewTestDescriptor builds a descriptor from already-resolved addresses.
func NewTestDescriptor(source, name, class string, addrs Addresses) TestDescriptor {
	return TestDescriptor{
		SourcePath: source,
		Name:       name,
		TestClass:  class,
		Addresses:  addrs,
		SourceType: SourceSREC,
	}
}

// WithSignature returns a copy of d carrying a reference signature path.
func (d TestDescriptor) WithSignature(path string) TestDescriptor {
	d.SignaturePath = path
	return d
}

// Key is the class-qualified name. Output artifacts are keyed on it so two
// classes reusing a test name never collide.
func (d TestDescriptor) Key() string {
	return d.TestClass + "/" + d.Name
}

// ArtifactPath returns <root>/<class>/<name><ext>, the location of a
// per-test artifact (log, waveform, generated signature).
func (d TestDescriptor) ArtifactPath(root, ext string) string {
	return filepath.Join(root, d.TestClass, d.Name+ext)
}

func (d TestDescriptor) String() string {
	return fmt.Sprintf("%s end=%#x sig=[%#x,%#x) reg=%#x %s",
		d.Key(), d.EndAddress, d.SignatureBegin, d.SignatureEnd, d.RegisterState, d.SourcePath)
}
