package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// WriteTree expands a txtar archive under dir. Each "-- name --" section
// becomes a file; intermediate directories are created as needed.
//
//	testutil.WriteTree(t, root, `
//	-- images/A.elf.srec --
//	S00600004844521B
//	-- listings/A.elf.objdump --
//	80000100 <end_testcode>:
//	`)
func WriteTree(t *testing.T, dir, archive string) {
	t.Helper()

	ar := txtar.Parse([]byte(archive))
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// Listing renders a minimal objdump listing declaring the four compliance
// symbols at the given raw addresses.
func Listing(endTestcode, beginSignature, endSignature, beginRegstate uint64) string {
	return listingLine(endTestcode, "end_testcode") +
		"80000104:\t0ff0000f          \tfence\n" +
		listingLine(beginSignature, "begin_signature") +
		listingLine(endSignature, "end_signature") +
		listingLine(beginRegstate, "begin_regstate")
}

func listingLine(addr uint64, symbol string) string {
	return fmt.Sprintf("\n%08x <%s>:\n", addr, symbol)
}
