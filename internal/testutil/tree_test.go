package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTree(t *testing.T) {
	dir := t.TempDir()
	WriteTree(t, dir, `
-- images/A.elf.srec --
S00600004844521B
-- listings/nested/A.elf.objdump --
80000100 <end_testcode>:
`)

	data, err := os.ReadFile(filepath.Join(dir, "images", "A.elf.srec"))
	require.NoError(t, err)
	assert.Equal(t, "S00600004844521B\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "listings", "nested", "A.elf.objdump"))
	require.NoError(t, err)
	assert.Equal(t, "80000100 <end_testcode>:\n", string(data))
}

func TestListing(t *testing.T) {
	listing := Listing(0x80000100, 0x80002000, 0x80002010, 0x80002020)

	assert.Contains(t, listing, "\n80000100 <end_testcode>:\n")
	assert.Contains(t, listing, "\n80002000 <begin_signature>:\n")
	assert.Contains(t, listing, "\n80002010 <end_signature>:\n")
	assert.Contains(t, listing, "\n80002020 <begin_regstate>:\n")
	assert.Equal(t, 4, strings.Count(listing, ">:"))
}
