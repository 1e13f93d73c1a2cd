// Package objdump extracts the compliance-test addresses from a
// disassembly listing produced by objdump -D.
//
// Only lines made of exactly two whitespace-separated tokens are read, the
// shape objdump uses for symbol headers:
//
//	80000100 <end_testcode>:
//
// Labels on lines carrying any additional annotation are skipped.
package objdump

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/rvcomply/internal/ir"
)

// Symbol labels recognised in a listing.
const (
	SymbolEndTestcode    = "end_testcode"
	SymbolBeginSignature = "begin_signature"
	SymbolEndSignature   = "end_signature"
	SymbolBeginRegstate  = "begin_regstate"
)

// EndAddressOffset backs the end_testcode address up from the trailing
// instruction to the point where the simulator samples completion.
const EndAddressOffset = -4

// symbols is the order in which missing labels are reported.
var symbols = []string{
	SymbolEndTestcode,
	SymbolBeginSignature,
	SymbolEndSignature,
	SymbolBeginRegstate,
}

// Symbols returns the recognised labels. All of them are mandatory.
func Symbols() []string {
	return append([]string(nil), symbols...)
}

// Extract scans a listing and returns the four addresses. A label that
// appears more than once resolves to its last occurrence.
func Extract(r io.Reader) (ir.Addresses, error) {
	raw, err := scanSymbols(r)
	if err != nil {
		return ir.Addresses{}, err
	}
	return resolve(raw)
}

// ExtractFile is Extract over the listing at path.
func ExtractFile(path string) (ir.Addresses, error) {
	f, err := os.Open(path)
	if err != nil {
		return ir.Addresses{}, fmt.Errorf("failed to open listing: %w", err)
	}
	defer f.Close()

	addrs, err := Extract(f)
	if err != nil {
		if mse, ok := err.(*MissingSymbolError); ok {
			mse.Path = path
			return ir.Addresses{}, mse
		}
		return ir.Addresses{}, fmt.Errorf("%s: %w", path, err)
	}
	return addrs, nil
}

// scanSymbols collects the raw address of every recognised label.
func scanSymbols(r io.Reader) (map[string]uint64, error) {
	found := make(map[string]uint64, len(symbols))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		name, addrToken, ok := parseLabelLine(scanner.Text())
		if !ok || !isRecognised(name) {
			continue
		}

		addr, err := strconv.ParseUint(addrToken, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: <%s> at %q", ErrInvalidAddress, lineNum, name, addrToken)
		}
		found[name] = addr
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading listing: %w", err)
	}
	return found, nil
}

// parseLabelLine splits "<addr> <name>:" into its parts.
func parseLabelLine(line string) (name, addr string, ok bool) {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return "", "", false
	}
	label := tokens[1]
	if !strings.HasPrefix(label, "<") || !strings.HasSuffix(label, ">:") {
		return "", "", false
	}
	return label[1 : len(label)-2], tokens[0], true
}

func isRecognised(name string) bool {
	for _, s := range symbols {
		if s == name {
			return true
		}
	}
	return false
}

func resolve(raw map[string]uint64) (ir.Addresses, error) {
	var missing []string
	for _, s := range symbols {
		if _, ok := raw[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return ir.Addresses{}, &MissingSymbolError{Symbols: missing}
	}

	end := raw[SymbolEndTestcode]
	if end < -EndAddressOffset {
		return ir.Addresses{}, fmt.Errorf("%w: <%s> at %#x is below %d", ErrInvalidAddress, SymbolEndTestcode, end, -EndAddressOffset)
	}

	return ir.Addresses{
		EndAddress:     end - uint64(-EndAddressOffset),
		SignatureBegin: raw[SymbolBeginSignature],
		SignatureEnd:   raw[SymbolEndSignature],
		RegisterState:  raw[SymbolBeginRegstate],
	}, nil
}
