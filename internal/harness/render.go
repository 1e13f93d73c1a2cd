package harness

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/roach88/rvcomply/internal/ir"
)

const ruleWidth = 80

// ColorEnabled reports whether w is a terminal that should get coloured
// output. NO_COLOR (via color.NoColor) turns colour off everywhere.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

var statusColors = map[ir.Status]color.Attribute{
	ir.Pass:            color.FgGreen,
	ir.SignatureFail:   color.FgRed,
	ir.SimFail:         color.FgRed,
	ir.Timeout:         color.FgRed,
	ir.ExpectedFail:    color.FgYellow,
	ir.ExpectedTimeout: color.FgYellow,
	ir.Unknown:         color.FgMagenta,
}

type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer, enableColor bool) *printer {
	return &printer{w: w, color: enableColor}
}

func (p *printer) header(commands bool) {
	if commands {
		fmt.Fprintf(p.w, "%11s %20s %s\n", "Result", "Test", "Sim command")
	} else {
		fmt.Fprintf(p.w, "%11s %20s\n", "Result", "Test")
	}
	fmt.Fprintln(p.w, strings.Repeat("-", ruleWidth))
}

func (p *printer) row(o Outcome, commands bool) {
	label := p.label(o.Verdict.Status)
	if commands {
		fmt.Fprintf(p.w, "%s %20s %s\n", label, o.Test.Name, o.Command)
	} else {
		fmt.Fprintf(p.w, "%s %20s\n", label, o.Test.Name)
	}
}

// label pads before colouring so escape codes do not count toward the
// column width.
func (p *printer) label(s ir.Status) string {
	padded := fmt.Sprintf("%11s", s.Label())
	attr, ok := statusColors[s]
	if !ok {
		return padded
	}
	c := color.New(attr)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(padded)
}

func (p *printer) summary(s ir.Summary) {
	fmt.Fprintln(p.w, SummaryLine(s))
	if s.Success() {
		fmt.Fprintln(p.w, "--- Success ---")
	} else {
		fmt.Fprintln(p.w, "--- Failure ---")
	}
}

// SummaryLine renders the one-line run summary.
func SummaryLine(s ir.Summary) string {
	return fmt.Sprintf("p=%d / f=%d / t=%d / u=%d / ef=%d",
		s.Passes, s.Fails, s.Timeouts, s.Unknowns, s.Expected())
}
