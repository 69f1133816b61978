package scanner

import (
	"bufio"
	"fmt"
	"io"
)

const tableColumns = 16

const (
	symbolPresent  = '@'
	symbolReserved = 'R'
	symbolAbsent   = '.'
)

// RenderTable writes the scan grid: a column header, then one row per
// high nibble with the row's base address in hex and one cell per address.
// Scripts parse this layout, keep it stable.
func RenderTable(w io.Writer, report Report, markReserved bool) error {
	bw := bufio.NewWriter(w)

	_, _ = bw.WriteString(" ")
	for col := 0; col < tableColumns; col++ {
		_, _ = fmt.Fprintf(bw, "  %X", col)
	}
	_ = bw.WriteByte('\n')

	for i, e := range report {
		if i%tableColumns == 0 {
			_, _ = fmt.Fprintf(bw, "%02x ", uint8(e.Address))
		} else {
			_, _ = bw.WriteString("  ")
		}

		_ = bw.WriteByte(symbol(e.Outcome, markReserved))

		if i%tableColumns == tableColumns-1 {
			_ = bw.WriteByte('\n')
		}
	}
	if len(report)%tableColumns != 0 {
		_ = bw.WriteByte('\n')
	}

	return bw.Flush()
}

func symbol(o Outcome, markReserved bool) byte {
	switch o {
	case Present:
		return symbolPresent
	case Reserved:
		if markReserved {
			return symbolReserved
		}
		return symbolAbsent
	default:
		return symbolAbsent
	}
}

// RenderPresenceList writes one line per answering address, or a single
// line saying nothing answered.
func RenderPresenceList(w io.Writer, report Report) error {
	present := report.Present()
	if len(present) == 0 {
		_, err := fmt.Fprintln(w, NoDeviceLine)
		return err
	}

	for _, a := range present {
		if _, err := fmt.Fprintln(w, PresentLine(a)); err != nil {
			return err
		}
	}
	return nil
}

// NoDeviceLine is printed by RenderPresenceList when nothing answered.
const NoDeviceLine = "NO I2C Device Detected on Bus"

// PresentLine reports a device answering at a.
func PresentLine(a Address) string {
	return "YES I2C Device present at " + a.String()
}

// AbsentLine reports that nothing answered at a.
func AbsentLine(a Address) string {
	return "NO I2C Device at " + a.String()
}
