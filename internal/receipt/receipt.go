// Package receipt renders settled orders as plain text for printing.
package receipt

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/comanda-pos/api/internal/service"
)

const width = 40

// Render writes r as a fixed-width text receipt.
func Render(w io.Writer, r service.Receipt) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", center("RECEIPT"))
	fmt.Fprintf(&buf, "Table: %s\n", r.TableLabel)
	fmt.Fprintf(&buf, "Order: %s\n", r.OrderID)
	if !r.ClosedAt.IsZero() {
		fmt.Fprintf(&buf, "Closed: %s\n", r.ClosedAt.Local().Format("2006-01-02 15:04"))
	}
	buf.WriteString(strings.Repeat("-", width) + "\n")

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "%dx %s\t%10s\n", l.Quantity, l.Name, l.Subtotal.StringFixed(2))
		if l.Quantity > 1 {
			fmt.Fprintf(tw, "   @ %s\t\n", l.UnitPrice.StringFixed(2))
		}
		if l.Notes != "" {
			fmt.Fprintf(tw, "   (%s)\t\n", l.Notes)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	buf.WriteString(strings.Repeat("-", width) + "\n")
	fmt.Fprintf(&buf, "%-*s%s\n", width-len(r.Total.StringFixed(2)), "TOTAL", r.Total.StringFixed(2))
	if r.PaymentMethod != "" {
		fmt.Fprintf(&buf, "Paid by %s\n", strings.ToLower(string(r.PaymentMethod)))
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func center(s string) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}
