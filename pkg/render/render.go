// Package render formats engine state for human-readable output.
package render

import (
	"strings"

	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
)

const (
	idWidth     = 10
	volumeWidth = 13
	priceWidth  = 7
)

const (
	tableBorder = "+----------+-------------+-------+-------+-------------+----------+"
	tableTitle  = "| BUY                            | SELL                           |"
	tableHeader = "| Id       | Volume      | Price | Price | Volume      | Id       |"
)

// BookTable renders both sides of the book as a fixed-width table.
// Rows pair the i-th best buy with the i-th best sell; a side with fewer
// orders gets blank cells.
func BookTable(buys, sells []*core.Order) string {
	var sb strings.Builder
	sb.WriteString(tableBorder + "\n")
	sb.WriteString(tableTitle + "\n")
	sb.WriteString(tableHeader + "\n")
	sb.WriteString(tableBorder + "\n")

	rows := len(buys)
	if len(sells) > rows {
		rows = len(sells)
	}

	for i := 0; i < rows; i++ {
		sb.WriteString("|")
		if i < len(buys) {
			buy := buys[i]
			sb.WriteString(padLeft(buy.ID(), idWidth))
			sb.WriteString("|")
			sb.WriteString(padLeft(groupDigits(buy.VisibleQuantity()), volumeWidth))
			sb.WriteString("|")
			sb.WriteString(padLeft(groupDigits(buy.Price()), priceWidth))
			sb.WriteString("|")
		} else {
			sb.WriteString(strings.Repeat(" ", idWidth) + "|")
			sb.WriteString(strings.Repeat(" ", volumeWidth) + "|")
			sb.WriteString(strings.Repeat(" ", priceWidth) + "|")
		}
		if i < len(sells) {
			sell := sells[i]
			sb.WriteString(padLeft(groupDigits(sell.Price()), priceWidth))
			sb.WriteString("|")
			sb.WriteString(padLeft(groupDigits(sell.VisibleQuantity()), volumeWidth))
			sb.WriteString("|")
			sb.WriteString(padLeft(sell.ID(), idWidth))
		} else {
			sb.WriteString(strings.Repeat(" ", priceWidth) + "|")
			sb.WriteString(strings.Repeat(" ", volumeWidth) + "|")
			sb.WriteString(strings.Repeat(" ", idWidth))
		}
		sb.WriteString("|\n")
	}

	sb.WriteString(tableBorder + "\n")
	return sb.String()
}

// groupDigits formats the integer part of d with comma thousands separators.
// Any fractional part is kept verbatim after the grouped integer part.
func groupDigits(d fpdecimal.Decimal) string {
	s := d.String()
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var sign string
	if strings.HasPrefix(intPart, "-") {
		sign = "-"
		intPart = intPart[1:]
	}

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}

	out := sign + sb.String()
	if hasFrac {
		out += "." + fracPart
	}
	return out
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
