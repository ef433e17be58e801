// Package export renders a group's full state as flat tabular records for
// download. It is a read-only projection; nothing here mutates the group.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mmynk/tanda/internal/models"
)

// Rows flattens a group into CSV-ready records: a header block with the
// group's basics, the member roster, the payout order, and one row per
// round per member with that member's payment status.
func Rows(g *models.Group) [][]string {
	rows := [][]string{
		{"section", "group"},
		{"name", g.Name},
		{"contribution", formatAmount(g.ContributionAmount)},
		{"status", string(g.Status)},
		{"current_round", strconv.Itoa(g.CurrentRound)},
		{},
		{"section", "members"},
		{"id", "name", "phone"},
	}
	for _, m := range g.Members {
		rows = append(rows, []string{m.ID, m.Name, m.Phone})
	}

	rows = append(rows, nil, []string{"section", "payout_order"}, []string{"position", "member"})
	for i, id := range g.PayoutOrder {
		rows = append(rows, []string{strconv.Itoa(i + 1), g.MemberName(id)})
	}

	rows = append(rows, nil, []string{"section", "rounds"},
		[]string{"round", "recipient", "payout_completed", "member", "payment_status"})
	for i := range g.Rounds {
		r := &g.Rounds[i]
		recipient := g.MemberName(r.PayoutMemberID)
		completed := strconv.FormatBool(r.PayoutCompleted)
		for _, p := range r.Payments {
			rows = append(rows, []string{
				strconv.Itoa(r.RoundNumber),
				recipient,
				completed,
				g.MemberName(p.MemberID),
				string(p.Status),
			})
		}
	}
	return rows
}

// WriteCSV writes the group's flattened rows to w. Empty rows from Rows
// become blank lines separating the sections.
func WriteCSV(w io.Writer, g *models.Group) error {
	cw := csv.NewWriter(w)
	for _, row := range Rows(g) {
		if len(row) == 0 {
			// csv.Writer cannot emit a bare newline through Write.
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}
			continue
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
