package table

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/nixvuln/nixvuln/nixvuln/presenter/models"
)

// Presenter renders one row per (derivation, advisory) pair.
type Presenter struct {
	document models.Document
}

func NewPresenter(doc models.Document) *Presenter {
	return &Presenter{
		document: doc,
	}
}

func (p *Presenter) Present(output io.Writer) error {
	if err := p.presentMatches(output); err != nil {
		return err
	}

	for _, s := range p.document.Skipped {
		if _, err := fmt.Fprintf(output, "skipped %s: %s\n", s.Source, s.Reason); err != nil {
			return err
		}
	}
	return nil
}

func (p *Presenter) presentMatches(output io.Writer) error {
	rows := getRows(p.document)

	if len(rows) == 0 {
		_, err := io.WriteString(output, "No vulnerabilities found\n")
		return err
	}

	table := tablewriter.NewWriter(output)
	table.SetHeader([]string{"Name", "Installed", "Vulnerability", "Severity", "Score"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(rows)
	table.Render()
	return nil
}

func getRows(doc models.Document) [][]string {
	var rows [][]string
	for _, m := range doc.Matches {
		for _, v := range m.Vulnerabilities {
			score := ""
			if v.Score > 0 {
				score = fmt.Sprintf("%.1f", v.Score)
			}
			rows = append(rows, []string{m.Pname, m.Version, v.ID, v.Severity, score})
		}
	}
	return rows
}
