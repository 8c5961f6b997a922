package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/studyhive/studyhive-go/studyhive"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writePagination(w io.Writer, p studyhive.Pagination) error {
	if p.TotalPages <= 1 {
		return nil
	}
	_, err := fmt.Fprintf(w, "page %d of %d (%d total)\n", p.Page, p.TotalPages, p.Total)
	return err
}
