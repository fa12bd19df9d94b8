package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"github.com/benz9527/xindex/lib/interval"
)

type entry = interval.Entry[interval.Range, string]

// renderer prints the command results as go-pretty tables.
type renderer struct {
	out   io.Writer
	style string
	limit int
}

func (r *renderer) newTable(title string, header table.Row) table.Writer {
	// Titles are printed above the table so they are never wrapped.
	fmt.Fprintln(r.out, title)
	tbl := table.NewWriter()
	switch strings.ToLower(r.style) {
	case "light":
		tbl.SetStyle(table.StyleLight)
	case "rounded":
		tbl.SetStyle(table.StyleRounded)
	default:
		tbl.SetStyle(table.StyleDefault)
	}
	if header != nil {
		tbl.AppendHeader(header)
	}
	return tbl
}

func (r *renderer) flush(tbl table.Writer) {
	if strings.EqualFold(r.style, "markdown") {
		fmt.Fprintln(r.out, tbl.RenderMarkdown())
		return
	}
	fmt.Fprintln(r.out, tbl.Render())
}

// truncate caps n rows to the configured limit.
func (r *renderer) truncate(n int) int {
	if r.limit > 0 && n > r.limit {
		return r.limit
	}
	return n
}

func (r *renderer) footer(tbl table.Writer, shown, total int) {
	if shown < total {
		tbl.AppendFooter(table.Row{"", "", "", "shown", humanize.Comma(int64(shown))})
	}
	tbl.AppendFooter(table.Row{"", "", "", "total", humanize.Comma(int64(total))})
}

func (r *renderer) entries(title string, entries []entry) {
	tbl := r.newTable(
		fmt.Sprintf("%s: %s", title, humanize.Comma(int64(len(entries)))),
		table.Row{"#", "start", "stop", "len", "label"},
	)
	shown := r.truncate(len(entries))
	for i, e := range entries[:shown] {
		tbl.AppendRow(table.Row{
			i + 1,
			e.Interval.Start(),
			e.Interval.Stop(),
			humanize.Comma(e.Interval.Len()),
			e.Value,
		})
	}
	r.footer(tbl, shown, len(entries))
	r.flush(tbl)
}

func (r *renderer) groups(title string, groups [][]entry) {
	tbl := r.newTable(
		fmt.Sprintf("%s: %s", title, humanize.Comma(int64(len(groups)))),
		table.Row{"#", "start", "stop", "size", "labels"},
	)
	shown := r.truncate(len(groups))
	for i, group := range groups[:shown] {
		stop := lo.MaxBy(group, func(a, b entry) bool {
			return a.Interval.Stop() > b.Interval.Stop()
		}).Interval.Stop()
		labels := lo.Map(group, func(e entry, _ int) string {
			return e.Value
		})
		tbl.AppendRow(table.Row{
			i + 1,
			group[0].Interval.Start(),
			stop,
			humanize.Comma(int64(len(group))),
			strings.Join(labels, ","),
		})
	}
	r.footer(tbl, shown, len(groups))
	r.flush(tbl)
}

// pairs prints a two column key value table.
func (r *renderer) pairs(title string, rows [][2]string) {
	tbl := r.newTable(title, table.Row{"name", "value"})
	for _, row := range rows {
		tbl.AppendRow(table.Row{row[0], row[1]})
	}
	r.flush(tbl)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
