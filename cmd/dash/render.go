package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"mediastash/internal/dashboard"
	"mediastash/internal/format"

	"github.com/dustin/go-humanize"
)

// render 把仪表盘当前状态一次性写到输出：
// 概览卡片、两张分布表、分页文件列表。未加载的槽位显示占位符。
func render(w io.Writer, username string, dash *dashboard.Dashboard, cursor dashboard.Cursor, result dashboard.RefreshResult) {
	fmt.Fprintf(w, "mediastash dashboard — %s\n\n", username)

	renderSummary(w, dash.Stats(), result.Stats)
	renderBreakdowns(w, dash.Stats())
	renderRecent(w, dash.Recent(), result.Recent)
	renderFiles(w, dash.Files(), cursor, result.Files)
}

func renderSummary(w io.Writer, stats *dashboard.StatsSummary, slot dashboard.SlotStatus) {
	if stats == nil {
		fmt.Fprintln(w, "stats: loading...")
		if slot.Err != nil {
			fmt.Fprintf(w, "stats: unavailable (%v)\n", slot.Err)
		}
		fmt.Fprintln(w)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total size\t%s\n", stats.Size)
	fmt.Fprintf(tw, "Images\t%s\n", humanize.Comma(stats.Count))
	fmt.Fprintf(tw, "Users\t%s\n", humanize.Comma(stats.CountUsers))
	fmt.Fprintf(tw, "Views\t%s\n", stats.ViewsDisplay())
	tw.Flush()
	fmt.Fprintln(w)
}

func renderBreakdowns(w io.Writer, stats *dashboard.StatsSummary) {
	if stats == nil {
		return
	}

	countColumn := dashboard.Column{
		ID:    "count",
		Label: "COUNT",
		Format: func(v any) string {
			if n, ok := v.(int64); ok {
				return humanize.Comma(n)
			}
			return fmt.Sprintf("%v", v)
		},
	}

	fmt.Fprintln(w, "Uploads by user")
	userRows := make([]map[string]any, 0, len(stats.CountByUser))
	for _, item := range stats.CountByUser {
		userRows = append(userRows, map[string]any{"username": item.Username, "count": item.Count})
	}
	dashboard.RenderTable(w, []dashboard.Column{
		{ID: "username", Label: "USER"},
		countColumn,
	}, userRows)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Uploads by type")
	typeRows := make([]map[string]any, 0, len(stats.TypesCount))
	for _, item := range stats.TypesCount {
		typeRows = append(typeRows, map[string]any{"mimetype": item.MimeType, "count": item.Count})
	}
	dashboard.RenderTable(w, []dashboard.Column{
		{ID: "mimetype", Label: "TYPE"},
		countColumn,
	}, typeRows)
	fmt.Fprintln(w)
}

func renderRecent(w io.Writer, recent []dashboard.FileRecord, slot dashboard.SlotStatus) {
	if recent == nil {
		fmt.Fprintln(w, "recent media: loading...")
		if slot.Err != nil {
			fmt.Fprintf(w, "recent media: unavailable (%v)\n", slot.Err)
		}
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "Recent media (%d)\n", len(recent))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, file := range recent {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", file.Name, file.MimeType, humanize.Time(file.CreatedAt))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func renderFiles(w io.Writer, files []dashboard.FileRecord, cursor dashboard.Cursor, slot dashboard.SlotStatus) {
	if files == nil {
		fmt.Fprintln(w, "files: loading...")
		if slot.Err != nil {
			fmt.Fprintf(w, "files: unavailable (%v)\n", slot.Err)
		}
		return
	}

	visible := dashboard.PageOf(files, cursor)

	fmt.Fprintln(w, "Files")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tVIEWS\tUPLOADED")
	for _, file := range visible {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			file.ID,
			file.Name,
			file.MimeType,
			format.ByteSize(float64(file.SizeBytes)),
			file.Views,
			humanize.Time(file.CreatedAt),
		)
	}
	tw.Flush()

	start, end := cursor.Window(len(files))
	fmt.Fprintf(w, "rows %d-%d of %d (page %d, %d per page)\n",
		start, end, len(files), cursor.Page, cursor.RowsPerPage)
}
