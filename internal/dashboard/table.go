package dashboard

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Column 描述统计表的一列：取值键、表头文案与可选的格式化函数。
type Column struct {
	ID     string
	Label  string
	Format func(v any) string
}

// RenderTable 渲染一张小型统计表：每行输入一行输出、每列一格，
// 有格式化函数则应用，否则按 %v 输出。不做排序、过滤或分页。
func RenderTable(w io.Writer, columns []Column, rows []map[string]any) error {
	if len(columns) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col.Label)
	}
	fmt.Fprintln(tw)

	for _, row := range rows {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			value := row[col.ID]
			if col.Format != nil {
				fmt.Fprint(tw, col.Format(value))
			} else {
				fmt.Fprintf(tw, "%v", value)
			}
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
