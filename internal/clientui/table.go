package clientui

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/omahajan/goftpcore/internal/ftpclient"
)

// TableFormatter renders a LIST response as an aligned table.
type TableFormatter struct {
	table *tablewriter.Table
}

func NewTableFormatter() *TableFormatter {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Type", "Size")
	table.Options(
		tablewriter.WithRendition(tw.Rendition{Borders: tw.Border{Left: tw.Pending, Right: tw.Pending, Top: tw.Pending, Bottom: tw.Pending}}),
		tablewriter.WithPadding(tw.Padding{Left: "\t", Right: "\t"}),
	)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.MaxWidth = 0
		cfg.Header = tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}}
		cfg.Row = tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}}
	})
	return &TableFormatter{table: table}
}

// RenderListing prints entries as a table, or a placeholder line when
// the directory is empty.
func (tf *TableFormatter) RenderListing(entries []ftpclient.Entry) error {
	if len(entries) == 0 {
		fmt.Println("Directory is empty")
		return nil
	}
	tf.table.Reset()
	tf.table.Header("Name", "Type", "Size")
	for _, e := range entries {
		kind := "file"
		size := formatSize(e.Size)
		name := e.Name
		if e.IsDir {
			kind = "dir"
			size = "-"
			name += "/"
		}
		tf.table.Append([]string{name, kind, size})
	}
	return tf.table.Render()
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
