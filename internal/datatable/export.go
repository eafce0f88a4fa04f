package datatable

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return nil
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// ExportResult is a serialized export plus the response metadata a handler
// needs to hand it to the browser.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export serializes either the explicitly passed subset or the full filtered
// set in the requested format. Formats not enabled by the config are refused.
func Export[T any](s *State[T], format ExportFormat, subset []T) (ExportResult, error) {
	if !s.cfg.exportEnabled(format) {
		return ExportResult{}, fmt.Errorf("datatable: export format %q not enabled for %s", format, s.cfg.Entity)
	}
	items := subset
	if items == nil {
		items = s.FilteredData()
	}
	name := s.cfg.Export.Filename
	if name == "" {
		name = s.cfg.Entity
	}
	switch format {
	case ExportCSV:
		content, err := exportCSV(s.cfg, items)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{Content: content, ContentType: "text/csv; charset=utf-8", Filename: name + ".csv"}, nil
	case ExportJSON:
		content, err := exportJSON(s.cfg, items)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{Content: content, ContentType: "application/json", Filename: name + ".json"}, nil
	case ExportPrint:
		content := exportPrint(s.cfg, items)
		return ExportResult{Content: content, ContentType: "text/html; charset=utf-8", Filename: name + ".html"}, nil
	}
	return ExportResult{}, fmt.Errorf("datatable: unknown export format %q", format)
}

func exportCSV[T any](cfg Config[T], items []T) ([]byte, error) {
	var out strings.Builder
	streamer := newCSVStreamer(&out)
	if err := streamer.writeComment(fmt.Sprintf("# Export: %s | Linhas: %d | Gerado em: %s", cfg.Entity, len(items), time.Now().Format("2006-01-02 15:04"))); err != nil {
		return nil, err
	}
	header := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		header[i] = col.Label
	}
	if err := streamer.writeRow(header); err != nil {
		return nil, err
	}
	for _, item := range items {
		row := make([]string, len(cfg.Columns))
		for i, col := range cfg.Columns {
			row[i] = renderCell(col, item)
		}
		if err := streamer.writeRow(row); err != nil {
			return nil, err
		}
	}
	if err := streamer.Close(); err != nil {
		return nil, err
	}
	return []byte(out.String()), nil
}

func exportJSON[T any](cfg Config[T], items []T) ([]byte, error) {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		row := make(map[string]string, len(cfg.Columns))
		for _, col := range cfg.Columns {
			row[col.Key] = renderCell(col, item)
		}
		rows = append(rows, row)
	}
	return json.MarshalIndent(rows, "", "  ")
}

// exportPrint builds a standalone HTML document suitable for the browser
// print dialog.
func exportPrint[T any](cfg Config[T], items []T) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"pt-BR\">\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(cfg.Entity) + "</title>\n")
	b.WriteString("<style>body{font-family:sans-serif}table{border-collapse:collapse;width:100%}th,td{border:1px solid #999;padding:4px 8px;text-align:left}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString("<h1>" + html.EscapeString(cfg.Entity) + "</h1>\n")
	b.WriteString("<p>Gerado em " + time.Now().Format("02/01/2006 15:04") + " — " + fmt.Sprintf("%d registros", len(items)) + "</p>\n")
	b.WriteString("<table>\n<thead><tr>")
	for _, col := range cfg.Columns {
		b.WriteString("<th>" + html.EscapeString(col.Label) + "</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, item := range items {
		b.WriteString("<tr>")
		for _, col := range cfg.Columns {
			b.WriteString("<td>" + html.EscapeString(renderCell(col, item)) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n<script>window.print()</script>\n</body>\n</html>\n")
	return []byte(b.String())
}
