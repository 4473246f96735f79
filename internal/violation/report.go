package violation

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"github.com/viant/afs"
)

// bugCollection mirrors the tool's native report schema. The schema belongs to
// the tool; this package only decodes the subset the sink needs.
type bugCollection struct {
	XMLName   xml.Name      `xml:"BugCollection"`
	Version   string        `xml:"version,attr,omitempty"`
	Instances []bugInstance `xml:"BugInstance"`
}

type bugInstance struct {
	Type        string     `xml:"type,attr"`
	Priority    int        `xml:"priority,attr"`
	Category    string     `xml:"category,attr"`
	LongMessage string     `xml:"LongMessage"`
	Class       bugClass   `xml:"Class"`
	SourceLine  sourceLine `xml:"SourceLine"`
}

type bugClass struct {
	Name string `xml:"classname,attr"`
}

type sourceLine struct {
	SourceFile string `xml:"sourcefile,attr"`
	Start      int    `xml:"start,attr"`
}

// Parser reads native XML reports into violation records.
type Parser struct {
	fs afs.Service
}

// NewParser returns a report parser backed by the shared file service.
func NewParser() *Parser {
	return &Parser{fs: afs.New()}
}

// Parse reads the XML report at xmlPath and returns its findings tagged with
// the given tool and variant. A missing or unreadable report is an error: a
// collection task that silently skipped its variant would hide violations
// from the aggregate.
func (p *Parser) Parse(ctx context.Context, xmlPath, tool, variant string) ([]Violation, error) {
	data, err := p.fs.DownloadWithURL(ctx, xmlPath)
	if err != nil {
		return nil, fmt.Errorf("violation: read report %s: %w", xmlPath, err)
	}
	var report bugCollection
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("violation: decode report %s: %w", xmlPath, err)
	}
	records := make([]Violation, 0, len(report.Instances))
	for _, inst := range report.Instances {
		records = append(records, Violation{
			Tool:       tool,
			Variant:    variant,
			Rule:       inst.Type,
			Category:   inst.Category,
			Priority:   inst.Priority,
			Message:    inst.LongMessage,
			ClassName:  inst.Class.Name,
			SourceFile: inst.SourceLine.SourceFile,
			Line:       inst.SourceLine.Start,
		})
	}
	return records, nil
}

// WriteEmptyReport emits a well-formed report with zero findings. Analysis
// tasks use it when a variant's artifact set is empty: absence of matching
// sources is not an error, and the collection task still expects a report.
func WriteEmptyReport(ctx context.Context, xmlPath string) error {
	buf := &bytes.Buffer{}
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(bugCollection{Version: "1"}); err != nil {
		return fmt.Errorf("violation: encode empty report: %w", err)
	}
	buf.WriteByte('\n')
	fs := afs.New()
	if err := fs.Upload(ctx, xmlPath, 0o644, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("violation: write empty report %s: %w", xmlPath, err)
	}
	return nil
}
