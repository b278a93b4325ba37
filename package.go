package xlquery

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// packageReader reads worksheet cells straight from the xlsx package so each
// cell keeps its stored type tag and shared text index.
type packageReader struct {
	zr     *zip.ReadCloser
	files  map[string]*zip.File
	sheets map[string]string // sheet name → part path
	pool   TextPool
}

type xmlWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

type xmlRelationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlText struct {
	T string `xml:"t"`
	R []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (x xmlText) String() string {
	if len(x.R) == 0 {
		return x.T
	}
	var b strings.Builder
	b.WriteString(x.T)
	for _, r := range x.R {
		b.WriteString(r.T)
	}
	return b.String()
}

type xmlSST struct {
	Items []xmlText `xml:"si"`
}

type xmlWorksheet struct {
	Rows []struct {
		R     int `xml:"r,attr"`
		Cells []struct {
			R  string   `xml:"r,attr"`
			T  string   `xml:"t,attr"`
			V  string   `xml:"v"`
			IS *xmlText `xml:"is"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

func openPackage(name string) (*packageReader, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, err
	}
	p := &packageReader{
		zr:     zr,
		files:  make(map[string]*zip.File, len(zr.File)),
		sheets: make(map[string]string),
	}
	for _, f := range zr.File {
		p.files[f.Name] = f
	}
	if err := p.readWorkbook(); err != nil {
		zr.Close()
		return nil, err
	}
	if err := p.readSharedText(); err != nil {
		zr.Close()
		return nil, err
	}
	return p, nil
}

func (p *packageReader) readPart(name string, v any) error {
	f, ok := p.files[name]
	if !ok {
		return fmt.Errorf("package part %s not found", name)
	}
	r, err := f.Open()
	if err != nil {
		return fmt.Errorf("open part %s: %w", name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read part %s: %w", name, err)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode part %s: %w", name, err)
	}
	return nil
}

func (p *packageReader) readWorkbook() error {
	var wb xmlWorkbook
	if err := p.readPart("xl/workbook.xml", &wb); err != nil {
		return err
	}
	var rels xmlRelationships
	if err := p.readPart("xl/_rels/workbook.xml.rels", &rels); err != nil {
		return err
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		t := strings.ReplaceAll(r.Target, "\\", "/")
		if strings.HasPrefix(t, "/") {
			t = strings.TrimPrefix(t, "/")
		} else {
			t = path.Clean(path.Join("xl", t))
		}
		targets[r.ID] = t
	}
	for _, sh := range wb.Sheets {
		if t, ok := targets[sh.RID]; ok {
			p.sheets[sh.Name] = t
		}
	}
	return nil
}

func (p *packageReader) readSharedText() error {
	if _, ok := p.files["xl/sharedStrings.xml"]; !ok {
		return nil
	}
	var sst xmlSST
	if err := p.readPart("xl/sharedStrings.xml", &sst); err != nil {
		return err
	}
	p.pool = make(TextPool, 0, len(sst.Items))
	for _, it := range sst.Items {
		p.pool = append(p.pool, it.String())
	}
	return nil
}

// sheet reads the named worksheet's rows and cells in document order.
func (p *packageReader) sheet(name string) (*Sheet, error) {
	part, ok := p.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	var ws xmlWorksheet
	if err := p.readPart(part, &ws); err != nil {
		return nil, err
	}

	sd := &Sheet{Name: name, Rows: make([]Row, 0, len(ws.Rows)), Pool: p.pool}
	prev := 0
	for _, xr := range ws.Rows {
		num := xr.R
		if num == 0 {
			num = prev + 1
		}
		prev = num
		row := Row{Number: RowNumber(num), Cells: make([]Cell, 0, len(xr.Cells))}
		for i, xc := range xr.Cells {
			ref := xc.R
			if ref == "" {
				// Cells may omit r; their position is implied by order.
				letter, err := ColumnNumberToLetter(i + 1)
				if err != nil {
					return nil, err
				}
				ref = CellAddress{Column: letter, Row: row.Number}.String()
			}
			var v CellValue
			if xc.T == "inlineStr" && xc.IS != nil {
				v = Literal(xc.IS.String())
			} else {
				v = valueFromXML(xc.T, xc.V)
			}
			row.Cells = append(row.Cells, Cell{Ref: ref, Value: v})
		}
		sd.Rows = append(sd.Rows, row)
	}
	return sd, nil
}

func (p *packageReader) Close() error {
	return p.zr.Close()
}
