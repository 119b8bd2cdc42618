package compose

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fumiama/go-docx"
)

// DocxLibrary opens .docx files with go-docx.
type DocxLibrary struct{}

// docxDocument is parsed from an in-memory copy of the file: go-docx reads
// styles, themes and other untouched parts lazily from the source archive
// when writing, so the source file is not held open.
type docxDocument struct {
	path string
	doc  *docx.Docx
}

// Open reads and parses the document at path.
func (DocxLibrary) Open(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := docx.Parse(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &docxDocument{path: path, doc: doc}, nil
}

// Append copies the body of other (paragraphs, tables and their media) to
// the end of d. The section properties of d stay the last body element, and
// those of other are dropped, so the result keeps the base page setup.
func (d *docxDocument) Append(other Document) (err error) {
	o, ok := other.(*docxDocument)
	if !ok {
		return fmt.Errorf("cannot append %T to a docx document", other)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("composing %s: %v", o.path, r)
		}
	}()

	items := d.doc.Document.Body.Items
	var tail []interface{}
	for len(items) > 0 {
		if _, isSect := items[len(items)-1].(*docx.SectPr); !isSect {
			break
		}
		tail = append([]interface{}{items[len(items)-1]}, tail...)
		items = items[:len(items)-1]
	}
	d.doc.Document.Body.Items = items

	srcItems := o.doc.Document.Body.Items
	defer func() { o.doc.Document.Body.Items = srcItems }()
	o.doc.Document.Body.Items = withoutSections(srcItems)
	d.doc.AppendFile(o.doc)

	d.doc.Document.Body.Items = append(d.doc.Document.Body.Items, tail...)
	return nil
}

// WriteTo serializes the document as a .docx archive.
func (d *docxDocument) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	_, err := d.doc.WriteTo(cw)
	return cw.n, err
}

func withoutSections(items []interface{}) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		if _, isSect := it.(*docx.SectPr); isSect {
			continue
		}
		out = append(out, it)
	}
	return out
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
