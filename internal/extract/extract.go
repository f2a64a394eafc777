// Package extract converts uploaded CV files (PDF, DOCX, plain text) into
// plain text for embedding.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// UnsupportedFormatError reports a file type the extractor does not handle.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q", e.Format)
}

// ExtractionError reports a parse failure on a supported format.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s text: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Text extracts the plain text of an uploaded file, dispatching on the
// filename extension.
func Text(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md":
		b, err := io.ReadAll(r)
		if err != nil {
			return "", &ExtractionError{Format: "text", Err: err}
		}
		return string(b), nil
	case ".pdf":
		return pdfText(r)
	case ".docx":
		return docxText(r)
	}
	return "", &UnsupportedFormatError{Format: ext}
}

// pdfText extracts plain text from every page of a PDF.
func pdfText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", &ExtractionError{Format: "pdf", Err: err}
	}

	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", &ExtractionError{Format: "pdf", Err: err}
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Format: "pdf", Err: fmt.Errorf("page %d: %w", i, err)}
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// docxText extracts text runs from word/document.xml inside the DOCX
// archive. DOCX is a zip of XML; the stdlib covers both layers.
func docxText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", &ExtractionError{Format: "docx", Err: err}
	}

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", &ExtractionError{Format: "docx", Err: err}
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", &ExtractionError{Format: "docx", Err: fmt.Errorf("word/document.xml not found in archive")}
	}

	rc, err := doc.Open()
	if err != nil {
		return "", &ExtractionError{Format: "docx", Err: err}
	}
	defer rc.Close()

	var (
		sb      strings.Builder
		inText  bool
		decoder = xml.NewDecoder(rc)
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ExtractionError{Format: "docx", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
