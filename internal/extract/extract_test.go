package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestText_PlainText(t *testing.T) {
	got, err := Text("resume.txt", strings.NewReader("plain text resume"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "plain text resume" {
		t.Errorf("got %q", got)
	}

	got, err = Text("notes.md", strings.NewReader("# heading"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "# heading" {
		t.Errorf("got %q", got)
	}
}

func TestText_UnsupportedFormat(t *testing.T) {
	_, err := Text("resume.exe", strings.NewReader("MZ"))
	var unsupErr *UnsupportedFormatError
	if !errors.As(err, &unsupErr) {
		t.Fatalf("expected *UnsupportedFormatError, got %v", err)
	}
	if unsupErr.Format != ".exe" {
		t.Errorf("format %q, want .exe", unsupErr.Format)
	}
}

func TestText_CorruptPDF(t *testing.T) {
	_, err := Text("resume.pdf", strings.NewReader("this is not a pdf"))
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if extErr.Format != "pdf" {
		t.Errorf("format %q, want pdf", extErr.Format)
	}
}

func TestText_DOCX(t *testing.T) {
	doc := buildDOCX(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>Senior Engineer</w:t></w:r><w:r><w:t xml:space="preserve"> at Acme</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	got, err := Text("resume.docx", bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Jane Doe") {
		t.Errorf("text missing first paragraph: %q", got)
	}
	if !strings.Contains(got, "Senior Engineer at Acme") {
		t.Errorf("runs within a paragraph not joined: %q", got)
	}
	if !strings.Contains(got, "Jane Doe\n") {
		t.Errorf("paragraphs not separated: %q", got)
	}
}

func TestText_DOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/styles.xml")
	_, _ = f.Write([]byte("<styles/>"))
	_ = zw.Close()

	_, err := Text("resume.docx", bytes.NewReader(buf.Bytes()))
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
}

func TestText_CorruptDOCX(t *testing.T) {
	_, err := Text("resume.docx", strings.NewReader("not a zip archive"))
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
}

// buildDOCX assembles a minimal DOCX archive around the given document XML.
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
