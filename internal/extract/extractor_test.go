package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/smartsearch/internal/models"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("Heat helps\nLine 2"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Heat helps\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainBOMAndInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("\xef\xbb\xbfhello\x80world"), ".md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "hello�world" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Symptom")
	f.SetCellValue("Sheet1", "B1", "Severity")
	f.SetCellValue("Sheet1", "A3", "cramps")
	f.SetCellValue("Sheet1", "B3", "high")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Symptom\tSeverity\ncramps\thigh" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_pdfInvalid(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("not a pdf"), ".pdf"); err == nil {
		t.Error("expected error for invalid PDF")
	}
}

func TestExtractBytes_docx(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Cramp</w:t></w:r><w:r><w:t xml:space="preserve">s relief</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>line</w:t></w:r></w:p>
<w:p></w:p>
</w:body></w:document>`
	got, err := NewExtractor().ExtractBytes(docx(t, "word/document.xml", body, ""), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Cramps relief\nSecond line" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxContentTypesOverride(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>moved part</w:t></w:r></w:p></w:body></w:document>`
	types := `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/main.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`
	got, err := NewExtractor().ExtractBytes(docx(t, "word/main.xml", body, types), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "moved part" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxInvalid(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("plain bytes"), ".docx"); err == nil {
		t.Error("expected error for non-zip DOCX")
	}
	empty := docx(t, "word/other.xml", "<x/>", "")
	if _, err := NewExtractor().ExtractBytes(empty, ".docx"); err == nil {
		t.Error("expected error when the main part is missing")
	}
}

func TestExtract_file(t *testing.T) {
	dir := t.TempDir()
	guides := filepath.Join(dir, "guides")
	if err := os.MkdirAll(guides, 0o755); err != nil {
		t.Fatal(err)
	}
	md := filepath.Join(guides, "heat.md")
	if err := os.WriteFile(md, []byte("\n# Heat therapy guide\n\nApply warmth."), 0o644); err != nil {
		t.Fatal(err)
	}
	txt := filepath.Join(dir, "pain_relief-tips.txt")
	if err := os.WriteFile(txt, []byte("# not a title for txt"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	c, err := e.Extract(md)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.Title != "Heat therapy guide" || c.Type != models.DocumentGuide {
		t.Errorf("got title %q type %q", c.Title, c.Type)
	}
	c, err = e.Extract(txt)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.Title != "pain relief tips" || c.Type != models.DocumentArticle {
		t.Errorf("got title %q type %q", c.Title, c.Type)
	}
	if _, err := e.Extract(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTypeOf(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		path string
		want models.DocumentType
	}{
		{"/data/handout.pdf", models.DocumentPDF},
		{"/data/tracker.xlsx", models.DocumentTool},
		{"/data/TRACKER.XLSX", models.DocumentTool},
		{"/data/notes.md", models.DocumentArticle},
		{"/data/tools/breathing.md", models.DocumentTool},
		{"/data/Guides/sub/yoga.pdf", models.DocumentGuide},
		{"/data/articles/scan.pdf", models.DocumentArticle},
		{"pdfs/x.txt", models.DocumentPDF},
	}
	for _, tt := range tests {
		if got := e.TypeOf(tt.path); got != tt.want {
			t.Errorf("TypeOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func docx(t *testing.T, part, body, types string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{part: body}
	if types != "" {
		files[contentTypesPart] = types
	}
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
