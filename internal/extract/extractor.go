// Package extract turns files into searchable text, a title and a document type.
package extract

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lu4p/cat"

	"github.com/hyperjump/smartsearch/internal/models"
)

// Content is what one file contributes to a document.
type Content struct {
	Title string
	Text  string
	Type  models.DocumentType
}

// Extractor reads plain text, Markdown, PDF, Word, OpenDocument, RTF and
// Excel files. It is stateless and safe for concurrent use.
type Extractor struct {
	byExt map[string]models.DocumentType
}

// NewExtractor returns an extractor that types PDFs as pdf, spreadsheets as
// tool and everything else as article unless the path says otherwise.
func NewExtractor() *Extractor {
	return &Extractor{byExt: map[string]models.DocumentType{
		".pdf":  models.DocumentPDF,
		".xlsx": models.DocumentTool,
	}}
}

// Extract reads the file at path.
func (e *Extractor) Extract(path string) (*Content, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	text, err := e.ExtractBytes(raw, ext)
	if err != nil {
		return nil, err
	}
	return &Content{
		Title: titleOf(path, ext, text),
		Text:  text,
		Type:  e.TypeOf(path),
	}, nil
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Unknown extensions are
// read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt", ".rtf":
		text, err := cat.FromBytes(content)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", ext, err)
		}
		return strings.TrimSpace(text), nil
	case ".xlsx":
		return extractExcel(content)
	default:
		return extractPlain(content)
	}
}

// TypeOf classifies a file. A parent directory named after a scope
// (articles, pdfs, tools, guides) wins over the extension.
func (e *Extractor) TypeOf(path string) models.DocumentType {
	dir := filepath.Dir(path)
	for dir != "." && dir != string(filepath.Separator) && dir != filepath.Dir(dir) {
		switch strings.ToLower(filepath.Base(dir)) {
		case "articles":
			return models.DocumentArticle
		case "pdfs":
			return models.DocumentPDF
		case "tools":
			return models.DocumentTool
		case "guides":
			return models.DocumentGuide
		}
		dir = filepath.Dir(dir)
	}
	if t, ok := e.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return models.DocumentArticle
}

// titleOf prefers a leading Markdown heading, then the file name with
// separators turned into spaces.
func titleOf(path, ext, text string) string {
	if ext == ".md" || ext == ".markdown" {
		sc := bufio.NewScanner(strings.NewReader(text))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "# ") {
				return strings.TrimSpace(line[2:])
			}
			break
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	}), " ")
}
