// Package models defines core data structures for documents, queries, and search results.
package models

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType classifies a searchable item.
type DocumentType string

const (
	DocumentArticle DocumentType = "article"
	DocumentPDF     DocumentType = "pdf"
	DocumentTool    DocumentType = "tool"
	DocumentGuide   DocumentType = "guide"
)

// Well-known field names. Documents may carry others.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldContent     = "content"
	FieldKeywords    = "keywords"
	FieldTags        = "tags"
)

// DefaultFields is the field order used when nothing else is configured.
var DefaultFields = []string{FieldTitle, FieldDescription, FieldKeywords, FieldContent, FieldTags}

// Field is one named text field of a document.
type Field struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Document is the typed envelope every engine searches over. Fields keep
// their insertion order so highlights and matched fields are deterministic.
type Document struct {
	ID        string            `json:"id" db:"id"`
	Type      DocumentType      `json:"type" db:"type"`
	URL       string            `json:"url,omitempty" db:"url"`
	Fields    []Field           `json:"fields" db:"fields"`
	Metadata  map[string]string `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// Field returns the text of the named field, or "" when absent.
func (d *Document) Field(name string) string {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Text
		}
	}
	return ""
}

// SetField replaces the named field or appends it.
func (d *Document) SetField(name, text string) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			d.Fields[i].Text = text
			return
		}
	}
	d.Fields = append(d.Fields, Field{Name: name, Text: text})
}

// Title returns the title field.
func (d *Document) Title() string {
	return d.Field(FieldTitle)
}

// Text joins every field in order. It is what the vectorizer fits on.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.Text != "" {
			parts = append(parts, f.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks the envelope is usable by the index.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("document id cannot be empty")
	}
	switch d.Type {
	case DocumentArticle, DocumentPDF, DocumentTool, DocumentGuide:
	case "":
		d.Type = DocumentArticle
	default:
		return fmt.Errorf("unknown document type %q", d.Type)
	}
	return nil
}

// DocumentInput is the input for creating or updating a document.
type DocumentInput struct {
	ID          string            `json:"id,omitempty"`
	Type        DocumentType      `json:"type,omitempty"`
	URL         string            `json:"url,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Content     string            `json:"content"`
	Keywords    []string          `json:"keywords,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ToDocument converts the input into an envelope. Empty fields are omitted.
func (in *DocumentInput) ToDocument() *Document {
	doc := &Document{ID: in.ID, Type: in.Type, URL: in.URL, Metadata: in.Metadata}
	add := func(name, text string) {
		if strings.TrimSpace(text) != "" {
			doc.Fields = append(doc.Fields, Field{Name: name, Text: text})
		}
	}
	add(FieldTitle, in.Title)
	add(FieldDescription, in.Description)
	add(FieldKeywords, strings.Join(in.Keywords, " "))
	add(FieldContent, in.Content)
	add(FieldTags, strings.Join(in.Tags, " "))
	return doc
}
