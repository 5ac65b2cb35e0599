package keyword

import "github.com/hyperjump/smartsearch/internal/models"

func sampleDocs() []*models.Document {
	return []*models.Document{
		{ID: "a1", Type: models.DocumentArticle, Fields: []models.Field{
			{Name: models.FieldTitle, Text: "5 minute period pain relief"},
			{Name: models.FieldDescription, Text: "simple relief techniques"},
			{Name: models.FieldKeywords, Text: "痛经 缓解"},
			{Name: models.FieldContent, Text: "heat helps"},
		}},
		{ID: "p1", Type: models.DocumentPDF, Fields: []models.Field{
			{Name: models.FieldTitle, Text: "Pain tracking form"},
			{Name: models.FieldKeywords, Text: "pain tracking"},
		}},
		{ID: "t1", Type: models.DocumentTool, Fields: []models.Field{
			{Name: models.FieldTitle, Text: "relief"},
			{Name: models.FieldContent, Text: "quick breathing exercise"},
		}},
	}
}

func ids(rs []models.SearchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
