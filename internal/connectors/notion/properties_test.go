package notion

import (
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
)

func TestPropertyText(t *testing.T) {
	allDay := notionapi.Date(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	timed := notionapi.Date(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
	edited := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		prop notionapi.Property
		want string
	}{
		{
			name: "title joins segments",
			prop: &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "le "}, {PlainText: "chat"}}},
			want: "le chat",
		},
		{
			name: "rich text",
			prop: &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: "cat"}}},
			want: "cat",
		},
		{
			name: "empty rich text",
			prop: &notionapi.RichTextProperty{},
			want: "",
		},
		{
			name: "select",
			prop: &notionapi.SelectProperty{Select: notionapi.Option{Name: "noun"}},
			want: "noun",
		},
		{
			name: "multi select",
			prop: &notionapi.MultiSelectProperty{MultiSelect: []notionapi.Option{{Name: "animal"}, {Name: "A1"}}},
			want: "animal, A1",
		},
		{
			name: "integer number",
			prop: &notionapi.NumberProperty{Number: 3},
			want: "3",
		},
		{
			name: "fractional number",
			prop: &notionapi.NumberProperty{Number: 2.5},
			want: "2.5",
		},
		{
			name: "checkbox",
			prop: &notionapi.CheckboxProperty{Checkbox: true},
			want: "true",
		},
		{
			name: "url",
			prop: &notionapi.URLProperty{URL: "https://fr.wiktionary.org/wiki/chat"},
			want: "https://fr.wiktionary.org/wiki/chat",
		},
		{
			name: "all-day date",
			prop: &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &allDay}},
			want: "2024-05-01",
		},
		{
			name: "timed date",
			prop: &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &timed}},
			want: "2024-05-01T09:30:00Z",
		},
		{
			name: "empty date",
			prop: &notionapi.DateProperty{},
			want: "",
		},
		{
			name: "last edited time",
			prop: &notionapi.LastEditedTimeProperty{LastEditedTime: edited},
			want: "2024-05-02T08:00:00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PropertyText(tt.prop)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropertyText_Unsupported(t *testing.T) {
	_, ok := PropertyText(&notionapi.RelationProperty{})
	assert.False(t, ok)
}

func TestPageToRow(t *testing.T) {
	edited := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	page := &notionapi.Page{
		ID:             notionapi.ObjectID("page-1"),
		LastEditedTime: edited,
		Properties: notionapi.Properties{
			"French":  &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "chat"}}},
			"English": &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: "cat"}}},
			"Related": &notionapi.RelationProperty{},
		},
	}

	row := PageToRow(page)

	assert.Equal(t, "page-1", row.ID)
	assert.Equal(t, edited, row.ModifiedAt)
	assert.Equal(t, map[string]string{"French": "chat", "English": "cat"}, row.Fields)
}
