package notion

import (
	"strconv"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// multiSelectSeparator joins multi-select option names.
const multiSelectSeparator = ", "

// PropertyText flattens a property value to plain text.
// It returns false for property types that carry no text (relations, files,
// people and rollups).
//
//nolint:gocyclo // One case per property type.
func PropertyText(prop notionapi.Property) (string, bool) {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return plainText(p.Title), true
	case *notionapi.RichTextProperty:
		return plainText(p.RichText), true
	case *notionapi.SelectProperty:
		return p.Select.Name, true
	case *notionapi.MultiSelectProperty:
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return strings.Join(names, multiSelectSeparator), true
	case *notionapi.NumberProperty:
		return strconv.FormatFloat(p.Number, 'f', -1, 64), true
	case *notionapi.CheckboxProperty:
		return strconv.FormatBool(p.Checkbox), true
	case *notionapi.URLProperty:
		return p.URL, true
	case *notionapi.EmailProperty:
		return p.Email, true
	case *notionapi.PhoneNumberProperty:
		return p.PhoneNumber, true
	case *notionapi.DateProperty:
		if p.Date == nil || p.Date.Start == nil {
			return "", true
		}
		return formatDate(time.Time(*p.Date.Start)), true
	case *notionapi.CreatedTimeProperty:
		return p.CreatedTime.UTC().Format(time.RFC3339), true
	case *notionapi.LastEditedTimeProperty:
		return p.LastEditedTime.UTC().Format(time.RFC3339), true
	default:
		return "", false
	}
}

func plainText(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range parts {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}

// formatDate drops the clock for all-day dates.
func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
