package memrise

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var levelFileName = regexp.MustCompile(`(?i)level[-_ ]?(\d+)`)

// pageRow is one thing row of a saved page, keyed by column name.
type pageRow struct {
	ThingID string
	Cells   map[string]string
}

// levelFromName returns the level a saved page belongs to, or 0 for
// database pages.
func levelFromName(name string) int {
	m := levelFileName.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// parsePage extracts the thing rows of a saved course page.
func parsePage(r io.Reader) ([]pageRow, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	var columns []string
	var rows []pageRow

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "th" && hasClass(n, "column"):
				columns = append(columns, textContent(n))
				return
			case n.Data == "tr" && hasClass(n, "thing"):
				rows = append(rows, pageRow{ThingID: attr(n, "data-thing-id"), Cells: cells(n, columns)})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(rows) > 0 && len(columns) == 0 {
		return nil, fmt.Errorf("page has rows but no column header")
	}
	for i, row := range rows {
		if row.ThingID == "" {
			return nil, fmt.Errorf("row %d has no thing id", i+1)
		}
	}
	return rows, nil
}

// cells maps the row's column cells to header names by position.
func cells(tr *html.Node, columns []string) map[string]string {
	out := make(map[string]string, len(columns))
	i := 0
	for td := tr.FirstChild; td != nil; td = td.NextSibling {
		if td.Type != html.ElementNode || td.Data != "td" || !hasClass(td, "column") {
			continue
		}
		if i < len(columns) {
			out[columns[i]] = cellText(td)
		}
		i++
	}
	return out
}

// cellText prefers the div.text value over hints and buttons in the cell.
func cellText(td *html.Node) string {
	if n := findClass(td, "text"); n != nil && n != td {
		return textContent(n)
	}
	return textContent(td)
}

func findClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
