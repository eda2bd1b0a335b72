package jsonld

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"
)

const scriptType = "application/ld+json"

// Extract locates every JSON-LD script block in an HTML document and returns
// the decoded objects in document order. A block that fails a direct decode
// is retried wrapped in an array, which tolerates comma-concatenated objects
// published without the enclosing brackets. Blocks failing both decodes are
// dropped silently.
func Extract(htmlText string) ([]interface{}, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var blocks []interface{}
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		typ, _ := sel.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), scriptType) {
			return
		}
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}
		if v, ok := decodeBlock(raw); ok {
			blocks = append(blocks, v)
		}
	})

	return blocks, nil
}

func decodeBlock(raw string) (interface{}, bool) {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, true
	}
	var wrapped []interface{}
	if err := json.Unmarshal([]byte("["+raw+"]"), &wrapped); err == nil {
		return wrapped, true
	}
	return nil, false
}
