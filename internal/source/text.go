package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/samradar/internal/textutil"
)

// flexString decodes a JSON value that services send either as a string
// or as a list of strings. Lists are joined with ", "; other scalars are
// printed; null stays empty.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, v := range list {
			if v == nil {
				continue
			}
			parts = append(parts, fmt.Sprint(v))
		}
		*f = flexString(strings.Join(parts, ", "))
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = ""
		return nil
	}
	*f = flexString(fmt.Sprint(v))
	return nil
}

// String returns the decoded value.
func (f flexString) String() string {
	return string(f)
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// selectionText returns the visible text of a selection with whitespace
// runs collapsed.
func selectionText(s *goquery.Selection) string {
	return textutil.CollapseSpace(s.Text())
}

// htmlToText strips markup from an HTML fragment, such as an RSS
// description. Unparseable input is returned with whitespace collapsed.
func htmlToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return textutil.CollapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return textutil.CollapseSpace(fragment)
	}
	return selectionText(doc.Selection)
}

func clampMax(maxResults int) int {
	if maxResults < 0 {
		return 0
	}
	return maxResults
}
