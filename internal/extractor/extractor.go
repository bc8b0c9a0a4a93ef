package extractor

import (
	"bytes"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/internal/sanitizer"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Parse scraped HTML into a DOM tree
- Locate match cards, scorecard blocks and player rows by structure
- Degrade per field: a missing node yields the Sentinel, never an error

Extraction Strategy
- Every lookup goes through knownSelectors; primary selector first,
  fallbacks in order
- Only a page with none of the recognized structures is an error
- Values are emitted exactly as displayed, trimmed of whitespace and
  batting decorations; no numeric parsing
*/

type PageExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewPageExtractor(
	metadataSink metadata.MetadataSink,
) PageExtractor {
	return PageExtractor{
		metadataSink: metadataSink,
	}
}

// parseDocument builds the DOM tree for markup, distinguishing payloads
// that are not HTML at all from pages that merely lack known structures.
// Noise subtrees are stripped before the tree reaches any selector.
func parseDocument(markup []byte) (*goquery.Document, *ParseError) {
	root, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, &ParseError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}
	if !hasHTMLElement(root) {
		return nil, &ParseError{
			Message:   "input is not a valid HTML document",
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}
	sanitizer.Clean(root)
	return goquery.NewDocumentFromNode(root), nil
}

// hasHTMLElement checks that the parsed tree carries an <html> element.
func hasHTMLElement(doc *html.Node) bool {
	var findHTML func(*html.Node) bool
	findHTML = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "html" {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if findHTML(c) {
				return true
			}
		}
		return false
	}
	return findHTML(doc)
}

func (e *PageExtractor) recordError(action string, err *ParseError) {
	e.metadataSink.RecordError(
		time.Now(),
		"extractor",
		action,
		mapParseErrorToMetadataCause(err),
		err.Error(),
		nil,
	)
}
