/*
Responsibilities
- Strip script, style and other non-content subtrees before extraction
- Drop HTML comments

Live pages arrive heavy: most of the payload is inline scripts and
embedded JSON state. Selector passes only inspect structural markup,
so the noise is removed once, right after parsing.
*/
package sanitizer

import "golang.org/x/net/html"

// noiseTags are elements that never carry score markup.
var noiseTags = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"iframe":   {},
	"svg":      {},
	"template": {},
	"object":   {},
	"embed":    {},
	"link":     {},
	"meta":     {},
}

// Clean removes noise subtrees and comment nodes from a parsed document
// in place and reports what was dropped. A removed subtree counts once,
// regardless of how many nodes it contained.
func Clean(root *html.Node) CleanStats {
	var stats CleanStats
	if root == nil {
		return stats
	}
	clean(root, &stats)
	return stats
}

func clean(node *html.Node, stats *CleanStats) {
	// Removal mutates the sibling list, so children are collected first.
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}

	for _, child := range children {
		switch {
		case child.Type == html.CommentNode:
			node.RemoveChild(child)
			stats.RemovedComments++
		case child.Type == html.ElementNode && isNoise(child.Data):
			node.RemoveChild(child)
			stats.RemovedElements++
		default:
			clean(child, stats)
		}
	}
}

func isNoise(tag string) bool {
	_, ok := noiseTags[tag]
	return ok
}
