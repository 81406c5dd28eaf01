package rdfa

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DocumentMarker marks the element that is the parse root.
const DocumentMarker = "data-say-document"

// ContainerMarker marks the hidden element holding serialized properties.
const ContainerMarker = "data-rdfa-container"

var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Param: true, atom.Source: true,
	atom.Track: true, atom.Wbr: true,
}

// IsVoid reports whether tag is an HTML void element.
func IsVoid(tag string) bool {
	return voidElements[atom.Lookup([]byte(strings.ToLower(tag)))]
}

// parseDOM reads r into an x/net/html tree according to the input mode and
// returns the tree root and the number of recovered tokenizer problems.
func parseDOM(r io.Reader, opts Options) (*html.Node, int, error) {
	switch opts.Mode {
	case ModeHTML5:
		doc, err := html.Parse(r)
		if err != nil {
			return nil, 0, fmt.Errorf("parse html: %w", err)
		}
		return doc, 0, nil
	case ModeFragment, "":
		return parseFragment(r, opts.MaxDepth)
	}
	return nil, 0, fmt.Errorf("unknown parser mode %q", opts.Mode)
}

// parseFragment builds a tree straight from tokens. Unlike html.Parse it
// keeps <span/> empty instead of letting it swallow its following siblings,
// and it never inserts implied html/head/body elements.
func parseFragment(r io.Reader, maxDepth int) (*html.Node, int, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	root := &html.Node{Type: html.DocumentNode}
	stack := []*html.Node{root}
	skipped := map[string]int{}
	recoveries := 0

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		top := stack[len(stack)-1]
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return root, recoveries, nil
			}
			return nil, recoveries, fmt.Errorf("tokenize html: %w", z.Err())

		case html.TextToken:
			appendText(top, string(z.Text()))

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if len(stack) > maxDepth {
				recoveries++
				if tt == html.StartTagToken && !voidElements[tok.DataAtom] {
					skipped[tok.Data]++
				}
				continue
			}
			n := &html.Node{Type: html.ElementNode, Data: tok.Data, DataAtom: tok.DataAtom, Attr: tok.Attr}
			top.AppendChild(n)
			if tt == html.StartTagToken && !voidElements[tok.DataAtom] {
				stack = append(stack, n)
			}

		case html.EndTagToken:
			tok := z.Token()
			if skipped[tok.Data] > 0 {
				skipped[tok.Data]--
				continue
			}
			i := len(stack) - 1
			for i > 0 && stack[i].Data != tok.Data {
				i--
			}
			if i == 0 {
				// Stray end tag.
				recoveries++
				continue
			}
			if i != len(stack)-1 {
				recoveries++
			}
			stack = stack[:i]
		}
	}
}

func appendText(parent *html.Node, text string) {
	if text == "" {
		return
	}
	if last := parent.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += text
		return
	}
	parent.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// findParseRoot returns the marked document element, else <body>, else root.
func findParseRoot(root *html.Node) *html.Node {
	var body *html.Node
	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Type == html.ElementNode {
			if _, ok := attr(n, DocumentMarker); ok {
				return n
			}
			if body == nil && n.DataAtom == atom.Body {
				body = n
			}
		}
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	if body != nil {
		return body
	}
	return root
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attrKey(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}

// htmlConfig adapts an x/net/html tree to the generic reader.
func htmlConfig(root *html.Node) Config[*html.Node] {
	return Config[*html.Node]{
		Root: root,
		Tag: func(n *html.Node) string {
			return n.Data
		},
		Attributes: func(n *html.Node) map[string]string {
			out := make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				out[attrKey(a)] = a.Val
			}
			return out
		},
		IsText: func(n *html.Node) bool {
			return n.Type != html.ElementNode && n != root
		},
		Children: func(n *html.Node) []*html.Node {
			var out []*html.Node
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				out = append(out, c)
			}
			return out
		},
		TextContent: textContent,
	}
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	stack := []*html.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == html.TextNode {
			sb.WriteString(cur.Data)
			continue
		}
		for c := cur.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return sb.String()
}
