package resources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

const maxTitleLen = 90

// maxPageBytes caps how much of a page is read; title and meta tags sit in the head.
const maxPageBytes = 1 << 20

// URLInfo is the preview of a linked page.
type URLInfo struct {
	Title       string `json:"title"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// URLTitle fetches url and extracts its title, og:image and meta description.
// Only the first maxPageBytes of the page are parsed. URL is left empty.
// Titles of maxTitleLen runes or more are cut and end in "...".
func URLTitle(ctx context.Context, client *http.Client, url string) (*URLInfo, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not build request: %s", err)
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("Could not fetch %s: %s", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Could not fetch %s: status %d", url, resp.StatusCode)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("Could not parse %s: %s", url, err)
	}
	info := &URLInfo{}
	var title string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" {
					title = textOf(n)
				}
			case "meta":
				switch {
				case attr(n, "name") == "description":
					info.Description = attr(n, "content")
				case attr(n, "property") == "og:image":
					info.Image = attr(n, "content")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	info.Title = truncateTitle(title)
	return info, nil
}

func truncateTitle(title string) string {
	r := []rune(title)
	if len(r) < maxTitleLen {
		return title
	}
	return string(r[:maxTitleLen-3]) + "..."
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
