package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/config"
)

// Renderer converts markdown content to its presentational HTML form. In
// production this is the GitHub Markdown API.
type Renderer interface {
	RenderMarkdown(ctx context.Context, text string) (string, error)
}

// LinkExtractor renders content and collects hyperlink targets for URL rule
// evaluation. Results are memoized per distinct content string, so rules
// sharing identical content render at most once per run.
type LinkExtractor struct {
	renderer Renderer
	cache    map[string][]string
}

// NewLinkExtractor creates an extractor scoped to one run.
func NewLinkExtractor(renderer Renderer) *LinkExtractor {
	return &LinkExtractor{
		renderer: renderer,
		cache:    make(map[string][]string),
	}
}

// Links returns the hyperlink targets of the rendered content.
func (e *LinkExtractor) Links(ctx context.Context, content string) ([]string, error) {
	if links, ok := e.cache[content]; ok {
		return links, nil
	}

	rendered, err := e.renderer.RenderMarkdown(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to render content: %w", err)
	}

	links, err := extractLinks(rendered)
	if err != nil {
		return nil, err
	}
	e.cache[content] = links
	return links, nil
}

func extractLinks(markup string) ([]string, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered content: %w", err)
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					links = append(links, attr.Val)
					break
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return links, nil
}

// linkHits reports whether any extracted link trips the URL rule: under deny
// a link hits when it matches a denied pattern, under allow_only when it
// matches none of the allowed patterns. One hit is sufficient.
func linkHits(links []string, mode config.URLMode, list []config.URLPattern) (bool, error) {
	for _, link := range links {
		matched, err := linkMatchesAny(link, list)
		if err != nil {
			return false, err
		}
		switch mode {
		case config.URLDeny:
			if matched {
				return true, nil
			}
		case config.URLAllowOnly:
			if !matched {
				return true, nil
			}
		}
	}
	return false, nil
}

func linkMatchesAny(link string, list []config.URLPattern) (bool, error) {
	for _, p := range list {
		target := link
		if p.Field != "" {
			component, err := urlComponent(link, p.Field)
			if err != nil {
				return false, err
			}
			target = component
		}
		ok, err := Match(target, []string{p.Pattern})
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func urlComponent(link, field string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("unparseable link %q: %w", link, err)
	}
	switch field {
	case "hostname":
		return u.Hostname(), nil
	case "host":
		return u.Host, nil
	case "path":
		return u.Path, nil
	case "scheme":
		return u.Scheme, nil
	case "query":
		return u.RawQuery, nil
	case "fragment":
		return u.Fragment, nil
	}
	return "", fmt.Errorf("unknown url field %q", field)
}
