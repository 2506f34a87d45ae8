package content

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultFeedURL = "https://www.tagesschau.de/newsticker.rdf"
	MaxHeadlines   = 8
)

// Feed is a parsed RSS/RDF document.
type Feed struct {
	Title     string
	Headlines []string
	FetchedAt time.Time
}

type FeedController struct {
	client *http.Client
	url    string
	last   *Feed
}

func NewFeedController(client *http.Client, url string) *FeedController {
	if url == "" {
		url = DefaultFeedURL
	}
	return &FeedController{client: client, url: url}
}

func (c *FeedController) Name() string { return "feed" }

func (c *FeedController) URL() string { return c.url }

// Refresh fetches and parses the feed. On failure the previous snapshot is kept.
func (c *FeedController) Refresh(ctx context.Context) error {
	body, err := fetch(ctx, c.client, c.url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", c.url, err)
	}
	feed, err := ParseFeed(bytes.NewReader(body), MaxHeadlines)
	if err != nil {
		return err
	}
	feed.FetchedAt = time.Now()
	c.last = feed
	return nil
}

// Feed returns the last good snapshot, or nil before the first success.
func (c *FeedController) Feed() *Feed { return c.last }

// ParseFeed reads the text of every <title> element. The first one is the
// channel title, every following one a headline.
func ParseFeed(r io.Reader, max int) (*Feed, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	feed := &Feed{}
	seenTitle := false
	inTitle := false
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !seenTitle {
				return nil, fmt.Errorf("parse feed: %w", err)
			}
			// keep what was read so far, like a truncated download
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "title" {
				inTitle = true
				text.Reset()
			}
		case xml.CharData:
			if inTitle {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local != "title" || !inTitle {
				continue
			}
			inTitle = false
			s := strings.TrimSpace(text.String())
			if !seenTitle {
				feed.Title = s
				seenTitle = true
				continue
			}
			if s != "" && len(feed.Headlines) < max {
				feed.Headlines = append(feed.Headlines, s)
			}
		}
	}

	if !seenTitle {
		return nil, fmt.Errorf("parse feed: no title element")
	}
	return feed, nil
}
