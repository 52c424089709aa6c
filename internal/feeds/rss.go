package feeds

import (
	"encoding/xml"
	"time"

	"github.com/goliatone/go-privateplot/internal/articles"
)

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

func (s *Service) buildRSS(list []*articles.Article) ([]byte, error) {
	doc := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:         s.site.Title,
			Link:          s.links.Home(),
			Description:   s.site.Description,
			LastBuildDate: s.now().UTC().Format(time.RFC1123Z),
			Items:         make([]rssItem, 0, len(list)),
		},
	}
	for _, article := range list {
		link, err := s.links.Article(article.Slug)
		if err != nil {
			return nil, err
		}
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       article.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: article.Summary,
			PubDate:     article.CreatedAt.UTC().Format(time.RFC1123Z),
		})
	}
	return marshalDocument(doc)
}
