package feeds

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/goliatone/go-privateplot/internal/articles"
)

// Change frequencies used in the sitemap.
const (
	ChangeDaily  = "daily"
	ChangeWeekly = "weekly"
)

const articlePriority = 0.6

// StaticPage is a non-article page listed in the sitemap. A zero LastMod
// means the page is stamped with the generation time.
type StaticPage struct {
	Path       string
	Priority   float64
	ChangeFreq string
	LastMod    time.Time
}

// DefaultStaticPages lists the home page only.
func DefaultStaticPages() []StaticPage {
	return []StaticPage{{Path: "/", Priority: 1.0, ChangeFreq: ChangeDaily}}
}

type urlSet struct {
	XMLName xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func (s *Service) buildSitemap(list []*articles.Article) ([]byte, error) {
	now := s.now().UTC()
	set := urlSet{URLs: make([]sitemapURL, 0, len(s.pages)+len(list))}

	for _, page := range s.pages {
		lastMod := page.LastMod
		if lastMod.IsZero() {
			lastMod = now
		}
		loc := s.links.Page(page.Path)
		if page.Path == "/" {
			loc = s.links.Home()
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        loc,
			LastMod:    lastMod.UTC().Format(time.RFC3339),
			ChangeFreq: page.ChangeFreq,
			Priority:   formatPriority(page.Priority),
		})
	}

	for _, article := range list {
		loc, err := s.links.Article(article.Slug)
		if err != nil {
			return nil, err
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        loc,
			LastMod:    article.LastModified().UTC().Format(time.RFC3339),
			ChangeFreq: ChangeWeekly,
			Priority:   formatPriority(articlePriority),
		})
	}
	return marshalDocument(set)
}

func formatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
