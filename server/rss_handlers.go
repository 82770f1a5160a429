package server

import (
	"log"
	"net/http"

	"github.com/umputun/feedrewriter/pkg/feed"
)

const defaultRSSLimit = 50

// rssHandler serves RSS feed of generated posts, optionally limited with ?category=...
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	posts, err := s.db.ListPosts(r.Context(), defaultRSSLimit)
	if err != nil {
		log.Printf("[ERROR] failed to get posts for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	generator := feed.NewGenerator(s.config.GetFullConfig().Server.BaseURL)
	rss, err := generator.GenerateRSS(posts, category)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

// opmlHandler exports configured source feeds
func (s *Server) opmlHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.db.GetFeeds(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to get feeds for OPML: %v", err)
		http.Error(w, "Failed to generate OPML", http.StatusInternalServerError)
		return
	}

	opml, err := feed.NewGenerator(s.config.GetFullConfig().Server.BaseURL).GenerateOPML(feeds)
	if err != nil {
		log.Printf("[ERROR] failed to generate OPML: %v", err)
		http.Error(w, "Failed to generate OPML", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	if _, err := w.Write([]byte(opml)); err != nil {
		log.Printf("[ERROR] failed to write OPML response: %v", err)
	}
}
