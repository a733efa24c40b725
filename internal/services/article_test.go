package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Learning Spanish Verbs</title>
<meta name="author" content="Ana Lopez"></head>
<body>
<nav>Home | About</nav>
<article>
<h1>Learning Spanish Verbs</h1>
<p>Spanish verbs are conjugated according to person, number, tense and mood. Regular verbs follow
predictable patterns based on their infinitive endings: -ar, -er and -ir.</p>
<p>Irregular verbs such as ser, ir and tener must be memorized. Flashcards and spaced repetition are
an effective way to practice the most common conjugations every day.</p>
<p>Start with the present tense, then move on to the preterite and the imperfect once the basic
patterns feel natural. Reading short articles helps reinforce the forms in context.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func TestArticleExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	svc := NewArticleService(srv.Client())
	article, err := svc.Extract(context.Background(), srv.URL+"/verbs")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(article.Title, "Spanish Verbs") {
		t.Errorf("unexpected title %q", article.Title)
	}
	if !strings.Contains(article.Content, "Irregular verbs") {
		t.Errorf("main text missing from content: %q", article.Content)
	}
	if article.URL != srv.URL+"/verbs" {
		t.Errorf("unexpected url %q", article.URL)
	}
}

func TestArticleExtract_RejectsBadURLs(t *testing.T) {
	svc := NewArticleService(nil)
	for _, u := range []string{"", "ftp://example.com/file", "file:///etc/passwd", "not a url", "http://"} {
		_, err := svc.Extract(context.Background(), u)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Extract(%q): expected ValidationError, got %v", u, err)
		}
	}
}

func TestArticleExtract_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"too large", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("a", maxArticleBytes+10)))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := NewArticleService(srv.Client()).Extract(context.Background(), srv.URL)
			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Errorf("expected UpstreamError, got %v", err)
			}
		})
	}
}
