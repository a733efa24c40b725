package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"studywai-backend/internal/models"
)

const maxArticleBytes = 10 * 1024 * 1024

// ArticleService fetches a web page and extracts its main text.
type ArticleService struct {
	client *http.Client
}

func NewArticleService(client *http.Client) *ArticleService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ArticleService{client: client}
}

func (s *ArticleService) Extract(ctx context.Context, rawURL string) (*models.Article, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &ValidationError{Fields: map[string]string{"url": "A valid http or https URL is required"}}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"url": "A valid http or https URL is required"}}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; StudyWAI/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UpstreamError{Err: fmt.Errorf("fetch %s: %w", parsed.Host, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Err: fmt.Errorf("fetch %s: status %d", parsed.Host, resp.StatusCode)}
	}
	if resp.ContentLength > maxArticleBytes {
		return nil, &UpstreamError{Err: fmt.Errorf("page is larger than %d bytes", maxArticleBytes)}
	}

	// read one byte past the limit to tell "exactly at limit" from "too large"
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBytes+1))
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxArticleBytes {
		return nil, &UpstreamError{Err: fmt.Errorf("page is larger than %d bytes", maxArticleBytes)}
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("extract article: %w", err)}
	}
	content := strings.TrimSpace(article.TextContent)
	if content == "" {
		return nil, &UpstreamError{Err: fmt.Errorf("no readable content at %s", parsed.Host)}
	}

	return &models.Article{
		Title:    article.Title,
		Byline:   article.Byline,
		SiteName: article.SiteName,
		Content:  content,
		URL:      parsed.String(),
	}, nil
}
