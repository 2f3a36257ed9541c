package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tutorials/internal/model"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

var ErrInvalidURL = errors.New("invalid url")

// Scraper defines the interface for downloading web pages.
// This allows us to mock the "Download" step in tests.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper is the real implementation that uses the internet
type DefaultScraper struct{}

func (s *DefaultScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	art, err := readability.FromURL(url, timeout)
	return &art, err
}

// Creator is the piece of the tutorial service the importer needs.
type Creator interface {
	Create(ctx context.Context, in model.TutorialInput) (model.Tutorial, error)
}

// Importer turns a web article into a new tutorial. The article title
// becomes the tutorial title and its excerpt the description.
type Importer struct {
	creator Creator
	logger  *zap.Logger
	scraper Scraper
	timeout time.Duration
}

// New initializes the importer with the DefaultScraper
func New(creator Creator, logger *zap.Logger, timeout time.Duration) *Importer {
	return &Importer{
		creator: creator,
		logger:  logger,
		scraper: &DefaultScraper{},
		timeout: timeout,
	}
}

func (i *Importer) Import(ctx context.Context, rawURL string) (model.Tutorial, error) {
	logger := i.logger.With(zap.String("url", rawURL))

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.Tutorial{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	logger.Info("Downloading")
	article, err := i.scraper.Scrape(rawURL, i.timeout)
	if err != nil {
		logger.Error("Scraping failed", zap.Error(err))
		return model.Tutorial{}, fmt.Errorf("scrape %s: %w", rawURL, err)
	}

	in := model.TutorialInput{
		Title:       strings.TrimSpace(article.Title),
		Description: strings.TrimSpace(article.Excerpt),
	}
	if in.Title == "" {
		in.Title = rawURL
	}

	tutorial, err := i.creator.Create(ctx, in)
	if err != nil {
		return model.Tutorial{}, err
	}

	logger.Info("Import complete", zap.Int64("id", tutorial.ID), zap.String("title", tutorial.Title))
	return tutorial, nil
}
