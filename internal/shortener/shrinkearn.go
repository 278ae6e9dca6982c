package shortener

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
)

const defaultAPIURL = "https://shrinkearn.com/api"

// Client shortens URLs through the ShrinkEarn API. Every shortened link
// a visitor resolves earns ad revenue, which is the point of routing
// downloads through it.
type Client struct {
	apiKey string
	apiURL string
	http   *http.Client
}

// New creates a shortener client. An empty apiKey disables shortening:
// Shorten then returns the input unchanged.
func New(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		http:   &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Status       string `json:"status"`
	ShortenedURL string `json:"shortenedUrl"`
	Message      string `json:"message"`
}

// Shorten returns the monetized short link for longURL. Transient API
// failures are retried a couple of times; if the API still refuses, the
// original URL is returned along with the error so callers can fall
// back to the direct link.
func (c *Client) Shorten(longURL string) (string, error) {
	if c.apiKey == "" {
		return longURL, nil
	}

	var short string
	err := retry.Do(
		func() error {
			result, err := c.shortenOnce(longURL)
			if err != nil {
				return err
			}
			short = result
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return longURL, err
	}
	return short, nil
}

func (c *Client) shortenOnce(longURL string) (string, error) {
	params := url.Values{}
	params.Set("api", c.apiKey)
	params.Set("url", longURL)

	resp, err := c.http.Get(c.apiURL + "?" + params.Encode())
	if err != nil {
		return "", fmt.Errorf("shortener request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shortener returned status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode shortener response: %w", err)
	}
	if body.Status != "success" || body.ShortenedURL == "" {
		if body.Message != "" {
			return "", fmt.Errorf("shortener error: %s", body.Message)
		}
		return "", errors.New("shortener returned no url")
	}

	return body.ShortenedURL, nil
}
