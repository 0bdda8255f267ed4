package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	fetchTimeout = 15 * time.Second
	// maxFetchSize caps remote roster downloads; a list of chat IDs has no
	// business being larger than this.
	maxFetchSize = 8 << 20
)

// FromFile reads and parses a roster from a local text file.
func FromFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseText(string(b)), nil
}

// FromURL downloads and parses a roster from a raw HTTP(S) URL, e.g. a raw
// GitHub link to a chat_ids.txt.
func FromURL(ctx context.Context, rawURL string) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid roster url %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster: unexpected status %s", resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	if len(b) > maxFetchSize {
		return nil, errors.New("fetch roster: response too large")
	}
	return ParseText(string(b)), nil
}
