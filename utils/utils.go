package utils

import (
	"crypto/rand"
	"log"
	"math"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/parnurzeal/gorequest"
	"golang.org/x/xerrors"
)

type fetchOptions struct {
	timeout time.Duration
	wait    func(attempt int) time.Duration
}

// FetchOption configures FetchURL.
type FetchOption func(*fetchOptions)

// WithTimeout bounds a single request. Zero means no timeout.
func WithTimeout(d time.Duration) FetchOption {
	return func(o *fetchOptions) { o.timeout = d }
}

// WithBackoff overrides the wait between attempts.
func WithBackoff(f func(attempt int) time.Duration) FetchOption {
	return func(o *fetchOptions) { o.wait = f }
}

// FetchURL returns HTTP response body. retry is the number of additional attempts
// after the first one; 0 means a single attempt.
func FetchURL(url string, retry int, opts ...FetchOption) (res []byte, err error) {
	o := &fetchOptions{wait: backoff}
	for _, opt := range opts {
		opt(o)
	}

	for i := 0; i <= retry; i++ {
		if i > 0 {
			wait := o.wait(i)
			log.Printf("retry after %s\n", wait)
			time.Sleep(wait)
		}
		res, err = fetchURL(url, o.timeout)
		if err == nil {
			return res, nil
		}
	}
	return nil, xerrors.Errorf("failed to fetch URL: %w", err)
}

func backoff(attempt int) time.Duration {
	wait := math.Pow(float64(attempt), 2) + float64(randInt()%10)
	return time.Duration(wait) * time.Second
}

func randInt() int {
	seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	return int(seed.Int64())
}

func fetchURL(url string, timeout time.Duration) ([]byte, error) {
	req := gorequest.New().Get(url)
	if timeout > 0 {
		req = req.Timeout(timeout)
	}
	resp, body, errs := req.Type("text").EndBytes()
	if len(errs) > 0 {
		return nil, xerrors.Errorf("HTTP error. url: %s, err: %w", url, errs[0])
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, xerrors.Errorf("HTTP error. status code: %d, url: %s", resp.StatusCode, url)
	}
	return body, nil
}

// TrimSpaceNewline deletes space character and newline character(CR/LF)
func TrimSpaceNewline(str string) string {
	str = strings.TrimSpace(str)
	return strings.Trim(str, "\r\n")
}

func LookupEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultValue
}
