package imaging

import (
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"mcq-baseline/internal/constants"
)

// NewHTTPClient creates an optimized HTTP client for image URL fetches.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: constants.HttpTimeout,
		Transport: &http.Transport{
			MaxIdleConns:          constants.MaxIdleConns,
			MaxIdleConnsPerHost:   constants.MaxIdleConnsPerHost,
			MaxConnsPerHost:       constants.MaxConnsPerHost,
			DisableCompression:    false,
			DisableKeepAlives:     false,
			IdleConnTimeout:       constants.IdleConnTimeout,
			TLSHandshakeTimeout:   constants.TLSHandshakeTimeout,
			ResponseHeaderTimeout: constants.ResponseHeaderTimeout,
			ExpectContinueTimeout: constants.ExpectContinueTimeout,
		},
	}
}

// fetchURL downloads an image body with bounded retries and exponential
// backoff. A nil return means the fetch failed; the caller degrades to
// "no image".
func (d *Decoder) fetchURL(url string) []byte {
	backoff := constants.InitalBackoff

	for attempt := 0; attempt <= constants.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := delayTime(backoff)
			log.Debug().Str("url", url).Int("attempt", attempt).Dur("delay", delay).Msg("retrying image fetch")
			time.Sleep(delay)
			backoff = backoffTime(backoff, constants.BackoffFactor)
		}

		resp, err := d.client.Get(url)
		if err != nil {
			log.Debug().Str("url", url).Int("attempt", attempt).Err(err).Msg("image fetch failed")
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				log.Debug().Str("url", url).Err(err).Msg("failed to read image body")
				return nil
			}
			return body
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusServiceUnavailable {
			log.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("image fetch rejected")
			return nil
		}
	}

	log.Debug().Str("url", url).Msg("exhausted image fetch retries")
	return nil
}

func delayTime(backoff time.Duration) time.Duration {
	return backoff + time.Duration(rand.Intn(500))*time.Millisecond
}

func backoffTime(backoff time.Duration, factor float64) time.Duration {
	return time.Duration(float64(backoff) * factor)
}
