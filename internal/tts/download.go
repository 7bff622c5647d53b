package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const downloadChunkSize = 8192

// httpDoer abstracts the HTTP client for testability.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// downloadBytes streams a GET response, reporting percent progress when
// the length header is present. With an unknown total no progress is
// reported; the caller decides how to signal completion.
func downloadBytes(ctx context.Context, client httpDoer, url string, onProgress ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	total := resp.ContentLength
	var data []byte
	downloaded := 0
	chunk := make([]byte, downloadChunkSize)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			data = append(data, chunk[:n]...)
			downloaded += n
			if onProgress != nil && total > 0 {
				pct := downloaded * 100 / int(total)
				if pct > 100 {
					pct = 100
				}
				onProgress(pct)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}

	if onProgress != nil && total > 0 {
		onProgress(100)
	}
	return data, nil
}

// downloadAudio applies the layered download strategy: the primary client
// streams with incremental progress; on any failure the fallback client
// fetches without incremental progress, reporting only a completion signal.
func downloadAudio(ctx context.Context, primary, fallback httpDoer, url string, onProgress ProgressFunc) ([]byte, error) {
	data, err := downloadBytes(ctx, primary, url, onProgress)
	if err == nil {
		return data, nil
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return nil, err
	}
	resp, fbErr := fallback.Do(req)
	if fbErr != nil {
		return nil, fmt.Errorf("%v", fbErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	data, fbErr = io.ReadAll(resp.Body)
	if fbErr != nil {
		return nil, fbErr
	}
	reportComplete(onProgress)
	return data, nil
}
