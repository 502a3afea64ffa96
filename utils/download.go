package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// DownloadImage downloads the image from the internet and saves it into a temporary file.
// The caller is responsible for removing the file.
func DownloadImage(ctx context.Context, uri string) (*os.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URI %s: %w", uri, err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI: %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI: %s, status %v", uri, res.Status)
	}

	tmpfile, err := os.CreateTemp("", "markup-*")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}
	fail := func(err error) (*os.File, error) {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
		return nil, err
	}

	// Copy the image binary data into the temporary file.
	if _, err := io.Copy(tmpfile, res.Body); err != nil {
		return fail(fmt.Errorf("unable to copy the source URI into the destination file: %w", err))
	}

	ctype, err := DetectContentType(tmpfile.Name())
	if err != nil {
		return fail(err)
	}
	if !strings.Contains(ctype, "image") {
		return fail(fmt.Errorf("the downloaded file is not a valid image type: %s", ctype))
	}

	if _, err := tmpfile.Seek(0, io.SeekStart); err != nil {
		return fail(err)
	}
	return tmpfile, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}
