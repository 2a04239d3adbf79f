package net

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

var ErrorURLNotFound = errors.New("URL not found")

// Download fetches the content at url and writes it to filepath.
func Download(url string, filepath string) (retErr error) {
	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	resp, err := getResp(url)
	if err != nil {
		return fmt.Errorf("error creating HTTP Get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("error saving downloaded content to file: %w", err)
	}

	return nil
}

// GetText fetches the content at url as a string.
func GetText(url string) (string, error) {
	resp, err := getResp(url)
	if err != nil {
		return "", fmt.Errorf("error creating HTTP Get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("error getting content (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading content: %w", err)
	}

	return string(b), nil
}
