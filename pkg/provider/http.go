package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fustilio/glost/pkg/errors"
)

// httpFetchTimeout bounds one dictionary download.
const httpFetchTimeout = 30 * time.Second

// LoadStaticDictURL fetches a JSON dictionary of the same shape
// LoadStaticDict reads and loads it into memory. Only http and https
// URLs are accepted; remote dictionaries are downloaded once at
// registry construction, not per lookup.
func LoadStaticDictURL(ctx context.Context, name, url string) (*StaticDict, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, httpFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "fetch dictionary %s", url)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch dictionary %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeNetwork, "fetch dictionary %s: status %d", url, resp.StatusCode)
	}

	var entries map[string]map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse dictionary %s", url)
	}
	return NewStaticDict(name, entries), nil
}
