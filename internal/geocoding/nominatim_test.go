package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func okBody(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "Bangkok, Thailand", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, "1", req.URL.Query().Get("polygon_geojson"))
				assert.Equal(t, "zh", req.URL.Query().Get("accept-language"))
				assert.Equal(
					t,
					"Meridian-Zone-Service/1.0 (https://github.com/UnknownOlympus/meridian)",
					req.Header.Get("User-Agent"),
				)

				return okBody(`[{
					"lat":"13.7524938","lon":"100.4935089",
					"display_name":"Bangkok, Thailand",
					"boundingbox":["13.4940881","13.9551366","100.3270154","100.9386352"],
					"geojson":{"type":"Point","coordinates":[100.4935089,13.7524938]}
				}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "Bangkok, Thailand")

		require.NoError(t, err)
		require.NotNil(t, place)
		assert.Equal(t, "Bangkok, Thailand", place.Query)
		assert.Equal(t, "Bangkok, Thailand", place.Address)
		assert.InEpsilon(t, 13.7524938, place.Latitude, 0.0001)
		assert.InEpsilon(t, 100.4935089, place.Longitude, 0.0001)
		require.NotNil(t, place.BBox)
		assert.InEpsilon(t, 100.3270154, place.BBox.West, 0.0001)
		assert.InEpsilon(t, 100.9386352, place.BBox.East, 0.0001)
		assert.NotNil(t, place.Geometry)
	})

	t.Run("antimeridian bbox keeps positive edge", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`[{"lat":"-17.7","lon":"178.0","boundingbox":["-21.0","-12.4","-180","180"]}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "Fiji")

		require.NoError(t, err)
		require.NotNil(t, place.BBox)
		assert.InDelta(t, -180.0, place.BBox.West, 1e-9)
		assert.InDelta(t, 180.0, place.BBox.East, 1e-9)
	})

	t.Run("malformed bbox is skipped", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`[{"lat":"1","lon":"2","boundingbox":["1","2","3"]}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "odd")

		require.NoError(t, err)
		assert.Nil(t, place.BBox)
	})

	t.Run("bbox with non numeric edges is skipped", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`[{"lat":"1","lon":"2","boundingbox":["1","2","west","4"]}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "odd")

		require.NoError(t, err)
		assert.Nil(t, place.BBox)
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "nowhere at all")

		require.Error(t, err)
		require.Nil(t, place)
		assert.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusTooManyRequests,
					Body:       io.NopCloser(bytes.NewBufferString(`{"error":"Rate limit exceeded"}`)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "some place")

		require.Error(t, err)
		require.Nil(t, place)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`invalid json`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "some place")

		require.Error(t, err)
		require.Nil(t, place)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`[{"lat":"invalid","lon":"-122.0842499"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "some place")

		require.Error(t, err)
		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`[{"lat":"37.4224764","lon":"invalid"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "some place")

		require.Error(t, err)
		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("non-finite longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`[{"lat":"37.4224764","lon":"nan"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "some place")

		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
	})

	t.Run("non-finite bounding box is ignored", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return okBody(`[{"lat":"1","lon":"2","boundingbox":["1","2","-Inf","4"]}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "some place")

		require.NoError(t, err)
		assert.Nil(t, place.BBox)
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "some place")

		require.Error(t, err)
		require.Nil(t, place)
		assert.Contains(t, err.Error(), "failed to execute geocoding request")
	})

	t.Run("context cancellation", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel()

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, req.Context().Err()
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(newCtx, "some place")

		require.Error(t, err)
		require.Nil(t, place)
	})
}

func TestNominatimProvider_Fallbacks(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("falls back to the first query component", func(t *testing.T) {
		var queries []string
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				query := req.URL.Query().Get("q")
				queries = append(queries, query)

				if query == "Langfang" {
					return okBody(`[{"lat":"39.5","lon":"116.7"}]`), nil
				}
				return okBody(`[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger, "en")
		place, err := provider.Geocode(ctx, "Langfang, Hebei, Nowhere")

		require.NoError(t, err)
		assert.Equal(t, "Langfang, Hebei, Nowhere", place.Query)
		assert.InEpsilon(t, 116.7, place.Longitude, 0.0001)
		assert.Equal(t, []string{"Langfang, Hebei, Nowhere", "Langfang, Hebei", "Langfang"}, queries)
	})

	t.Run("falls back to the next language", func(t *testing.T) {
		var languages []string
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				lang := req.URL.Query().Get("accept-language")
				languages = append(languages, lang)

				if lang == "en" {
					return okBody(`[{"lat":"13.75","lon":"100.49"}]`), nil
				}
				return okBody(`[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "Bangkok")

		require.NoError(t, err)
		assert.InEpsilon(t, 100.49, place.Longitude, 0.0001)
		assert.Equal(t, []string{"zh", "en"}, languages)
	})

	t.Run("full query in every language before simplifying", func(t *testing.T) {
		var attempts []string
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				params := req.URL.Query()
				attempts = append(attempts, params.Get("accept-language")+":"+params.Get("q"))

				if params.Get("accept-language") == "en" && params.Get("q") == "Bangkok, Thailand" {
					return okBody(`[{"lat":"13.75","lon":"100.49"}]`), nil
				}
				return okBody(`[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger, "zh", "en")
		place, err := provider.Geocode(ctx, "Bangkok, Thailand")

		require.NoError(t, err)
		assert.InEpsilon(t, 100.49, place.Longitude, 0.0001)
		assert.Equal(t, []string{"zh:Bangkok, Thailand", "en:Bangkok, Thailand"}, attempts)
	})

	t.Run("all fallbacks fail", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return okBody(`[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger, "zh", "en")
		place, err := provider.Geocode(ctx, "Atlantis, Ocean")

		require.Error(t, err)
		require.Nil(t, place)
		assert.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
		assert.Equal(t, 4, requestCount, "two variations in two languages")
	})

	t.Run("single-part query tries once per language", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return okBody(`[{"lat":"48.9226","lon":"24.7111"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "Івано-Франківськ")

		require.NoError(t, err)
		require.NotNil(t, place)
		assert.Equal(t, 1, requestCount, "should succeed on first try")
	})
}

func TestNewNominatimProvider(t *testing.T) {
	provider := geocoding.NewNominatimProvider(slog.Default(), "en")

	require.NotNil(t, provider)
}
