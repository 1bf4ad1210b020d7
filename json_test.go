// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialJSONThreadsRequestOptions(t *testing.T) {
	s, err := Dial(context.Background(), "localhost:1234",
		WithTransport(TransportJSON),
		WithRequestOptions(
			WithHeader("Authorization", "Bearer tok"),
			WithQueryParam("session", "s1"),
		))
	require.NoError(t, err)
	defer s.Close()

	js, ok := s.(*jsonSession)
	require.True(t, ok)
	o := NewOptions(js.opts)
	assert.Equal(t, "Bearer tok", o.headers.Get("Authorization"))
	assert.Equal(t, "s1", o.queryParams.Get("session"))
}

func TestDialJSONAddsScheme(t *testing.T) {
	s, err := Dial(context.Background(), "localhost:1234", WithTransport(TransportJSON))
	require.NoError(t, err)
	defer s.Close()

	js := s.(*jsonSession)
	assert.Equal(t, "http://localhost:1234", js.uri.String())
}

func TestMergeQuery(t *testing.T) {
	uri, err := url.Parse("http://host/rpc?token=x")
	require.NoError(t, err)

	params := url.Values{}
	params.Set("session", "s1")

	got := mergeQuery(uri, params)
	merged, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "x", merged.Query().Get("token"))
	assert.Equal(t, "s1", merged.Query().Get("session"))

	// The dialed URL keeps its own query across requests.
	assert.Equal(t, "token=x", uri.RawQuery)

	// No params leaves the address as dialed.
	assert.Equal(t, "http://host/rpc?token=x", mergeQuery(uri, url.Values{}))
}
