// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/grafov/m3u8"
)

// maxPlaylistSize bounds how much of the stream URL Preflight reads.
const maxPlaylistSize = 1 << 20

// PreflightResult describes what the stream URL served.
type PreflightResult struct {
	Status      int
	ContentType string
	Playlist    string // "master", "media" or "" when the body is not HLS
	Variants    int    // master playlists only
	Segments    int    // media playlists only
}

// Preflight checks that the stream URL is reachable and, for HLS, that it
// serves a decodable playlist. It is advisory; capture does not depend on it.
func Preflight(ctx context.Context, client *http.Client, streamURL string) (PreflightResult, error) {
	var res PreflightResult

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return res, fmt.Errorf("preflight: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return res, fmt.Errorf("preflight: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	res.Status = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, fmt.Errorf("preflight: %s: %s", streamURL, resp.Status)
	}

	if !looksLikeHLS(streamURL, res.ContentType) {
		return res, nil
	}

	pl, kind, err := m3u8.DecodeFrom(io.LimitReader(resp.Body, maxPlaylistSize), false)
	if err != nil {
		return res, fmt.Errorf("preflight: decode playlist: %w", err)
	}
	switch kind {
	case m3u8.MASTER:
		res.Playlist = "master"
		if master, ok := pl.(*m3u8.MasterPlaylist); ok {
			res.Variants = len(master.Variants)
		}
	case m3u8.MEDIA:
		res.Playlist = "media"
		if media, ok := pl.(*m3u8.MediaPlaylist); ok {
			res.Segments = int(media.Count())
		}
	}
	return res, nil
}

func looksLikeHLS(streamURL, contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "mpegurl") {
		return true
	}
	path := streamURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.HasSuffix(strings.ToLower(path), ".m3u8")
}
