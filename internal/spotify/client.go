// Package spotify provides an optional metadata enricher backed by the
// Spotify Web API using the client-credentials flow.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"fanlink/internal/core"
)

// Client backfills track metadata from a Spotify track ID. Enrichment is
// best-effort: callers log and ignore failures.
type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger

	mutex  sync.Mutex
	client *spotify.Client
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// TrackByID fetches title/artist/album/ISRC/duration/cover for a Spotify
// track ID.
func (c *Client) TrackByID(ctx context.Context, id string) (*core.TrackMetadata, error) {
	if !c.Enabled() {
		return nil, errors.New("spotify enrichment not configured")
	}

	client := c.apiClient(ctx)

	track, err := client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch track %s: %w", id, err)
	}

	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}

	meta := &core.TrackMetadata{
		Title:      track.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      track.Album.Name,
		ISRC:       track.ExternalIDs["isrc"],
		DurationMS: int(track.Duration),
	}
	if len(track.Album.Images) > 0 {
		meta.CoverURL = track.Album.Images[0].URL
	}

	c.logger.Debug("Enriched track metadata from Spotify",
		zap.String("track_id", id),
		zap.String("title", meta.Title))

	return meta, nil
}

// apiClient lazily builds the authenticated API client. Client-credentials
// tokens are minted and refreshed by the oauth2 transport.
func (c *Client) apiClient(ctx context.Context) *spotify.Client {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.client != nil {
		return c.client
	}

	cfg := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	c.client = spotify.New(cfg.Client(ctx))
	return c.client
}
