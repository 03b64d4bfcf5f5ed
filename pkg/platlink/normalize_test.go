package platlink

import (
	"testing"
)

func TestNormalize_RoundTrip(t *testing.T) {
	t.Helper()

	tests := []struct {
		name     string
		platform Platform
		input    string
		wantURL  string
		wantID   string
	}{
		{
			name:     "Spotify bare ID",
			platform: Spotify,
			input:    "4uLU6hMCjMI75M1A2tKUQC",
			wantURL:  "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			wantID:   "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Spotify URI",
			platform: Spotify,
			input:    "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
			wantURL:  "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			wantID:   "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "YouTube bare ID",
			platform: YouTube,
			input:    "dQw4w9WgXcQ",
			wantURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantID:   "dQw4w9WgXcQ",
		},
		{
			name:     "YouTube short URL",
			platform: YouTube,
			input:    "https://youtu.be/dQw4w9WgXcQ",
			wantURL:  "https://youtu.be/dQw4w9WgXcQ",
			wantID:   "dQw4w9WgXcQ",
		},
		{
			name:     "YouTube Music bare ID",
			platform: YouTubeMusic,
			input:    "dQw4w9WgXcQ",
			wantURL:  "https://music.youtube.com/watch?v=dQw4w9WgXcQ",
			wantID:   "dQw4w9WgXcQ",
		},
		{
			name:     "Tidal URI",
			platform: Tidal,
			input:    "tidal://track/12345678",
			wantURL:  "https://tidal.com/browse/track/12345678",
			wantID:   "12345678",
		},
		{
			name:     "Tidal bare ID",
			platform: Tidal,
			input:    "12345678",
			wantURL:  "https://tidal.com/browse/track/12345678",
			wantID:   "12345678",
		},
		{
			name:     "Deezer bare ID",
			platform: Deezer,
			input:    "3135556",
			wantURL:  "https://www.deezer.com/track/3135556",
			wantID:   "3135556",
		},
		{
			name:     "SoundCloud bare ID",
			platform: SoundCloud,
			input:    "13158665",
			wantURL:  "https://api.soundcloud.com/tracks/13158665",
			wantID:   "13158665",
		},
		{
			name:     "Amazon ASIN",
			platform: Amazon,
			input:    "B0ABCD1234",
			wantURL:  "https://music.amazon.com/tracks/B0ABCD1234",
			wantID:   "B0ABCD1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.platform, tt.input)
			if got.URL != tt.wantURL {
				t.Errorf("Normalize() URL = %q, want %q", got.URL, tt.wantURL)
			}
			if got.RawID != tt.wantID {
				t.Errorf("Normalize() RawID = %q, want %q", got.RawID, tt.wantID)
			}
		})
	}
}

func TestNormalize_IdempotentOnCanonicalURLs(t *testing.T) {
	tests := []struct {
		platform Platform
		url      string
	}{
		{Spotify, "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"},
		{AppleMusic, "https://music.apple.com/us/album/some-album/1440857780?i=1440857781"},
		{YouTube, "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{YouTubeMusic, "https://music.youtube.com/watch?v=dQw4w9WgXcQ"},
		{Tidal, "https://tidal.com/browse/track/12345678"},
		{Deezer, "https://www.deezer.com/track/3135556"},
		{SoundCloud, "https://soundcloud.com/rick-astley/never-gonna-give-you-up"},
		{Amazon, "https://music.amazon.com/tracks/B0ABCD1234"},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			got := Normalize(tt.platform, tt.url)
			if got.URL != tt.url {
				t.Errorf("Normalize() changed canonical URL: got %q, want %q", got.URL, tt.url)
			}
			// And normalizing again stays stable.
			again := Normalize(tt.platform, got.URL)
			if again.URL != got.URL {
				t.Errorf("Normalize() not idempotent: %q -> %q", got.URL, again.URL)
			}
		})
	}
}

func TestNormalize_AppleMusicBareIDNeverFabricatesURL(t *testing.T) {
	got := Normalize(AppleMusic, "1440857781")

	if got.URL != "" {
		t.Errorf("expected no URL for bare Apple Music ID, got %q", got.URL)
	}
	if got.RawID != "1440857781" {
		t.Errorf("RawID = %q, want %q", got.RawID, "1440857781")
	}
	if got.Note == "" {
		t.Error("expected an explanatory note for bare Apple Music ID")
	}
}

func TestNormalize_AppleMusicURLExtraction(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
	}{
		{
			name:   "Song URL",
			input:  "https://music.apple.com/us/song/never-gonna-give-you-up/1558533900",
			wantID: "1558533900",
		},
		{
			name:   "Album URL with track parameter",
			input:  "https://music.apple.com/us/album/whenever-you-need-somebody/1558533895?i=1558533900",
			wantID: "1558533900",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(AppleMusic, tt.input)
			if got.RawID != tt.wantID {
				t.Errorf("RawID = %q, want %q", got.RawID, tt.wantID)
			}
			if got.URL != tt.input {
				t.Errorf("URL = %q, want input kept %q", got.URL, tt.input)
			}
		})
	}
}

func TestNormalize_UnrecognizedKeptAsIs(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		input    string
	}{
		{"Garbage text", Spotify, "not a spotify link at all"},
		{"Wrong platform URL", Tidal, "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"},
		{"Truncated ID", YouTube, "dQw4w9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.platform, tt.input)
			if got.URL != tt.input {
				t.Errorf("expected passthrough URL %q, got %q", tt.input, got.URL)
			}
			if got.RawID != "" {
				t.Errorf("expected no RawID, got %q", got.RawID)
			}
			if got.Note == "" {
				t.Error("expected a kept-as-is note")
			}
		})
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	got := Normalize(Spotify, "   ")
	if got.URL != "" || got.RawID != "" {
		t.Errorf("expected empty result, got URL=%q RawID=%q", got.URL, got.RawID)
	}
}

func TestNormalizeValue_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		input    string
		want     string
	}{
		{"Spotify URI to URL", Spotify, "spotify:track:4uLU6hMCjMI75M1A2tKUQC", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"},
		{"Apple bare ID stays ID", AppleMusic, "1440857781", "1440857781"},
		{"Garbage stays put", Deezer, "hello world", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeValue(tt.platform, tt.input); got != tt.want {
				t.Errorf("NormalizeValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAll_SkipsEmpties(t *testing.T) {
	got := NormalizeAll(map[Platform]string{
		Spotify: "4uLU6hMCjMI75M1A2tKUQC",
		Tidal:   "   ",
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if _, ok := got[Spotify]; !ok {
		t.Error("expected a Spotify entry")
	}
}
