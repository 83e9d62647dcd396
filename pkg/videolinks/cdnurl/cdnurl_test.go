package cdnurl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamvault/video-links/pkg/videolinks/cdnurl"
)

func TestAppend(t *testing.T) {
	r := cdnurl.New("https://cdn.example.com/")

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"relative key", "files/video.mp4", "https://cdn.example.com/files/video.mp4"},
		{"leading slash", "/files/video.mp4", "https://cdn.example.com/files/video.mp4"},
		{"empty key stays empty", "", ""},
		{"query preserved", "files/v.mp4?expires=1677409308&token=abc", "https://cdn.example.com/files/v.mp4?expires=1677409308&token=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Append(tt.key))
		})
	}
}

func TestReplace(t *testing.T) {
	r := cdnurl.New("https://cdn.example.com")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"absolute url gets new host",
			"https://old.example.com/files/video.mp4",
			"https://cdn.example.com/files/video.mp4",
		},
		{
			"query and path survive the rewrite",
			"http://old.example.com/files/v.mp4?expires=1677409308&token=2bd6675e",
			"https://cdn.example.com/files/v.mp4?expires=1677409308&token=2bd6675e",
		},
		{
			"relative path is appended",
			"files/20200323095113/video_sde.mp4?expires=1677409308&token=2bd6675e",
			"https://cdn.example.com/files/20200323095113/video_sde.mp4?expires=1677409308&token=2bd6675e",
		},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Replace(tt.raw))
		})
	}
}
