package player

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/olivier-w/mngviz/internal/media"
)

// Metadata holds song information.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads ID3v2 tags from an MP3 file, falling back to the file
// or URL base name.
func ReadMetadata(source string) Metadata {
	if media.IsURL(source) {
		return Metadata{Title: urlTitle(source)}
	}

	if strings.EqualFold(filepath.Ext(source), ".mp3") {
		tag, err := id3v2.Open(source, id3v2.Options{Parse: true})
		if err == nil {
			defer tag.Close()
			m := Metadata{
				Title:  strings.TrimSpace(tag.Title()),
				Artist: strings.TrimSpace(tag.Artist()),
				Album:  strings.TrimSpace(tag.Album()),
			}
			if m.Title != "" {
				return m
			}
		}
	}

	base := filepath.Base(source)
	return Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))}
}

func urlTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return raw
	}
	base := path.Base(u.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}
