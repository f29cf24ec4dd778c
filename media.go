package atelier

import (
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Patterns for every way uploaded files are referenced from stored content:
// markdown images plus raw img/video/source tags.
var mediaRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`!\[.*?\]\(/uploads/([^)]+)\)`),
	regexp.MustCompile(`<img[^>]+src="/uploads/([^"]+)"`),
	regexp.MustCompile(`<video[^>]+src="/uploads/([^"]+)"`),
	regexp.MustCompile(`<source[^>]+src="/uploads/([^"]+)"`),
}

// mediaRefs collects the uploaded filenames referenced by an entity's image
// URL and body content. Filenames are returned bare, without the /uploads/
// prefix, deduplicated.
func mediaRefs(imageURL, content string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		name = filepath.Base(name)
		if name == "" || name == "." || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	if rest, ok := strings.CutPrefix(imageURL, "/uploads/"); ok && rest != "" {
		add(rest)
	}
	for _, re := range mediaRefPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			add(m[1])
		}
	}
	return out
}

// removeUploadedMedia deletes the files an entity referenced. Cleanup is
// best effort: a missing or undeletable file is logged and never blocks
// the entity deletion that triggered it.
func removeUploadedMedia(uploadsDir, imageURL, content string) {
	for _, name := range mediaRefs(imageURL, content) {
		path := filepath.Join(uploadsDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("media: could not remove %s: %v", path, err)
		}
	}
}
