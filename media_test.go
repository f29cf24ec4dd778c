package atelier

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeUpload(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write upload %s: %v", name, err)
	}
}

func assertGone(t *testing.T, dir, name string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
		t.Fatalf("%s should have been removed (err=%v)", name, err)
	}
}

func assertPresent(t *testing.T, dir, name string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Fatalf("%s should still exist: %v", name, err)
	}
}

func TestMediaRefs(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		content string
		want    []string
	}{
		{
			name:  "image url only",
			image: "/uploads/cover.jpg",
			want:  []string{"cover.jpg"},
		},
		{
			name:    "markdown image",
			content: "before ![alt text](/uploads/photo.png) after",
			want:    []string{"photo.png"},
		},
		{
			name:    "img tag",
			content: `<img class="wide" src="/uploads/pic.webp" alt="">`,
			want:    []string{"pic.webp"},
		},
		{
			name:    "video and source tags",
			content: `<video controls src="/uploads/clip.mp4"></video><source type="video/webm" src="/uploads/clip.webm">`,
			want:    []string{"clip.mp4", "clip.webm"},
		},
		{
			name:    "duplicates collapse",
			image:   "/uploads/same.jpg",
			content: `![x](/uploads/same.jpg) <img src="/uploads/same.jpg">`,
			want:    []string{"same.jpg"},
		},
		{
			name:    "external urls ignored",
			image:   "https://cdn.example.com/a.jpg",
			content: `<img src="https://cdn.example.com/b.jpg">`,
			want:    nil,
		},
		{
			name:    "path traversal stripped to base name",
			content: "![](/uploads/../../etc/passwd)",
			want:    []string{"passwd"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mediaRefs(tt.image, tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("mediaRefs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveUploadedMediaBestEffort(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "there.jpg")

	// one existing, one missing: neither should panic or error out
	removeUploadedMedia(dir, "/uploads/there.jpg", "![](/uploads/missing.png)")
	assertGone(t, dir, "there.jpg")
}
