package media

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/validation"
)

type call struct {
	name string
	args []string
}

type recorder struct {
	calls []call
	err   error
}

func (r *recorder) run(name string, args ...string) error {
	r.calls = append(r.calls, call{name: name, args: args})
	return r.err
}

func lookupFirst(commands ...string) string {
	if len(commands) == 0 {
		return ""
	}
	return commands[0]
}

func lookupNone(...string) string { return "" }

func testLauncher(t *testing.T, opener string, lookup func(...string) string) (*Launcher, *recorder) {
	t.Helper()
	cfg := config.TestConfig()
	cfg.Media.DefaultOpener = opener
	cfg.Media.Darwin.Image = []string{"viewer"}
	cfg.Media.Linux.Image = []string{"viewer"}
	cfg.Media.Windows.Image = []string{"viewer"}

	rec := &recorder{}
	return newLauncher(cfg, lookup, rec.run), rec
}

func TestDetectType(t *testing.T) {
	d, err := NewTypeDetector()
	require.NoError(t, err)

	tests := []struct {
		name     string
		url      string
		expected Type
	}{
		{name: "JPEG image", url: "https://img.example.org/photo.jpg", expected: TypeImage},
		{name: "uppercase", url: "https://img.example.org/PHOTO.JPEG", expected: TypeImage},
		{name: "PNG with query", url: "https://img.example.org/a.png?w=800", expected: TypeImage},
		{name: "WebP with fragment", url: "https://img.example.org/a.webp#x", expected: TypeImage},
		{name: "image path pattern", url: "https://cdn.news.example.org/images/123", expected: TypeImage},
		{name: "format param", url: "https://cdn.news.example.org/x?format=webp", expected: TypeImage},
		{name: "HTML page", url: "https://news.example.org/story.html", expected: TypeUnknown},
		{name: "no extension", url: "https://news.example.org/story", expected: TypeUnknown},
		{name: "dot in host only", url: "https://news.example.org", expected: TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.DetectType(tt.url))
		})
	}
}

func TestGetDefaultOpener(t *testing.T) {
	d, err := NewTypeDetector()
	require.NoError(t, err)

	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}
	want, ok := expected[runtime.GOOS]
	if !ok {
		want = "open"
	}
	assert.Equal(t, want, d.GetDefaultOpener())

	empty, err := newTypeDetector([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, "open", empty.GetDefaultOpener())

	_, err = newTypeDetector([]byte("[image\nbroken"))
	assert.Error(t, err)
}

func TestFindCommand(t *testing.T) {
	assert.Equal(t, "", findCommand())
	assert.Equal(t, "", findCommand("nonexistent1", "nonexistent2"))
	if runtime.GOOS != "windows" {
		assert.Equal(t, "sh", findCommand("nonexistent", "sh", "alsononexistent"))
	}
}

func TestOpenLink(t *testing.T) {
	l, rec := testLauncher(t, "xdg-open", lookupFirst)

	require.NoError(t, l.OpenLink("https://news.example.org/a"))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "xdg-open", rec.calls[0].name)
	assert.Equal(t, []string{"https://news.example.org/a"}, rec.calls[0].args)
}

func TestOpenImage(t *testing.T) {
	l, rec := testLauncher(t, "xdg-open", lookupFirst)

	require.NoError(t, l.OpenImage("https://img.example.org/a.jpg"))
	require.NoError(t, l.OpenImage("https://img.example.org/resource"))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, "viewer", rec.calls[0].name, "image URLs go to the image viewer")
	assert.Equal(t, "xdg-open", rec.calls[1].name, "unknown URLs go to the default opener")
}

func TestOpenImageFallsBackWithoutViewer(t *testing.T) {
	l, rec := testLauncher(t, "open", lookupNone)

	require.NoError(t, l.OpenImage("https://img.example.org/a.png"))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "open", rec.calls[0].name)
}

func TestOpenRejectsInvalidURLs(t *testing.T) {
	l, rec := testLauncher(t, "open", lookupFirst)

	err := l.OpenLink("")
	assert.True(t, errors.Is(err, validation.ErrEmptyURL))

	err = l.OpenImage("file:///etc/passwd")
	assert.True(t, errors.Is(err, validation.ErrUnsupportedURL))

	err = l.OpenLink("http://127.0.0.1/admin")
	assert.True(t, errors.Is(err, validation.ErrDisallowedHost))

	assert.Empty(t, rec.calls, "nothing is launched for rejected URLs")
}

func TestWindowsStartBuiltin(t *testing.T) {
	l, rec := testLauncher(t, "start", lookupNone)

	require.NoError(t, l.OpenLink("https://news.example.org/a"))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "cmd", rec.calls[0].name)
	assert.Equal(t, []string{"/c", "start", "", "https://news.example.org/a"}, rec.calls[0].args)
}

func TestLaunchError(t *testing.T) {
	l, rec := testLauncher(t, "open", lookupFirst)
	rec.err = errors.New("exec: not found")

	err := l.OpenLink("https://news.example.org/a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start open")
}

func TestNewLauncherDefaults(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Media.DefaultOpener = ""

	l := newLauncher(cfg, lookupNone, (&recorder{}).run)
	assert.NotEmpty(t, l.defaultOpener)
	assert.Equal(t, l.defaultOpener, l.imageViewer)
}
