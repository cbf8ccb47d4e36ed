package assets

// Notes:
// - Each test builds its own asset directory in t.TempDir(): a post
//   stylesheet under styles/ and a page template under templates/, the
//   layout `mdpost page --assets` expects.
// - The unreadable-directory branch of NewFilesystemLoader depends on
//   permissions that root ignores; it is not exercised.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const (
	testPostCSS      = "article.post { max-width: 40rem; }"
	testPageTemplate = "<title>{{.Title}}</title><style>{{.CSS}}</style><main>{{.Body}}</main>"
)

// writeAssetDir lays out files (relative path -> content) under a fresh
// directory and returns its path.
func writeAssetDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir
}

// ---------------------------------------------------------------------------
// TestNewFilesystemLoader - Base path checks
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	assetDir := writeAssetDir(t, map[string]string{"styles/post.css": testPostCSS})

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"asset directory", assetDir, false},
		{"path with dot segments", filepath.Join(assetDir, "styles", ".."), false},
		{"empty path", "", true},
		{"missing directory", filepath.Join(assetDir, "missing"), true},
		{"regular file", filepath.Join(assetDir, "styles", "post.css"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, err := NewFilesystemLoader(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBasePath) {
					t.Fatalf("error = %v, want ErrInvalidBasePath", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !filepath.IsAbs(loader.basePath) {
				t.Errorf("basePath %q is not absolute", loader.basePath)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_Load - Styles and page templates
// ---------------------------------------------------------------------------

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	loader, err := NewFilesystemLoader(writeAssetDir(t, map[string]string{
		"styles/post.css":     testPostCSS,
		"styles/empty.css":    "",
		"templates/page.html": testPageTemplate,
		"templates/post.css":  "misplaced",
	}))
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	tests := []struct {
		name    string
		load    func(string) (string, error)
		asset   string
		want    string
		wantErr error
	}{
		{"post stylesheet", loader.LoadStyle, "post", testPostCSS, nil},
		{"page template", loader.LoadTemplate, "page", testPageTemplate, nil},
		{"empty stylesheet", loader.LoadStyle, "empty", "", nil},
		{"style missing", loader.LoadStyle, "night", "", ErrStyleNotFound},
		{"template missing", loader.LoadTemplate, "card", "", ErrTemplateNotFound},
		{"style looked up only under styles", loader.LoadTemplate, "post", "", ErrTemplateNotFound},
		{"template name with extension", loader.LoadTemplate, "page.html", "", ErrInvalidAssetName},
		{"style name with traversal", loader.LoadStyle, "../templates/page", "", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.load(tt.asset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilesystemLoader_NotFoundNamesAsset(t *testing.T) {
	t.Parallel()

	loader, err := NewFilesystemLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	_, err = loader.LoadStyle("solarized")
	if err == nil || !strings.Contains(err.Error(), `"solarized"`) {
		t.Errorf("error = %v, want it to name the style", err)
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_SymlinkEscape - Links out of the asset directory
// ---------------------------------------------------------------------------

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}

	outside := writeAssetDir(t, map[string]string{"secret.css": "body { display: none; }"})
	assetDir := writeAssetDir(t, map[string]string{"templates/page.html": testPageTemplate})
	if err := os.MkdirAll(filepath.Join(assetDir, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(assetDir, "styles", "leak.css")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(assetDir, "templates", "page.html"), filepath.Join(assetDir, "templates", "alias.html")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	loader, err := NewFilesystemLoader(assetDir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	if _, err := loader.LoadStyle("leak"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(leak) error = %v, want ErrPathTraversal", err)
	}

	got, err := loader.LoadTemplate("alias")
	if err != nil {
		t.Fatalf("LoadTemplate(alias) error = %v", err)
	}
	if got != testPageTemplate {
		t.Errorf("LoadTemplate(alias) = %q", got)
	}
}

func TestFilesystemLoader_SymlinkedBasePath(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}

	target := writeAssetDir(t, map[string]string{"styles/post.css": testPostCSS})
	link := filepath.Join(t.TempDir(), "assets")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	loader, err := NewFilesystemLoader(link)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if got, err := loader.LoadStyle("post"); err != nil || got != testPostCSS {
		t.Errorf("LoadStyle(post) = %q, %v", got, err)
	}
}
