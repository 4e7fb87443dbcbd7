package crawler

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/BCJonkhout/nlp-project/internal/model"
)

func TestExtractHTML(t *testing.T) {
	t.Parallel()

	t.Run("title text and links", func(t *testing.T) {
		t.Parallel()

		body := `<html><head><title>  Sample Page  </title></head><body>
			<p>First   paragraph.</p>
			<p>Second
			paragraph.</p>
			<a href="/relative">rel</a>
			<a href="https://example.test/absolute#frag">abs</a>
			<a href="https://other.test/away">away</a>
		</body></html>`

		ex, err := Extract("https://example.test/page", "text/html; charset=utf-8", []byte(body))
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}

		if ex.Title != "Sample Page" {
			t.Errorf("Title = %q, want %q", ex.Title, "Sample Page")
		}
		if want := "First paragraph."; !strings.Contains(ex.Text, want) {
			t.Errorf("Text %q does not contain %q", ex.Text, want)
		}
		if strings.Contains(ex.Text, "  ") {
			t.Errorf("Text contains uncollapsed whitespace: %q", ex.Text)
		}

		wantLinks := []string{
			"https://example.test/relative",
			"https://example.test/absolute",
			"https://other.test/away",
		}
		if !reflect.DeepEqual(ex.Links, wantLinks) {
			t.Errorf("Links = %v, want %v", ex.Links, wantLinks)
		}
	})

	t.Run("skips non-content subtrees", func(t *testing.T) {
		t.Parallel()

		body := `<html><body>
			<header>site header <a href="/from-header">h</a></header>
			<nav>menu</nav>
			<aside>sidebar</aside>
			<script>var hidden = "code";</script>
			<style>.x { color: red }</style>
			<p>visible content</p>
			<footer>copyright</footer>
		</body></html>`

		ex, err := Extract("https://example.test/", "text/html", []byte(body))
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}

		if ex.Text != "visible content" {
			t.Errorf("Text = %q, want only the paragraph text", ex.Text)
		}
		if len(ex.Links) != 0 {
			t.Errorf("harvested links from skipped subtree: %v", ex.Links)
		}
	})

	t.Run("missing title uses sentinel", func(t *testing.T) {
		t.Parallel()

		ex, err := Extract("https://example.test/", "text/html", []byte("<p>no title here</p>"))
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if ex.Title != model.NoTitle {
			t.Errorf("Title = %q, want %q", ex.Title, model.NoTitle)
		}
	})

	t.Run("filters non-navigational hrefs", func(t *testing.T) {
		t.Parallel()

		body := `<html><body>
			<a href="javascript:void(0)">js</a>
			<a href="mailto:someone@example.test">mail</a>
			<a href="tel:+3112345678">tel</a>
			<a href="#">hash</a>
			<a href="">empty</a>
			<a href="/kept">kept</a>
		</body></html>`

		ex, err := Extract("https://example.test/", "text/html", []byte(body))
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		want := []string{"https://example.test/kept"}
		if !reflect.DeepEqual(ex.Links, want) {
			t.Errorf("Links = %v, want %v", ex.Links, want)
		}
	})

	t.Run("decodes declared non-utf8 charset", func(t *testing.T) {
		t.Parallel()

		// 0xE9 is é in ISO-8859-1 and invalid UTF-8 on its own.
		body := []byte("<html><body><p>caf\xe9</p></body></html>")

		ex, err := Extract("https://example.test/", "text/html; charset=iso-8859-1", body)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if ex.Text != "café" {
			t.Errorf("Text = %q, want %q", ex.Text, "café")
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		body := []byte(`<html><head><title>T</title></head><body><p>a b</p><a href="/x">x</a></body></html>`)

		first, err := Extract("https://example.test/", "text/html", body)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		second, err := Extract("https://example.test/", "text/html", body)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("repeated extraction differs: %+v vs %+v", first, second)
		}
	})
}

func TestExtractPDF(t *testing.T) {
	t.Parallel()

	t.Run("malformed pdf yields placeholder", func(t *testing.T) {
		t.Parallel()

		ex, err := Extract("https://example.test/doc.pdf", "application/pdf", []byte("%PDF-1.7 truncated garbage"))
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if ex.Text != PDFErrorPlaceholder {
			t.Errorf("Text = %q, want %q", ex.Text, PDFErrorPlaceholder)
		}
		if ex.Title != model.NoTitle {
			t.Errorf("Title = %q, want %q", ex.Title, model.NoTitle)
		}
		if len(ex.Links) != 0 {
			t.Errorf("PDF extraction produced links: %v", ex.Links)
		}
	})

	t.Run("empty body yields placeholder", func(t *testing.T) {
		t.Parallel()

		ex, err := Extract("https://example.test/doc.pdf", "application/pdf", nil)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if ex.Text != PDFErrorPlaceholder {
			t.Errorf("Text = %q, want %q", ex.Text, PDFErrorPlaceholder)
		}
	})
}

func TestExtractUnsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
	}{
		{name: "image", contentType: "image/png"},
		{name: "json", contentType: "application/json"},
		{name: "plain text", contentType: "text/plain"},
		{name: "empty", contentType: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract("https://example.test/x", tt.contentType, []byte("data"))
			if !errors.Is(err, ErrUnsupportedContent) {
				t.Errorf("Extract() error = %v, want ErrUnsupportedContent", err)
			}
		})
	}
}
