package jobsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lettercraft/internal/config"
	"lettercraft/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `<!DOCTYPE html>
<html><head><title>Offre</title><style>body{color:red}</style></head>
<body>
  <header>Acme Careers</header>
  <nav><a href="/">Accueil</a></nav>
  <main>
    <h1>Développeur   Go</h1>
    <p>Vous   rejoindrez l'équipe paiement.</p>
    <script>track()</script>
  </main>
  <footer>© Acme</footer>
</body></html>`

func TestExtractMainText(t *testing.T) {
	text, err := ExtractMainText(postingHTML)
	require.NoError(t, err)
	assert.Equal(t, "Développeur Go\nVous rejoindrez l'équipe paiement.", text)
}

func TestExtractMainTextSelectors(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"article", `<body><div>menu</div><article>Poste A</article></body>`, "Poste A"},
		{"content id", `<body><p>intro</p><div id="content">Poste B</div></body>`, "Poste B"},
		{"content class", `<body><p>intro</p><div class="content">Poste C</div></body>`, "Poste C"},
		{"body fallback", `<body><header>x</header><div>Poste D</div></body>`, "Poste D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestURLFetchHTML(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(postingHTML))
	}))
	t.Cleanup(srv.Close)

	text, err := URL{Address: srv.URL, Client: srv.Client(), UserAgent: "test-agent"}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "Développeur Go")
	assert.NotContains(t, text, "Acme Careers")
	assert.Equal(t, "test-agent", userAgent)
}

func TestURLFetchPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  Poste   Go \n\n  CDI  "))
	}))
	t.Cleanup(srv.Close)

	text, err := URL{Address: srv.URL, Client: srv.Client()}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Poste Go\nCDI", text)
}

func TestURLFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	_, err := URL{Address: srv.URL, Client: srv.Client()}.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFetchFailed))
	assert.Contains(t, err.Error(), "404")
}

func TestURLFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	_, err := URL{Address: srv.URL, Client: srv.Client(), Timeout: 20 * time.Millisecond}.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNetworkTimeout))
}

func TestURLFetchBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("a", 100)))
	}))
	t.Cleanup(srv.Close)

	text, err := URL{Address: srv.URL, Client: srv.Client(), MaxBodySize: 10}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, text, 10)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n Offre depuis un fichier \n"), 0o600))

	r := NewResolver(config.JobSourceConfig{UserAgent: "ua"}, nil)

	src := r.Resolve("https://example.com/jobs/42")
	u, ok := src.(URL)
	require.True(t, ok)
	assert.Equal(t, "ua", u.UserAgent)

	src = r.Resolve(path)
	_, ok = src.(File)
	require.True(t, ok)
	text, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Offre depuis un fichier", text)

	src = r.Resolve("  Nous recrutons un développeur.  ")
	assert.Equal(t, Text("Nous recrutons un développeur."), src)

	src = r.Resolve(filepath.Join(dir, "missing.txt"))
	_, ok = src.(Text)
	assert.True(t, ok, "a path that does not exist is literal text")
}

func TestFileFetchMissing(t *testing.T) {
	_, err := File{Path: filepath.Join(t.TempDir(), "nope.txt")}.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("http://example.com"))
	assert.True(t, IsURL("https://example.com/a?b=c"))
	assert.False(t, IsURL("ftp://example.com"))
	assert.False(t, IsURL("example.com"))
	assert.False(t, IsURL("/tmp/job.txt"))
	assert.False(t, IsURL("Nous recrutons"))
}

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"8.8.8.8", true},
		{"2606:4700:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.10", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"0.0.0.0", false},
		{"::", false},
		{"100.64.0.1", false},
		{"224.0.0.1", false},
		{"::ffff:127.0.0.1", false},
		{"fd00::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, isPublicAddr(netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestPublicOnlyResolverRejectsLoopback(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		_, _ = w.Write([]byte("internal secrets"))
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(config.JobSourceConfig{}, nil, PublicOnly())
	_, err := r.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlockedAddress)
	assert.True(t, errors.IsValidation(err))
	assert.True(t, errors.HasCode(err, errors.ErrCodeFetchFailed))
	assert.False(t, hit, "no connection reaches the loopback server")
}

func TestGuardedControl(t *testing.T) {
	assert.NoError(t, guardedControl("tcp4", "93.184.216.34:443", nil))
	assert.ErrorIs(t, guardedControl("tcp4", "127.0.0.1:8080", nil), ErrBlockedAddress)
	assert.ErrorIs(t, guardedControl("tcp6", "[::1]:80", nil), ErrBlockedAddress)
	assert.ErrorIs(t, guardedControl("tcp", "not-an-address", nil), ErrBlockedAddress)
}

func TestPublicOnlyResolverIgnoresFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("secret"), 0o600))

	src := NewResolver(config.JobSourceConfig{}, nil, PublicOnly()).Resolve(path)
	assert.Equal(t, Text(path), src)
}
