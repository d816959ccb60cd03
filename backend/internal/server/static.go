package server

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

type asset struct {
	data        []byte
	contentType string
}

// staticHandler serves the frontend, minified once at startup.
type staticHandler struct {
	assets  map[string]asset
	modTime time.Time
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{KeepDocumentTags: true, KeepEndTags: true, KeepQuotes: true})
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile("[/+]json$"), json.Minify)
	return m
}

func newStaticHandler(fsys fs.FS) (*staticHandler, error) {
	h := &staticHandler{assets: make(map[string]asset), modTime: time.Now()}
	if fsys == nil {
		return h, nil
	}
	m := newMinifier()
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		ctype := mime.TypeByExtension(path.Ext(name))
		if ctype == "" {
			ctype = http.DetectContentType(data)
		}
		mediatype, _, _ := mime.ParseMediaType(ctype)
		if out, err := m.Bytes(mediatype, data); err == nil {
			data = out
		} else if !errors.Is(err, minify.ErrNotExist) {
			return fmt.Errorf("minify %s: %w", name, err)
		}
		h.assets["/"+name] = asset{data: data, contentType: ctype}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load frontend: %w", err)
	}
	return h, nil
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	clean := path.Clean("/" + r.URL.Path)
	name := clean
	if strings.HasSuffix(name, "/") {
		name += "index.html"
	}
	a, ok := h.assets[name]
	if !ok {
		a, ok = h.assets[name+"/index.html"]
	}
	if !ok && isPageRoute(clean) {
		name = "/index.html"
		a, ok = h.assets[name]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.contentType)
	http.ServeContent(w, r, name, h.modTime, bytes.NewReader(a.data))
}

// isPageRoute reports whether an unmatched path belongs to the bridge page's
// client-side router. Paths with an extension and API paths stay 404.
func isPageRoute(name string) bool {
	return path.Ext(name) == "" && name != "/api" && !strings.HasPrefix(name, "/api/")
}
