package media

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/model"
)

// Resolver maps stored image paths to URLs under BaseURL.
type Resolver struct {
	BaseURL string // e.g. "/media/" or "https://cdn.example.com/media/"
}

func NewResolver(baseURL string) Resolver {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return Resolver{BaseURL: baseURL}
}

// URL returns the public URL of img. Empty references stay empty and
// absolute URLs are returned unchanged.
func (r Resolver) URL(img model.Image) model.Image {
	s := string(img)
	if s == "" || strings.Contains(s, "://") {
		return img
	}
	if strings.HasPrefix(s, r.BaseURL) {
		return img
	}
	return model.Image(r.BaseURL + strings.TrimPrefix(s, "/"))
}

// ForRequest returns a resolver function producing absolute URLs for the
// host the request came in on.
func (r Resolver) ForRequest(c echo.Context) func(model.Image) model.Image {
	base := r.BaseURL
	if c != nil && strings.HasPrefix(base, "/") {
		base = c.Scheme() + "://" + c.Request().Host + base
	}
	abs := Resolver{BaseURL: base}
	return func(img model.Image) model.Image {
		s := string(img)
		if strings.HasPrefix(s, r.BaseURL) && r.BaseURL != base {
			s = strings.TrimPrefix(s, r.BaseURL)
		}
		return abs.URL(model.Image(s))
	}
}

// Stored strips a URL produced by this resolver back to the stored path,
// so clients may echo an image field back on update.
func (r Resolver) Stored(img model.Image) model.Image {
	s := string(img)
	if i := strings.Index(s, r.BaseURL); i >= 0 && (i == 0 || strings.Contains(s[:i], "://")) {
		return model.Image(s[i+len(r.BaseURL):])
	}
	return img
}
