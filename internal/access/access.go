// Package access implements the shared-code gate in front of the report.
// It keeps casual visitors out; it is not authentication.
package access

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	CookieName  = "spark-report-access"
	cookieValue = "1"
	cookieTTL   = 30 * 24 * time.Hour

	PagePath = "/access"
	APIPath  = "/api/access"
)

// publicPrefixes are reachable without the cookie, as are static assets.
var publicPrefixes = []string{PagePath, APIPath, "/healthz", "/readyz", "/metrics", "/favicon"}

type Gate struct {
	code   string
	secure bool
}

func NewGate(code string, secure bool) *Gate {
	return &Gate{code: strings.TrimSpace(code), secure: secure}
}

func Unlocked(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	return err == nil && c.Value == cookieValue
}

func isPublic(path string) bool {
	if strings.Contains(path, ".") {
		return true
	}
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Middleware sends locked requests for anything but the public paths to the
// access page.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r.URL.Path) || Unlocked(r) {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, PagePath, http.StatusTemporaryRedirect)
	})
}

func (g *Gate) valid(code string) bool {
	code = strings.TrimSpace(code)
	if g.code == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(g.code)) == 1
}

func (g *Gate) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type status struct {
	Unlocked bool `json:"unlocked"`
}

func reply(w http.ResponseWriter, code int, unlocked bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status{Unlocked: unlocked})
}

// Status reports whether the caller already holds the cookie.
func (g *Gate) Status(w http.ResponseWriter, r *http.Request) {
	reply(w, http.StatusOK, Unlocked(r))
}

// Unlock accepts {"code": "..."} as JSON or a form field.
func (g *Gate) Unlock(w http.ResponseWriter, r *http.Request) {
	var code string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&body); err != nil {
			reply(w, http.StatusBadRequest, false)
			return
		}
		code = body.Code
	} else {
		code = r.FormValue("code")
	}

	if !g.valid(code) {
		reply(w, http.StatusUnauthorized, false)
		return
	}
	http.SetCookie(w, g.cookie(cookieValue, int(cookieTTL.Seconds())))
	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	reply(w, http.StatusOK, true)
}

func (g *Gate) Lock(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, g.cookie("", -1))
	reply(w, http.StatusOK, false)
}

const page = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Spark report</title></head>
<body>
<form method="post" action="` + APIPath + `">
<label>Access code <input name="code" type="password" autocomplete="off" autofocus></label>
<button type="submit">Open report</button>
</form>
</body>
</html>
`

func (g *Gate) Page(w http.ResponseWriter, r *http.Request) {
	if Unlocked(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}
