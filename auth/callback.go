package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var (
	ErrStateMismatch = errors.New("state parameter does not match the login request")
	ErrMissingCode   = errors.New("callback did not include an authorization code")
)

// Result is delivered once per callback request.
type Result struct {
	Token *oauth2.Token
	Err   error
}

type callbackHandler struct {
	p        *Provider
	state    string
	verifier string
	out      chan<- Result
}

// CallbackHandler serves the callback url. It checks the state, exchanges
// the code and sends the outcome on out. Sends never block, so out should be
// buffered. Requests for other paths, or without any of the code, state and
// error parameters, get a 404 and no Result.
func (p *Provider) CallbackHandler(state, verifier string, out chan<- Result) http.Handler {
	return &callbackHandler{p: p, state: state, verifier: verifier, out: out}
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.isCallback(r) {
		log.WithField("path", r.URL.Path).Debug("ignoring request to the callback server")
		http.NotFound(w, r)
		return
	}

	tok, err := h.handle(r)
	if err != nil {
		log.WithError(err).Debug("login callback failed")
		http.Error(w, fmt.Sprintf("Login failed: %s", err), http.StatusBadRequest)
	} else {
		fmt.Fprintln(w, "You are logged in. You can close this window.")
	}

	select {
	case h.out <- Result{Token: tok, Err: err}:
	default:
	}
}

func (h *callbackHandler) isCallback(r *http.Request) bool {
	if strings.TrimRight(r.URL.Path, "/") != strings.TrimRight(h.p.callback.Path, "/") {
		return false
	}

	q := r.URL.Query()
	return q.Has("code") || q.Has("state") || q.Has("error")
}

func (h *callbackHandler) handle(r *http.Request) (*oauth2.Token, error) {
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		return nil, AuthorizationError{
			Err:         e,
			Description: q.Get("error_description"),
			URI:         q.Get("error_uri"),
		}
	}

	if q.Get("state") != h.state {
		return nil, ErrStateMismatch
	}

	code := q.Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}

	return h.p.Exchange(r.Context(), code, h.verifier)
}
