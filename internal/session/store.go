package session

import (
	"fmt"
	"net/http"
	"time"

	"minecraft-store/internal/config"
	"minecraft-store/internal/model"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
)

const (
	// BasketCookie holds the provider's basket ident.
	BasketCookie = "basketId"
	stateCookie  = "basket_state"
	contextKey   = "session"
)

// State is everything a visitor carries between requests.
type State struct {
	BasketIdent string       `json:"i,omitempty"`
	Username    string       `json:"u,omitempty"`
	Stage       Stage        `json:"s"`
	Mirror      model.Mirror `json:"m"`
}

// Transition moves the state along the stage machine.
func (st *State) Transition(e Event) error {
	next, err := st.Stage.Next(e)
	if err != nil {
		return err
	}
	st.Stage = next
	return nil
}

// Reset forgets the basket. The username survives so the visitor does
// not have to log in again for the next purchase.
func (st *State) Reset() {
	st.BasketIdent = ""
	st.Stage = StageNone
	st.Mirror = model.Mirror{}
}

type Store struct {
	codec  *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
}

// NewStore signs (and, with a block key, encrypts) the state cookie.
// Without a configured hash key a random one is generated, so states do
// not survive a restart.
func NewStore(cfg config.Session, secure bool) (*Store, error) {
	hashKey := []byte(cfg.HashKey)
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		if hashKey == nil {
			return nil, fmt.Errorf("generate session hash key")
		}
	}
	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey = []byte(cfg.BlockKey)
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.CookieMaxAge.Seconds()))

	return &Store{codec: codec, maxAge: cfg.CookieMaxAge, secure: secure}, nil
}

// Load reads the visitor's state. A missing or tampered state cookie
// yields a fresh state; the basketId cookie alone is enough to keep the
// basket.
func (s *Store) Load(c echo.Context) *State {
	st := &State{Stage: StageNone}

	if cookie, err := c.Cookie(stateCookie); err == nil {
		var decoded State
		if err := s.codec.Decode(stateCookie, cookie.Value, &decoded); err == nil {
			st = &decoded
		}
	}

	ident := ""
	if cookie, err := c.Cookie(BasketCookie); err == nil {
		ident = cookie.Value
	}

	switch {
	case ident == "":
		st.BasketIdent = ""
		st.Stage = StageNone
	case st.BasketIdent != ident:
		st.BasketIdent = ident
		st.Mirror = model.Mirror{}
		st.Stage = StageOpen
	case st.Stage.IsTerminal():
		st.Stage = StageOpen
	}
	return st
}

// Save writes both cookies. A state without a basket ident deletes the
// basketId cookie.
func (s *Store) Save(c echo.Context, st *State) error {
	encoded, err := s.encode(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	c.SetCookie(s.cookie(stateCookie, encoded))

	if st.BasketIdent == "" {
		c.SetCookie(s.expired(BasketCookie))
		return nil
	}
	c.SetCookie(s.cookie(BasketCookie, st.BasketIdent))
	return nil
}

// encode shrinks a state that does not fit in a cookie. Confirmed lines go
// first since the next refresh refetches them from the provider; pending
// deltas go only if that is still not enough.
func (s *Store) encode(st *State) (string, error) {
	encoded, err := s.codec.Encode(stateCookie, st)
	if err == nil {
		return encoded, nil
	}

	slim := *st
	slim.Mirror = model.Mirror{Pending: st.Mirror.Pending}
	if encoded, err := s.codec.Encode(stateCookie, &slim); err == nil {
		return encoded, nil
	}

	slim.Mirror = model.Mirror{}
	return s.codec.Encode(stateCookie, &slim)
}

// Clear removes both cookies.
func (s *Store) Clear(c echo.Context) {
	c.SetCookie(s.expired(BasketCookie))
	c.SetCookie(s.expired(stateCookie))
}

func (s *Store) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Store) expired(name string) *http.Cookie {
	c := s.cookie(name, "")
	c.MaxAge = -1
	return c
}

// WithState attaches st to the request context.
func WithState(c echo.Context, st *State) {
	c.Set(contextKey, st)
}

// FromContext returns the state attached by the session middleware, or a
// fresh one.
func FromContext(c echo.Context) *State {
	if st, ok := c.Get(contextKey).(*State); ok && st != nil {
		return st
	}
	return &State{Stage: StageNone}
}
