// Package session holds per-visitor storefront state: the upstream auth
// token, selected currency/location identifiers, cart and favorites maps,
// and one-shot flash messages. Sessions are JSON blobs in Redis keyed by a
// signed cookie ID. Only stable identifiers are stored; full currency and
// province objects are re-resolved from the marketplace on each read.
package session

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
)

// CartEntry is one cart line as persisted in the session.
type CartEntry struct {
	ID       int      `json:"id"`
	Quantity Quantity `json:"quantity"`
}

// FavoriteEntry marks a product as favorited. Presence-only semantics.
type FavoriteEntry struct {
	ID int `json:"id"`
}

// Quantity decodes leniently: legacy sessions have been observed carrying
// non-numeric quantities, which coalesce to 1 instead of failing the load.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	var n int
	if err := json.Unmarshal(trimmed, &n); err == nil {
		*q = Quantity(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		*q = Quantity(int(f))
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if parsed, perr := strconv.Atoi(s); perr == nil {
			*q = Quantity(parsed)
			return nil
		}
	}

	*q = 1
	return nil
}

// Data is the serialized session payload.
type Data struct {
	Token          string                `json:"token,omitempty"`
	User           json.RawMessage       `json:"user,omitempty"`
	CurrencyISO    string                `json:"currency_iso,omitempty"`
	ProvinceID     int                   `json:"province_id,omitempty"`
	MunicipalityID int                   `json:"municipality_id,omitempty"`
	Cart           map[int]CartEntry     `json:"cart,omitempty"`
	Favorites      map[int]FavoriteEntry `json:"favorites,omitempty"`
	Flash          map[string]string     `json:"flash,omitempty"`
}

// Session is the mutable per-request view of a visitor's state. All
// mutators mark the session dirty so the middleware persists it after the
// handler runs. Concurrent requests for one visitor are last-write-wins.
type Session struct {
	ID string

	mu    sync.Mutex
	data  Data
	dirty bool
	isNew bool
}

func newSession(id string, data Data, isNew bool) *Session {
	return &Session{ID: id, data: data, isNew: isNew}
}

// New returns a fresh empty session.
func New(id string) *Session {
	return newSession(id, Data{}, true)
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Token
}

func (s *Session) SetAuth(token string, user json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = token
	s.data.User = user
	s.dirty = true
}

func (s *Session) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = ""
	s.data.User = nil
	s.dirty = true
}

func (s *Session) User() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.User
}

func (s *Session) SetUser(user json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.User = user
	s.dirty = true
}

func (s *Session) CurrencyISO() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CurrencyISO
}

func (s *Session) SetCurrencyISO(iso string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.CurrencyISO = iso
	s.dirty = true
}

func (s *Session) Location() (provinceID, municipalityID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ProvinceID, s.data.MunicipalityID
}

func (s *Session) SetLocation(provinceID, municipalityID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ProvinceID = provinceID
	s.data.MunicipalityID = municipalityID
	s.dirty = true
}

// CartEntries returns cart lines ordered by product ID.
func (s *Session) CartEntries() []CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]CartEntry, 0, len(s.data.Cart))
	for _, entry := range s.data.Cart {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// CartAdd inserts a new entry or increments an existing one.
func (s *Session) CartAdd(productID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Cart == nil {
		s.data.Cart = make(map[int]CartEntry)
	}
	entry, ok := s.data.Cart[productID]
	if ok {
		entry.Quantity += Quantity(quantity)
	} else {
		entry = CartEntry{ID: productID, Quantity: Quantity(quantity)}
	}
	s.data.Cart[productID] = entry
	s.dirty = true
}

// CartSetQuantity replaces the quantity of an existing entry; absent
// products are ignored.
func (s *Session) CartSetQuantity(productID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data.Cart[productID]
	if !ok {
		return
	}
	entry.Quantity = Quantity(quantity)
	s.data.Cart[productID] = entry
	s.dirty = true
}

func (s *Session) CartRemove(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Cart[productID]; !ok {
		return
	}
	delete(s.data.Cart, productID)
	s.dirty = true
}

func (s *Session) CartClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Cart = nil
	s.dirty = true
}

// FavoriteIDs returns favorited product IDs in ascending order.
func (s *Session) FavoriteIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.data.Favorites))
	for id := range s.data.Favorites {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Session) HasFavorite(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data.Favorites[productID]
	return ok
}

func (s *Session) FavoriteAdd(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Favorites == nil {
		s.data.Favorites = make(map[int]FavoriteEntry)
	}
	if _, ok := s.data.Favorites[productID]; ok {
		return
	}
	s.data.Favorites[productID] = FavoriteEntry{ID: productID}
	s.dirty = true
}

func (s *Session) FavoriteRemove(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Favorites[productID]; !ok {
		return
	}
	delete(s.data.Favorites, productID)
	s.dirty = true
}

func (s *Session) FavoritesClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Favorites = nil
	s.dirty = true
}

// Flash stores a one-shot message under key.
func (s *Session) Flash(key, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Flash == nil {
		s.data.Flash = make(map[string]string)
	}
	s.data.Flash[key] = message
	s.dirty = true
}

// PullFlash returns and removes the message stored under key.
func (s *Session) PullFlash(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.data.Flash[key]
	if !ok {
		return ""
	}
	delete(s.data.Flash, key)
	s.dirty = true
	return message
}

// IsDirty reports whether the session has unsaved mutations.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// IsNew reports whether this session was created during the current request.
func (s *Session) IsNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isNew
}

func (s *Session) marshal() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.data)
}
