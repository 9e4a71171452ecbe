package catalog

import (
	"sort"
	"strings"
)

// Metadata holds the descriptive fields fetched from the rating source and
// the film catalog.
type Metadata struct {
	Rating          float64  `json:"rating,omitempty"`
	ViewerCount     int64    `json:"viewer_count,omitempty"`
	Genres          []string `json:"genres"`
	Country         []string `json:"country"`
	PrimaryLanguage []string `json:"primary_language"`
	SpokenLanguages []string `json:"spoken_languages"`
	RuntimeMinutes  int      `json:"runtime_minutes,omitempty"`
	TitleOriginal   string   `json:"title_original,omitempty"`
	TitleEN         string   `json:"title_en,omitempty"`
	TitleLocalized  string   `json:"title_localized,omitempty"`
}

// IsZero reports whether no metadata has been attached yet.
func (m Metadata) IsZero() bool {
	return m.Rating == 0 && m.ViewerCount == 0 && len(m.Genres) == 0 &&
		len(m.Country) == 0 && len(m.PrimaryLanguage) == 0 &&
		len(m.SpokenLanguages) == 0 && m.RuntimeMinutes == 0 &&
		m.TitleOriginal == "" && m.TitleEN == "" && m.TitleLocalized == ""
}

// Film is the canonical entity: one film with every known screening session
// across all theaters, plus external identity references and metadata.
type Film struct {
	Title    string    `json:"title"`
	Director string    `json:"director,omitempty"`
	Year     int       `json:"year,omitempty"`
	Sessions []Session `json:"dates"`

	// IdentityURL is the rating-source film page; once set it is never
	// silently replaced (a differing incoming reference is a logged
	// conflict, not an update).
	IdentityURL      string `json:"identity_url,omitempty"`
	IdentityShortURL string `json:"identity_short_url,omitempty"`
	CatalogURL       string `json:"catalog_url,omitempty"`

	Metadata

	// Authoritative marks a manual correction record. During merge its
	// non-empty fields overwrite existing values instead of only filling
	// gaps, including the identity reference.
	Authoritative bool `json:"-"`
}

// Key returns the merge identity key: the external identity reference when
// present, otherwise the normalized (title, year) tuple computed by keyFunc.
func (f *Film) Key(keyFunc func(title string, year int) string) string {
	if url := strings.TrimSpace(f.IdentityURL); url != "" {
		return url
	}
	return keyFunc(f.Title, f.Year)
}

// SessionIndex maps session dedup keys to positions in f.Sessions.
func (f *Film) SessionIndex() map[string]int {
	idx := make(map[string]int, len(f.Sessions))
	for i, s := range f.Sessions {
		idx[s.Key()] = i
	}
	return idx
}

// Clone returns a deep copy of the film.
func (f *Film) Clone() Film {
	cp := *f
	cp.Sessions = append([]Session(nil), f.Sessions...)
	cp.Genres = append([]string(nil), f.Genres...)
	cp.Country = append([]string(nil), f.Country...)
	cp.PrimaryLanguage = append([]string(nil), f.PrimaryLanguage...)
	cp.SpokenLanguages = append([]string(nil), f.SpokenLanguages...)
	return cp
}

// Dataset is the full canonical dataset, read and written as a whole.
type Dataset struct {
	Films []Film `json:"films"`
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	films := make([]Film, 0, len(d.Films))
	for i := range d.Films {
		films = append(films, d.Films[i].Clone())
	}
	return Dataset{Films: films}
}

// SessionCount returns the total number of sessions across all films.
func (d Dataset) SessionCount() int {
	total := 0
	for i := range d.Films {
		total += len(d.Films[i].Sessions)
	}
	return total
}

// Sort orders films by title, then year, for deterministic output.
func (d *Dataset) Sort() {
	sort.Slice(d.Films, func(i, j int) bool {
		if d.Films[i].Title != d.Films[j].Title {
			return d.Films[i].Title < d.Films[j].Title
		}
		return d.Films[i].Year < d.Films[j].Year
	})
}
