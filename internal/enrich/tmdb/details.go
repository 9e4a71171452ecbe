package tmdb

// Info is the normalized metadata extracted from a details payload.
type Info struct {
	Genres          []string
	Country         []string
	PrimaryLanguage []string
	SpokenLanguages []string
	RuntimeMinutes  int
	TitleOriginal   string
	TitleEN         string
	TitleLocalized  string
}

// Info normalizes the details payload for the given media type.
// localizedLang is the ISO 639-1 code of the localized title to extract,
// preferring the localizedRegion variant when several translations exist.
func (d *Details) Info(mediaType, localizedLang, localizedRegion string) Info {
	info := Info{
		RuntimeMinutes: d.runtimeMinutes(mediaType),
		TitleOriginal:  d.originalTitle(mediaType),
	}

	for _, g := range d.Genres {
		if g.Name != "" {
			info.Genres = append(info.Genres, g.Name)
		}
	}

	for _, c := range d.ProductionCountries {
		if c.Name != "" {
			info.Country = append(info.Country, c.Name)
		}
	}
	if len(info.Country) == 0 && mediaType == "tv" {
		info.Country = append(info.Country, d.OriginCountry...)
	}

	for _, lang := range d.SpokenLanguages {
		name := lang.EnglishName
		if name == "" {
			name = lang.Name
		}
		if name == "" {
			continue
		}
		info.SpokenLanguages = append(info.SpokenLanguages, name)
		if lang.ISO6391 == d.OriginalLanguage {
			info.PrimaryLanguage = []string{name}
		}
	}
	if len(info.PrimaryLanguage) == 0 && d.OriginalLanguage != "" {
		info.PrimaryLanguage = []string{d.OriginalLanguage}
	}

	info.TitleEN, info.TitleLocalized = d.translatedTitles(localizedLang, localizedRegion)
	if info.TitleEN == "" {
		if d.OriginalLanguage == "en" {
			info.TitleEN = info.TitleOriginal
		} else if main := d.mainTitle(); main != "" && main != info.TitleOriginal {
			info.TitleEN = main
		}
	}
	return info
}

// runtimeMinutes returns the movie runtime, or for TV an estimate of the
// total watch time (episode count times typical episode runtime). When the
// episode count is missing the per-episode runtime is kept as-is.
func (d *Details) runtimeMinutes(mediaType string) int {
	if mediaType == "movie" {
		if d.Runtime > 0 {
			return d.Runtime
		}
		return 0
	}

	typical := 0
	valid := 0
	for _, v := range d.EpisodeRunTime {
		if v > 0 {
			typical += v
			valid++
		}
	}
	if valid > 0 {
		typical /= valid
	}
	if d.NumberOfEpisodes > 0 && typical > 0 {
		return d.NumberOfEpisodes * typical
	}
	for _, v := range d.EpisodeRunTime {
		if v > 0 {
			return v
		}
	}
	return 0
}

func (d *Details) originalTitle(mediaType string) string {
	if mediaType == "movie" {
		return d.OriginalTitle
	}
	return d.OriginalName
}

func (d *Details) mainTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// translatedTitles scans the appended translations for the English title and
// the localized title. A translation matching both language and region wins
// over one matching language alone.
func (d *Details) translatedTitles(localizedLang, localizedRegion string) (titleEN, titleLocalized string) {
	localizedExact := false
	for _, t := range d.Translations.Translations {
		title := t.Data.Title
		if title == "" {
			title = t.Data.Name
		}
		if title == "" {
			continue
		}
		switch t.ISO6391 {
		case "en":
			if titleEN == "" {
				titleEN = title
			}
		case localizedLang:
			if t.ISO31661 == localizedRegion {
				titleLocalized = title
				localizedExact = true
			} else if !localizedExact && titleLocalized == "" {
				titleLocalized = title
			}
		}
	}
	return titleEN, titleLocalized
}
