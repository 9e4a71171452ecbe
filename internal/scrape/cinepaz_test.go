package scrape_test

import (
	"testing"
	"time"

	"cartelera/internal/scrape"
)

const cinePazVoseHTML = `
<html><body>
<div class="cartel"><a href="/es/detalles/456_la-quimera">La quimera</a></div>
<div class="cartel"><a href="/es/otra-pagina">Ciclos</a></div>
</body></html>`

const cinePazCarteleraHTML = `
<html><body>
<div class="contenedor_horarios">
  <div class="rotulo_dia">Hoy</div>
  <div class="contenedor_cines">
    <div class="horarios">
      <div class="peli">
        <p class="text-header-span"><a href="/es/detalles/123_anatomia-de-una-caida">Anatomía de una caída - VOSE</a></p>
        <p class="gibsonL">de Justine Triet</p>
        <div class="etiqueta-vose">VOSE</div>
      </div>
      <div class="horas">
        <a class="metrica" href="/es/comprar/1">VOSE 17:00</a>
        <a class="metrica" href="/es/comprar/2">20:15</a>
        <a class="metrica" href="/es/comprar/3">Últimas entradas</a>
      </div>
    </div>
  </div>
  <div class="rotulo_dia">Lunes 02/03</div>
  <div class="contenedor_cines">
    <div class="horarios">
      <div class="peli">
        <p class="text-header-span"><a href="/es/detalles/456_la-quimera">La quimera</a></p>
        <p class="gibsonL">de Alice Rohrwacher</p>
      </div>
      <div class="horas"><a class="metrica" href="/es/comprar/4">18:00</a></div>
    </div>
  </div>
  <div class="rotulo_dia">Lunes 09/03</div>
  <div class="contenedor_cines">
    <div class="horarios">
      <div class="peli">
        <p class="text-header-span"><a href="/es/detalles/789_fuera-de-rango">Fuera de rango</a></p>
      </div>
      <div class="horas"><a class="metrica" href="/es/comprar/5">22:00</a></div>
    </div>
  </div>
</div>
</body></html>`

func TestCinePazParseVoseFilmIDs(t *testing.T) {
	adapter := scrape.NewCinePaz(nil)
	ids := adapter.ParseVoseFilmIDs(parseDoc(t, cinePazVoseHTML))
	if len(ids) != 1 {
		t.Fatalf("expected 1 id, got %v", ids)
	}
	if _, ok := ids["456"]; !ok {
		t.Fatalf("missing film id in %v", ids)
	}
}

func TestCinePazParseCartelera(t *testing.T) {
	adapter := scrape.NewCinePaz(nil)
	voseIDs := map[string]struct{}{"456": {}}
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 6)

	records := adapter.ParseCartelera(parseDoc(t, cinePazCarteleraHTML), voseIDs, from, to)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Title != "Anatomía de una caída" {
		t.Errorf("version suffix not stripped from title %q", first.Title)
	}
	if first.Director != "Justine Triet" {
		t.Errorf("unexpected director %q", first.Director)
	}
	if first.VersionText != "" {
		t.Errorf("tagged screening should carry no version hint, got %q", first.VersionText)
	}
	if first.ShowTimeText != "2026-03-01 17:00" {
		t.Errorf("unexpected showtime %q", first.ShowTimeText)
	}
	if first.FilmURL != "https://www.cinepazmadrid.es/es/detalles/123_anatomia-de-una-caida" {
		t.Errorf("unexpected film url %q", first.FilmURL)
	}
	if first.TicketsURL != "https://www.cinepazmadrid.es/es/comprar/1" {
		t.Errorf("unexpected tickets url %q", first.TicketsURL)
	}

	if records[1].ShowTimeText != "2026-03-01 20:15" {
		t.Errorf("unexpected showtime %q", records[1].ShowTimeText)
	}

	dubbed := records[2]
	if dubbed.Title != "La quimera" || dubbed.VersionText != "dubbed" {
		t.Errorf("non-subtitled screening of a VOSE film not tagged: %+v", dubbed)
	}
	if dubbed.ShowTimeText != "2026-03-02 18:00" {
		t.Errorf("unexpected showtime %q", dubbed.ShowTimeText)
	}
}

func TestCinePazParseCarteleraYearRollover(t *testing.T) {
	const html = `
<div class="contenedor_horarios">
  <div class="rotulo_dia">Viernes 02/01</div>
  <div class="contenedor_cines">
    <div class="horarios">
      <div class="peli">
        <p class="text-header-span"><a href="/es/detalles/123_estreno">Estreno</a></p>
      </div>
      <div class="horas"><a class="metrica" href="/es/comprar/1">19:00</a></div>
    </div>
  </div>
</div>`

	adapter := scrape.NewCinePaz(nil)
	from := time.Date(2026, time.December, 30, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 6)

	records := adapter.ParseCartelera(parseDoc(t, html), nil, from, to)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %+v", records)
	}
	if records[0].ShowTimeText != "2027-01-02 19:00" {
		t.Fatalf("label before the reference month should roll over, got %q", records[0].ShowTimeText)
	}
}
