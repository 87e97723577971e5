package extract

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/unnonueve/deathrace/record"
)

func newExtractor() *Extractor {
	return New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const profileFixture = `<html><body>
<span class="avatar -a110 -large"><img src="https://img.example/avatar.jpg" width="110"></span>
<div class="profile-stats js-profile-stats">
  <h4 class="profile-statistic statistic"><span class="value">1,234</span> <span class="definition">Films</span></h4>
  <h4 class="profile-statistic statistic"><span class="value">56</span> <span class="definition">This year</span></h4>
  <h4 class="profile-statistic statistic"><span class="value">12</span> <span class="definition">Lists</span></h4>
</div>
<section id="favourites">
  <ul class="poster-list">
    <li class="poster-container"><img alt="Persona" src="p.jpg"></li>
    <li class="poster-container"><img alt="Stalker" src="s.jpg"></li>
  </ul>
</section>
</body></html>`

func TestFilmCount_ProfileStats(t *testing.T) {
	// WHAT: "Films: 1,234" and "This year: 56" parse into the counts,
	// thousands separators stripped, other statistics ignored.
	// WHY: These two label/value pairs are the only aggregate source.
	fc := newExtractor().FilmCount(profileFixture)
	if fc.Total != 1234 {
		t.Errorf("total: got %d, want 1234", fc.Total)
	}
	if fc.ThisYear != 56 {
		t.Errorf("this year: got %d, want 56", fc.ThisYear)
	}
}

func TestFilmCount_UnparsableValue(t *testing.T) {
	// WHAT: A value that fails integer parsing keeps the count at zero
	// while the other statistic still parses.
	// WHY: A parse-field error is recoverable, never fatal to the pass.
	raw := `<div class="profile-stats">
	<h4 class="profile-statistic"><span class="value">lots</span><span class="definition">Films</span></h4>
	<h4 class="profile-statistic"><span class="value">56</span><span class="definition">This year</span></h4>
	</div>`
	fc := newExtractor().FilmCount(raw)
	if fc.Total != 0 {
		t.Errorf("total: got %d, want 0", fc.Total)
	}
	if fc.ThisYear != 56 {
		t.Errorf("this year: got %d, want 56", fc.ThisYear)
	}
}

func TestFilmCount_NoStatsBlock(t *testing.T) {
	// WHAT: A document without a statistics block yields zero counts.
	fc := newExtractor().FilmCount("<html><body><p>nothing here</p></body></html>")
	if fc.Total != 0 || fc.ThisYear != 0 {
		t.Errorf("got %+v, want zeros", fc)
	}
}

// diaryRow builds one fixture row. ratingAttr and rowClass vary per test.
func diaryRow(href, title, year, rowClass, ratingValue string, liked, rewatchOff bool) string {
	likeCell := `<td class="td-like"></td>`
	if liked {
		likeCell = `<td class="td-like"><span class="icon-liked"></span></td>`
	}
	rewatchCell := `<td class="td-rewatch"></td>`
	if rewatchOff {
		rewatchCell = `<td class="td-rewatch icon-status-off"></td>`
	}
	rating := ""
	if ratingValue != "" {
		rating = fmt.Sprintf(`<td class="td-rating"><input class="rateit-field" value=%q></td>`, ratingValue)
	}
	return fmt.Sprintf(`<tr class="diary-entry-row %s">
		<td class="td-day"><a href=%q>day</a></td>
		<td class="td-film-details"><h3 class="headline-3"><a>%s</a></h3></td>
		<td class="td-released center"><span>%s</span></td>
		%s%s%s
	</tr>`, rowClass, href, title, year, rating, likeCell, rewatchCell)
}

func diaryPage(rows string, pagination string) string {
	return fmt.Sprintf(`<html><body><table id="diary-table"><tbody>%s</tbody></table>%s</body></html>`, rows, pagination)
}

func TestDiaryEntries_FullRow(t *testing.T) {
	// WHAT: A complete row maps date (from href path segments), title
	// (whitespace collapsed), release year, rating, liked, and rewatch.
	raw := diaryPage(diaryRow("/alice/films/diary/for/2026/02/06/",
		"The  Wrong\n\t Trousers", "1993", "", "9", true, false), "")
	entries := newExtractor().DiaryEntries([]string{raw})
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	e := entries[0]
	if !e.Date.Equal(record.Day(2026, time.February, 6)) {
		t.Errorf("date: got %v", e.Date)
	}
	if e.Title != "The Wrong Trousers" {
		t.Errorf("title: got %q", e.Title)
	}
	if e.ReleaseYear != "1993" {
		t.Errorf("release year: got %q", e.ReleaseYear)
	}
	if e.Rating != 9 {
		t.Errorf("rating: got %d, want 9", e.Rating)
	}
	if !e.Liked {
		t.Error("liked: want true")
	}
	if !e.Rewatch {
		t.Error("rewatch: want true (no off marker)")
	}
}

func TestDiaryEntries_NotRatedMarker(t *testing.T) {
	// WHAT: The row-level not-rated marker wins over any numeric field
	// present in the row.
	// WHY: The markup keeps a stale widget value in unrated rows.
	raw := diaryPage(diaryRow("/a/films/diary/for/2026/01/02/",
		"Persona", "1966", "not-rated", "7", false, true), "")
	entries := newExtractor().DiaryEntries([]string{raw})
	if len(entries) != 1 {
		t.Fatalf("entries: got %d", len(entries))
	}
	if entries[0].Rated() {
		t.Errorf("rating: got %d, want absent", entries[0].Rating)
	}
	if entries[0].Rewatch {
		t.Error("rewatch: off marker should mean false")
	}
}

func TestDiaryEntries_RatingNormalization(t *testing.T) {
	// WHAT: Raw 0 and unparsable values normalise to absent; 10 stays.
	// WHY: The scale is 1-10; zero is the widget's "no rating" value.
	for _, c := range []struct {
		raw  string
		want int
	}{
		{"0", 0},
		{"banana", 0},
		{"10", 10},
		{"11", 0},
	} {
		page := diaryPage(diaryRow("/a/films/diary/for/2026/01/02/", "X", "2000", "", c.raw, false, true), "")
		entries := newExtractor().DiaryEntries([]string{page})
		if len(entries) != 1 {
			t.Fatalf("value %q: got %d entries", c.raw, len(entries))
		}
		if entries[0].Rating != c.want {
			t.Errorf("value %q: got %d, want %d", c.raw, entries[0].Rating, c.want)
		}
	}
}

func TestDiaryEntries_DatelessRowDropped(t *testing.T) {
	// WHAT: A row whose day cell has no resolvable date link is dropped
	// silently; surrounding rows survive.
	rows := diaryRow("/a/films/diary/for/2026/01/02/", "Keep Me", "2000", "", "", false, true) +
		`<tr class="diary-entry-row"><td class="td-day"></td><td><h3 class="headline-3"><a>No Date</a></h3></td></tr>` +
		diaryRow("/a/films/diary/for/2026/01/03/", "Keep Me Too", "2001", "", "", false, true)
	entries := newExtractor().DiaryEntries([]string{diaryPage(rows, "")})
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].Title != "Keep Me" || entries[1].Title != "Keep Me Too" {
		t.Errorf("unexpected titles: %q, %q", entries[0].Title, entries[1].Title)
	}
}

func TestDiaryEntries_NonDateHrefDropped(t *testing.T) {
	// WHAT: Path segments that are not a real calendar date drop the row.
	for _, href := range []string{
		"/a/films/diary/for/2026/13/02/", // month 13
		"/a/films/diary/for/abcd/02/03/", // non-numeric year
		"/a/",                            // too few segments... still 1 segment
	} {
		page := diaryPage(diaryRow(href, "X", "2000", "", "", false, true), "")
		if entries := newExtractor().DiaryEntries([]string{page}); len(entries) != 0 {
			t.Errorf("href %q: got %d entries, want 0", href, len(entries))
		}
	}
}

func TestDiaryEntries_MissingFragmentsDefault(t *testing.T) {
	// WHAT: Missing title and release-year cells substitute "Unknown"
	// instead of dropping the row.
	raw := diaryPage(`<tr class="diary-entry-row">
		<td class="td-day"><a href="/a/films/diary/for/2026/03/04/">4</a></td>
	</tr>`, "")
	entries := newExtractor().DiaryEntries([]string{raw})
	if len(entries) != 1 {
		t.Fatalf("entries: got %d", len(entries))
	}
	if entries[0].Title != "Unknown" {
		t.Errorf("title: got %q, want Unknown", entries[0].Title)
	}
	if entries[0].ReleaseYear != "Unknown" {
		t.Errorf("release year: got %q, want Unknown", entries[0].ReleaseYear)
	}
	if entries[0].Rewatch {
		t.Error("rewatch: absent cell should mean false")
	}
}

func TestProfile_Metadata(t *testing.T) {
	// WHAT: Avatar src and favourite film titles extract in source order.
	p := newExtractor().Profile(profileFixture)
	if p.AvatarURL != "https://img.example/avatar.jpg" {
		t.Errorf("avatar: got %q", p.AvatarURL)
	}
	want := []string{"Persona", "Stalker"}
	if len(p.FavouriteFilms) != len(want) {
		t.Fatalf("favourites: got %v", p.FavouriteFilms)
	}
	for i := range want {
		if p.FavouriteFilms[i] != want[i] {
			t.Errorf("favourite %d: got %q, want %q", i, p.FavouriteFilms[i], want[i])
		}
	}
}

func TestProfile_Empty(t *testing.T) {
	// WHAT: Missing avatar and favourites yield empty values, not errors.
	p := newExtractor().Profile("<html><body></body></html>")
	if p.AvatarURL != "" || len(p.FavouriteFilms) != 0 {
		t.Errorf("got %+v, want empty", p)
	}
}

func TestHasNextPage(t *testing.T) {
	// WHAT: All pagination termination conditions read as "no next
	// page": no block, no next link, and a disabled next link.
	ex := newExtractor()
	cases := []struct {
		name       string
		pagination string
		want       bool
	}{
		{"no block", "", false},
		{"no next link", `<div class="pagination"><div class="paginate-nextprev"><a class="previous" href="#">Newer</a></div></div>`, false},
		{"disabled next", `<div class="pagination"><div class="paginate-nextprev paginate-disabled"><a class="next" href="#">Older</a></div></div>`, false},
		{"live next", `<div class="pagination"><div class="paginate-nextprev"><a class="next" href="/page/2/">Older</a></div></div>`, true},
	}
	for _, c := range cases {
		page := diaryPage("", c.pagination)
		if got := ex.HasNextPage(page); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDiaryEntries_SourceOrderAcrossPages(t *testing.T) {
	// WHAT: Entries keep source order across concatenated pages.
	// WHY: The outbound contract is newest first as the site renders it.
	p1 := diaryPage(diaryRow("/a/films/diary/for/2026/05/10/", "Newest", "2020", "", "", false, true), "")
	p2 := diaryPage(diaryRow("/a/films/diary/for/2026/04/01/", "Older", "2019", "", "", false, true), "")
	entries := newExtractor().DiaryEntries([]string{p1, p2})
	if len(entries) != 2 || entries[0].Title != "Newest" || entries[1].Title != "Older" {
		t.Errorf("order: got %+v", entries)
	}
}
