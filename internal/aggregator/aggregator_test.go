package aggregator

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/dramahub/internal/catalog"
)

// fakeFetcher serves canned JSON documents keyed by endpoint. Unknown
// endpoints yield nil like a failed upstream call.
type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]any
	calls []string
	panic map[string]bool
}

func newFake(t *testing.T, docs map[string]string) *fakeFetcher {
	t.Helper()
	f := &fakeFetcher{docs: map[string]any{}, panic: map[string]bool{}}
	for ep, doc := range docs {
		dec := json.NewDecoder(strings.NewReader(doc))
		dec.UseNumber()
		var v any
		require.NoError(t, dec.Decode(&v), ep)
		f.docs[ep] = v
	}
	return f
}

func (f *fakeFetcher) Fetch(_ context.Context, endpoint string) any {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	doc := f.docs[endpoint]
	boom := f.panic[endpoint]
	f.mu.Unlock()
	if boom {
		panic("upstream exploded")
	}
	return doc
}

func (f *fakeFetcher) called(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == endpoint {
			n++
		}
	}
	return n
}

func ids(items []catalog.CatalogItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it.Platform) + ":" + it.ID
	}
	return out
}

func TestSection_InterleavesAndToleratesFailures(t *testing.T) {
	f := newFake(t, map[string]string{
		"dramabox/trending": `{"data":[
			{"bookId":"d1","bookName":"One"},
			{"bookId":"d2","bookName":"Two"},
			{"bookId":"d3","bookName":"Three"}
		]}`,
		"melolo/trending": `{"data":{"cell":{"cell_data":[
			{"books":[{"book_id":"m1","book_name":"Melolo One"}]},
			{"books":[{"book_id":"m2","book_name":"Melolo Two"}]}
		]}}}`,
		"reelshort/homepage": `{"results":[{"bookId":"r1","book_title":"Reel"}]}`,
		// netshort and flickreels fail
	})
	f.panic["flickreels/hotrank"] = true

	a := New(f, Options{})
	sec, ok := a.Section(context.Background(), SectionTrending)
	require.True(t, ok)
	require.Equal(t, "Trending Now", sec.Title)
	require.Equal(t, SectionTrending, sec.Path)
	require.Equal(t, []string{
		"dramabox:d1", "melolo:m1", "reelshort:r1",
		"dramabox:d2", "melolo:m2",
		"dramabox:d3",
	}, ids(sec.Items))
}

func TestSection_DedupDropsInvalidAndCaps(t *testing.T) {
	f := newFake(t, map[string]string{
		"dramabox/latest": `[
			{"bookId":"A1","bookName":"x"},
			{"bookId":"a1","bookName":"dup by case"},
			{"bookName":"no id"},
			{"bookId":"undefined","bookName":"sentinel id"},
			{"bookId":"a2","bookName":"y"},
			{"bookId":"a3","bookName":"z"}
		]`,
		"melolo/latest": `{"data":{"books":[{"book_id":"A1","book_name":"same id other platform"}]}}`,
	})

	a := New(f, Options{SectionLimit: 3})
	sec, ok := a.Section(context.Background(), SectionLatest)
	require.True(t, ok)
	require.Equal(t, []string{"dramabox:A1", "melolo:A1", "dramabox:a2"}, ids(sec.Items))
}

func TestSection_Unknown(t *testing.T) {
	a := New(newFake(t, nil), Options{})
	_, ok := a.Section(context.Background(), "nope")
	require.False(t, ok)
}

func TestSections_KeepsEmptySections(t *testing.T) {
	a := New(newFake(t, nil), Options{})
	secs := a.Sections(context.Background())
	require.Len(t, secs, len(SectionIDs()))
	for i, s := range secs {
		require.Equal(t, SectionIDs()[i], s.Path)
		require.Empty(t, s.Items)
	}
}

func TestHome(t *testing.T) {
	f := newFake(t, map[string]string{
		"dramabox/latest":        `[{"bookId":"l1","bookName":"Latest"}]`,
		"dramabox/randomdrama":   `{"data":[{"bookId":"rnd","bookName":"Random"}]}`,
		"dramabox/populersearch": `{"data":[{"bookId":"p1","bookName":"P1"},{"bookId":"p2","bookName":"P2"}]}`,
	})

	home := New(f, Options{}).Home(context.Background())
	require.Len(t, home.Sections, 4)
	require.NotNil(t, home.Highlight)
	require.Equal(t, "l1", home.Highlight.ID)
	require.NotNil(t, home.RandomPick)
	require.Equal(t, "rnd", home.RandomPick.ID)
	require.Equal(t, []string{"dramabox:p1", "dramabox:p2"}, ids(home.PopularSearches))
}

func TestHome_AllUpstreamsDown(t *testing.T) {
	home := New(newFake(t, nil), Options{}).Home(context.Background())
	require.Nil(t, home.Highlight)
	require.Nil(t, home.RandomPick)
	require.Empty(t, home.PopularSearches)
	require.Len(t, home.Sections, 4)
}

func TestNetshortEpisodeCountPatch(t *testing.T) {
	f := newFake(t, map[string]string{
		"netshort/theaters": `{"data":{"contentInfos":[
			{"shortPlayId":"n1","shortPlayName":"Needs Patch"},
			{"shortPlayId":"n2","shortPlayName":"Has Count","totalEpisode":30}
		]}}`,
		"netshort/allepisode?shortPlayId=n1": `{"data":{"totalEpisode":"64"}}`,
	})

	sec, _ := New(f, Options{}).Section(context.Background(), SectionTrending)
	require.Len(t, sec.Items, 2)
	require.Equal(t, 64, sec.Items[0].EpisodeCount)
	require.Equal(t, 30, sec.Items[1].EpisodeCount)
	require.Equal(t, 0, f.called("netshort/allepisode?shortPlayId=n2"))
}

func TestCategory_TrendingPaginates(t *testing.T) {
	var b strings.Builder
	b.WriteString(`[`)
	for i := 0; i < 5; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"bookId":"t` + string(rune('0'+i)) + `","bookName":"T"}`)
	}
	b.WriteString(`]`)
	f := newFake(t, map[string]string{"dramabox/trending": b.String()})
	a := New(f, Options{PageSize: 2})

	p1 := a.Category(context.Background(), "trending-sekarang", 1)
	require.Equal(t, SectionTrending, p1.Slug)
	require.Equal(t, []string{"dramabox:t0", "dramabox:t1"}, ids(p1.Items))
	require.True(t, p1.HasNext)

	p3 := a.Category(context.Background(), "trending", 3)
	require.Equal(t, []string{"dramabox:t4"}, ids(p3.Items))
	require.False(t, p3.HasNext)

	p9 := a.Category(context.Background(), "trending", 9)
	require.Empty(t, p9.Items)
	require.NotNil(t, p9.Items)

	p0 := a.Category(context.Background(), "trending", -2)
	require.Equal(t, 1, p0.Page)
}

func TestCategory_HugePageIsEmpty(t *testing.T) {
	f := newFake(t, map[string]string{
		"dramabox/trending": `[{"bookId":"t0","bookName":"T"}]`,
	})
	a := New(f, Options{})

	var p Page
	require.NotPanics(t, func() {
		p = a.Category(context.Background(), "trending", 576460752303423489)
	})
	require.Empty(t, p.Items)
	require.NotNil(t, p.Items)
	require.False(t, p.HasNext)
	require.Equal(t, maxCategoryPage, p.Page)

	require.NotPanics(t, func() {
		p = a.Category(context.Background(), "foryou", 1<<62)
	})
	require.Empty(t, p.Items)
	for _, c := range f.calls {
		require.NotContains(t, c, "offset=-")
	}
}

func TestCategory_ForYouPageLimits(t *testing.T) {
	f := newFake(t, map[string]string{
		"dramabox/foryou?page=3": `[{"bookId":"f1","bookName":"F"}]`,
	})
	a := New(f, Options{})

	p := a.Category(context.Background(), "foryou", 3)
	require.Equal(t, []string{"dramabox:f1"}, ids(p.Items))
	require.True(t, p.HasNext)
	require.Equal(t, 0, f.called("flickreels/foryou?page=3"))
	require.Equal(t, 1, f.called("melolo/foryou?offset=60"))

	a.Category(context.Background(), "foryou", 6)
	require.Equal(t, 0, f.called("melolo/foryou?offset=120"))
	require.Equal(t, 1, f.called("dramabox/foryou?page=6"))
}

func TestCategory_DubbedMergesClassifies(t *testing.T) {
	f := newFake(t, map[string]string{
		"dramabox/dubindo?classify=terpopuler&page=2": `[{"bookId":"x","bookName":"X"},{"bookId":"y","bookName":"Y"}]`,
		"dramabox/dubindo?classify=terbaru&page=2":    `[{"bookId":"y","bookName":"Y"},{"bookId":"z","bookName":"Z"}]`,
	})
	p := New(f, Options{}).Category(context.Background(), "dubbing-indonesia", 2)
	require.Equal(t, SectionDubbed, p.Slug)
	require.ElementsMatch(t, []string{"dramabox:x", "dramabox:y", "dramabox:z"}, ids(p.Items))
}

func TestCategory_GenreFilter(t *testing.T) {
	f := newFake(t, map[string]string{
		"dramabox/trending": `[
			{"bookId":"c1","bookName":"The Cold CEO","tags":[]},
			{"bookId":"r1","bookName":"Sweet Lover"},
			{"bookId":"v1","bookName":"Vengeance","tags":["Revenge Story"]}
		]`,
	})
	a := New(f, Options{})

	p := a.Category(context.Background(), "revenge-story", 1)
	require.Equal(t, "Revenge Story", p.Title)
	require.Equal(t, []string{"dramabox:v1"}, ids(p.Items))

	p = a.Category(context.Background(), "ceo", 1)
	require.Equal(t, []string{"dramabox:c1"}, ids(p.Items))
}

func TestSearch(t *testing.T) {
	f := newFake(t, map[string]string{
		"dramabox/search?query=love+story":                 `{"data":[{"bookId":"d1","bookName":"Love Story"}]}`,
		"melolo/search?query=love+story&limit=15&offset=0": `{"data":{"search_data":[{"books":[{"book_id":"m1","book_name":"Love"}]}]}}`,
		"flickreels/search?query=love+story":               `{"data":[{"playlet_id":"f1","playlet_name":"Love"},{"playlet_id":"f1","playlet_name":"Love dup"}]}`,
	})
	items := New(f, Options{}).Search(context.Background(), "  love story ")
	require.Equal(t, []string{"dramabox:d1", "melolo:m1", "flickreels:f1"}, ids(items))

	require.Empty(t, New(f, Options{}).Search(context.Background(), "   "))
}

func TestInterleave(t *testing.T) {
	require.Equal(t, []int{1, 10, 100, 2, 20, 3}, Interleave([][]int{{1, 2, 3}, {10, 20}, {100}}))
	require.Empty(t, Interleave[int](nil))
}

func TestSectionTitle(t *testing.T) {
	require.Equal(t, "New Releases", SectionTitle(SectionLatest))
	require.Equal(t, "", SectionTitle("nope"))
}

func TestHighlight(t *testing.T) {
	require.Nil(t, Highlight(nil))
	secs := []Section{
		{Path: SectionTrending},
		{Path: SectionLatest, Items: []catalog.CatalogItem{{ID: "x", Title: "X"}}},
	}
	hl := Highlight(secs)
	require.NotNil(t, hl)
	require.Equal(t, "x", hl.ID)
}
