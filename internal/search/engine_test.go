package search

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/flat"
	"github.com/standardbeagle/flatq/internal/tree"
)

func TestSearchByQueryScenario(t *testing.T) {
	e := NewEngine(".", nil)
	fm := flat.FlatMapOf("a.b", "hello world", "c.d", "goodbye")

	ranked, err := e.RankByQuery("hello", fm, QueryOptions{CaseSensitive: true})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "a.b", ranked[0].Path)
	assert.Equal(t, 1, ranked[0].Score)

	out, err := e.SearchByQuery("hello", fm, QueryOptions{CaseSensitive: true})
	require.NoError(t, err)
	assert.Equal(t, `{"a.b":"hello world"}`, out.Tree().Text())

	out, err = e.SearchByQuery("xyz", fm, QueryOptions{CaseSensitive: true})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())

	out, err = e.SearchByQuery("   ", fm, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestRankByQueryOrderAndCap(t *testing.T) {
	e := NewEngine(".", nil)
	fm := flat.FlatMapOf(
		"x.1", "red apple",
		"x.2", "green apple",
		"x.3", "red apple pie",
		"x.4", "pear",
	)

	ranked, err := e.RankByQuery("red apple", fm, QueryOptions{})
	require.NoError(t, err)

	var paths []string
	for _, r := range ranked {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"x.1", "x.3", "x.2"}, paths, "score desc, ties in map order")
	assert.Equal(t, []int{2, 2, 1}, []int{ranked[0].Score, ranked[1].Score, ranked[2].Score})

	capped, err := e.SearchByQuery("red apple", fm, QueryOptions{MaxResults: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.1", "x.3"}, capped.Keys())
}

func TestRankByQueryCapProperty(t *testing.T) {
	e := NewEngine(".", nil)
	r := rand.New(rand.NewSource(3))
	words := []string{"alpha", "beta", "gamma", "delta"}

	fm := flat.NewFlatMap(0)
	for i := 0; i < 60; i++ {
		fm.Set(fmt.Sprintf("items.%d.text", i), tree.String(words[r.Intn(4)]+" "+words[r.Intn(4)]))
	}

	for _, limit := range []int{1, 5, 10, 100} {
		ranked, err := e.RankByQuery("alpha gamma", fm, QueryOptions{MaxResults: limit})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(ranked), limit)

		for i := 1; i < len(ranked); i++ {
			prev, cur := ranked[i-1], ranked[i]
			require.GreaterOrEqual(t, prev.Score, cur.Score)
			if prev.Score == cur.Score {
				assert.Less(t, indexOf(fm, prev.Path), indexOf(fm, cur.Path), "ties keep map order")
			}
		}
	}
}

func indexOf(fm *flat.FlatMap, path string) int {
	for i, k := range fm.Keys() {
		if k == path {
			return i
		}
	}
	return -1
}

func TestQueryWordInText(t *testing.T) {
	e := NewEngine(".", nil)
	fm := flat.FlatMapOf(
		"note", "the quick brown fox",
		"user.firstName", "ann",
		"shop.item", "running shoes",
	)

	tests := []struct {
		name  string
		query string
		opts  QueryOptions
		want  map[string]int
	}{
		{"multi word value", "brown fox", QueryOptions{CaseSensitive: true}, map[string]int{"note": 2}},
		{"key segment", "user", QueryOptions{CaseSensitive: true}, map[string]int{"user.firstName": 1}},
		{"compound key token", "Name", QueryOptions{CaseSensitive: true}, map[string]int{"user.firstName": 1}},
		{"case folded", "QUICK", QueryOptions{}, map[string]int{"note": 1}},
		{"case sensitive miss", "QUICK", QueryOptions{CaseSensitive: true}, map[string]int{}},
		{"fuzzy", "quikc", QueryOptions{Fuzzy: true}, map[string]int{"note": 1}},
		{"stem off", "runs", QueryOptions{}, map[string]int{}},
		{"stem on", "runs", QueryOptions{Stem: true}, map[string]int{"shop.item": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked, err := e.RankByQuery(tt.query, fm, tt.opts)
			require.NoError(t, err)

			got := map[string]int{}
			for _, r := range ranked {
				got[r.Path] = r.Score
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntryTokens(t *testing.T) {
	e := NewEngine(".", nil)
	tokens := e.EntryTokens("user.firstName", tree.String("Version5 ready"))
	assert.Equal(t, []string{"user", "firstName", "first", "Name", "Version5", "Version", "5", "ready"}, tokens)

	tokens = e.EntryTokens("n", tree.Int(42))
	assert.Equal(t, []string{"n", "42"}, tokens)
}

func keywordFixture() *flat.FlatMap {
	return flat.FlatMapOf(
		"name", "alice",
		"user.name", "bob",
		"note", "name tag",
		"age", 30,
	)
}

func TestSearchByKeyword(t *testing.T) {
	e := NewEngine(".", nil)

	tests := []struct {
		name    string
		keyword string
		opts    KeywordOptions
		byKey   []string
		byValue []string
	}{
		{"both buckets", "name", KeywordOptions{CaseSensitive: true}, []string{"name", "user.name"}, []string{"note"}},
		{"keys only", "name", KeywordOptions{CaseSensitive: true, KeysOnly: true}, []string{"name", "user.name"}, []string{}},
		{"values only", "name", KeywordOptions{CaseSensitive: true, ValuesOnly: true}, []string{}, []string{"note"}},
		{"number value", "30", KeywordOptions{CaseSensitive: true}, []string{}, []string{"age"}},
		{"case folded", "BOB", KeywordOptions{}, []string{}, []string{"user.name"}},
		{"case sensitive miss", "BOB", KeywordOptions{CaseSensitive: true}, []string{}, []string{}},
		{"fuzzy", "nme", KeywordOptions{CaseSensitive: true, Fuzzy: true}, []string{"name", "user.name"}, []string{"note"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.SearchByKeyword(keywordFixture(), tt.keyword, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.byKey, res.ByKey.Keys())
			assert.Equal(t, tt.byValue, res.ByValue.Keys())
			assert.Equal(t, len(tt.byKey)+len(tt.byValue), res.Len())
		})
	}
}

func TestSearchByKeywordBucketsAreExclusive(t *testing.T) {
	e := NewEngine(".", nil)
	fm := flat.FlatMapOf("tag", "tag", "tags.0", "tagged", "other", "tag")

	res, err := e.SearchByKeyword(fm, "tag", KeywordOptions{CaseSensitive: true})
	require.NoError(t, err)

	for _, k := range res.ByKey.Keys() {
		_, dup := res.ByValue.Get(k)
		assert.False(t, dup, "%s in both buckets", k)
	}
	assert.Equal(t, []string{"tag", "tags.0"}, res.ByKey.Keys())
	assert.Equal(t, []string{"other"}, res.ByValue.Keys())
}

func TestSearchByKeywordRejectsBothOnlyFlags(t *testing.T) {
	e := NewEngine(".", nil)
	_, err := e.SearchByKeyword(keywordFixture(), "name", KeywordOptions{KeysOnly: true, ValuesOnly: true})

	var se *flqerrors.SearchError
	assert.True(t, errors.As(err, &se))
}

func TestFilters(t *testing.T) {
	e := NewEngine(".", nil)
	fm := flat.FlatMapOf(
		"users.0.email", "a@x",
		"users.1.email", "b@x",
		"admin.email", "c@x",
		"users.0.age", 20,
		"users.1.age", 10,
	)

	res, err := e.SearchByKeyword(fm, "x", KeywordOptions{Filter: Filter{PathGlob: "users/*/email"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"users.0.email", "users.1.email"}, res.ByValue.Keys())

	res, err = e.SearchByKeyword(fm, "", KeywordOptions{Filter: Filter{PathGlob: "**/email"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ByKey.Len())

	res, err = e.SearchByKeyword(fm, "", KeywordOptions{Filter: Filter{Where: `kind == "number" && value > 18`}})
	require.NoError(t, err)
	assert.Equal(t, []string{"users.0.age"}, res.ByKey.Keys())

	ranked, err := e.RankByQuery("users", fm, QueryOptions{Filter: Filter{Where: `depth == 3 && segments[2] == "age"`}})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "users.0.age", ranked[0].Path)
}

func TestFilterErrors(t *testing.T) {
	e := NewEngine(".", nil)
	fm := flat.FlatMapOf("a", 1)

	tests := []Filter{
		{PathGlob: "users/[a-"},
		{Where: "key =="},
		{Where: `key + 1`},
	}
	for _, f := range tests {
		_, err := e.SearchByKeyword(fm, "a", KeywordOptions{Filter: f})
		var se *flqerrors.SearchError
		assert.True(t, errors.As(err, &se), "filter %+v: %v", f, err)
	}

	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Where: "true"}.IsZero())
}

func TestZeroFilterAdmitsEverything(t *testing.T) {
	cf, err := Filter{}.compile(".")
	require.NoError(t, err)
	require.NotNil(t, cf)

	for _, path := range []string{"a", "a.b.c", "users.0.email"} {
		ok, err := cf.allow(path, tree.String("x"))
		require.NoError(t, err)
		assert.True(t, ok, path)
	}
}

func TestCustomSeparator(t *testing.T) {
	e := NewEngine("/", nil)
	fm := flat.FlatMapOf("config/db.host", "localhost")

	ranked, err := e.RankByQuery("db.host", fm, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	res, err := e.SearchByKeyword(fm, "localhost", KeywordOptions{Filter: Filter{PathGlob: "config/*"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ByValue.Len())
}
