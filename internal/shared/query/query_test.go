package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"catalog-backend/internal/shared/validator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var books = AllowList{
	"id":        {Column: "id", Kind: Integer},
	"author_id": {Column: "author_id", Kind: Integer},
	"title":     {Column: "title", Kind: Text},
	"pub_year":  {Column: "pub_year", Kind: Int32},
	"genre":     {Column: "genre", Kind: Text},
}

func TestTranslate_Empty(t *testing.T) {
	f, err := books.Translate(url.Values{})
	require.NoError(t, err)

	where, args := f.Where(1)
	assert.True(t, f.IsEmpty())
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestTranslate_SortedAndBound(t *testing.T) {
	params, err := url.ParseQuery("genre=fantasy&author_id=2&pub_year=2009")
	require.NoError(t, err)

	f, err := books.Translate(params)
	require.NoError(t, err)

	where, args := f.Where(1)
	assert.Equal(t, "WHERE author_id = $1 AND genre = $2 AND pub_year = $3", where)
	assert.Equal(t, []any{int64(2), "fantasy", int64(2009)}, args)
}

func TestTranslate_StartPos(t *testing.T) {
	f, err := books.Translate(url.Values{"title": {"Dune"}})
	require.NoError(t, err)

	where, args := f.Where(3)
	assert.Equal(t, "WHERE title = $3", where)
	assert.Equal(t, []any{"Dune"}, args)
}

func TestTranslate_ValuesNeverInterpolated(t *testing.T) {
	f, err := books.Translate(url.Values{"title": {"x' OR '1'='1"}})
	require.NoError(t, err)

	where, args := f.Where(1)
	assert.Equal(t, "WHERE title = $1", where)
	assert.Equal(t, []any{"x' OR '1'='1"}, args)
}

func TestTranslate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "unknown attribute",
			query: "name=x",
			want:  []string{`"name": unknown filter attribute`},
		},
		{
			name:  "repeated attribute",
			query: "genre=a&genre=b",
			want:  []string{`"genre": must be given at most once`},
		},
		{
			name:  "bad integer",
			query: "pub_year=twenty",
			want:  []string{`"pub_year": must be an integer`},
		},
		{
			name:  "pub_year outside INTEGER",
			query: "pub_year=99999999999",
			want:  []string{`"pub_year": must be between -2147483648 and 2147483647`},
		},
		{
			name:  "id outside BIGINT",
			query: "id=99999999999999999999",
			want:  []string{`"id": must be an integer`},
		},
		{
			name:  "invalid utf-8",
			query: "title=%FF",
			want:  []string{`"title": must be valid UTF-8`},
		},
		{
			name:  "NUL byte",
			query: "title=a%00b",
			want:  []string{`"title": must not contain NUL characters`},
		},
		{
			name:  "several at once",
			query: "zzz=1&author_id=x",
			want:  []string{`"author_id": must be an integer`, `"zzz": unknown filter attribute`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			_, err = books.Translate(params)

			var verr *validator.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Violations)
		})
	}
}

func TestTranslate_TextIsExact(t *testing.T) {
	f, err := books.Translate(url.Values{"genre": {"Fantasy"}})
	require.NoError(t, err)

	_, args := f.Where(1)
	assert.Equal(t, []any{"Fantasy"}, args)
}
