package model

import (
	"fmt"

	"catalog-backend/internal/shared/query"
	"catalog-backend/internal/shared/validator"
)

// Genre là thể loại sách, tập giá trị cố định
type Genre string

const (
	GenreRomance        Genre = "romance"
	GenreMystery        Genre = "mystery"
	GenreFiction        Genre = "fiction"
	GenreFantasy        Genre = "fantasy"
	GenreAdventure      Genre = "adventure"
	GenreAction         Genre = "action"
	GenreScienceFiction Genre = "science fiction"
	GenreBiography      Genre = "biography"
)

var Genres = []Genre{
	GenreRomance, GenreMystery, GenreFiction, GenreFantasy,
	GenreAdventure, GenreAction, GenreScienceFiction, GenreBiography,
}

type Book struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
	PubYear  int    `json:"pub_year"`
	Genre    Genre  `json:"genre"`
}

// NewBook là body của POST /books
type NewBook struct {
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
	PubYear  int    `json:"pub_year"`
	Genre    Genre  `json:"genre"`
}

var NewBookSchema = validator.Schema{
	{Name: "author_id", Kind: validator.Integer},
	{Name: "title", Kind: validator.String},
	{Name: "pub_year", Kind: validator.Int32},
	{Name: "genre", Kind: validator.Enum, Values: genreValues()},
}

// BookSchema là body của PUT /books/:id (full replacement, có id)
var BookSchema = append(validator.Schema{{Name: "id", Kind: validator.Integer}}, NewBookSchema...)

// FilterAttributes là các query param được phép trên GET /books
var FilterAttributes = query.AllowList{
	"id":        {Column: "id", Kind: query.Integer},
	"author_id": {Column: "author_id", Kind: query.Integer},
	"title":     {Column: "title", Kind: query.Text},
	"pub_year":  {Column: "pub_year", Kind: query.Int32},
	"genre":     {Column: "genre", Kind: query.Text},
}

func genreValues() []string {
	values := make([]string, len(Genres))
	for i, g := range Genres {
		values[i] = string(g)
	}
	return values
}

func NotFoundMessage(id int64) string {
	return fmt.Sprintf("No book was found with ID: %d", id)
}
