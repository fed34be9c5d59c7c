package model

import (
	"fmt"

	"catalog-backend/internal/shared/query"
	"catalog-backend/internal/shared/validator"
)

type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// NewAuthor là body của POST /authors
type NewAuthor struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

var NewAuthorSchema = validator.Schema{
	{Name: "name", Kind: validator.String},
	{Name: "bio", Kind: validator.String},
}

// AuthorSchema là body của PUT /authors/:id (full replacement, có id)
var AuthorSchema = validator.Schema{
	{Name: "id", Kind: validator.Integer},
	{Name: "name", Kind: validator.String},
	{Name: "bio", Kind: validator.String},
}

// FilterAttributes là các query param được phép trên GET /authors
var FilterAttributes = query.AllowList{
	"id":   {Column: "id", Kind: query.Integer},
	"name": {Column: "name", Kind: query.Text},
	"bio":  {Column: "bio", Kind: query.Text},
}

func NotFoundMessage(id int64) string {
	return fmt.Sprintf("No author was found with ID: %d", id)
}
