package model

import "errors"

var (
	ErrAuthorNotFound = errors.New("author not found")
	ErrAuthorHasBooks = errors.New("author still has books")
)

// HasBooksMessage là detail trả về client khi xóa author còn books
const HasBooksMessage = "Author still has books associated, please delete those first"
