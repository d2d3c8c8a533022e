package utils

import (
	"unicode"
	"unicode/utf8"
)

// SliceToMap indexes a slice by the key returned for each element.
// When two elements share a key, the last one wins.
func SliceToMap[T any, K comparable](s []T, key func(T) K) map[K]T {
	m := make(map[K]T, len(s))

	for _, v := range s {
		m[key(v)] = v
	}

	return m
}

// UniqueBy returns the elements of s in order, keeping only the first element per key.
func UniqueBy[T any, K comparable](s []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(s))
	unique := make([]T, 0, len(s))

	for _, v := range s {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, v)
	}

	return unique
}

// ToSnakeCase converts a CamelCase string to snake_case.
// It inserts underscores before uppercase letters (except the first one)
// and converts all letters to lowercase.
//
// Examples:
//
//	ToSnakeCase("CamelCase")    => "camel_case"
//	ToSnakeCase("HTTPRequest")  => "http_request"
//	ToSnakeCase("CategoryID")   => "category_id"
func ToSnakeCase(str string) string {
	var result []rune
	for i, r := range str {
		if unicode.IsUpper(r) {
			// e.g., HTTPRequest will be converted to http_request
			if i > 0 && (unicode.IsLower(rune(str[i-1])) || (i+1 < len(str) && unicode.IsLower(rune(str[i+1])))) {
				result = append(result, '_')
			}
			result = append(result, unicode.ToLower(r))
			continue
		}

		result = append(result, r)
	}

	return string(result)
}

// CalculateTotalPages returns how many pages of pageSize are needed for matchCount elements.
// A non-positive pageSize yields 0.
func CalculateTotalPages(matchCount, pageSize int) int {
	if pageSize <= 0 || matchCount <= 0 {
		return 0
	}

	return (matchCount + pageSize - 1) / pageSize
}

// TruncateRunes cuts s after max characters (not bytes) and appends suffix if anything was cut.
func TruncateRunes(s string, max int, suffix string) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	return string([]rune(s)[:max]) + suffix
}
