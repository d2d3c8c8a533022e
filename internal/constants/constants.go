package constants

// controller registry keys
const (
	Site = iota
	Admin
	Auth
	Sitemap
	Media
	Status
)

// log subtypes
const (
	LogTypeSite    = "site"
	LogTypeAdmin   = "admin"
	LogTypeAuth    = "auth"
	LogTypeSitemap = "sitemap"
	LogTypeMedia   = "media"
)

// ClaimsKey is the gin context key under which the admin token claims are stored.
const ClaimsKey = "adminClaims"

// RouteNameKey is the gin context key holding the name of the matched site route.
const RouteNameKey = "routeName"
