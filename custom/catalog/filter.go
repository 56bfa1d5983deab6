// Package catalog holds the in-memory filters the storefront applies to
// collections it has already fetched.
package catalog

import (
	"strings"

	"tailor_shop/model"
)

// Matches reports whether query occurs in any of fields, ignoring case. An
// empty query matches everything.
func Matches(query string, fields ...string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func FilterFabrics(fabrics []*model.Fabric, query string) []*model.Fabric {
	out := make([]*model.Fabric, 0, len(fabrics))
	for _, f := range fabrics {
		if Matches(query, f.Name, f.Material, deref(f.Color), deref(f.Description)) {
			out = append(out, f)
		}
	}
	return out
}

// FilterGarments applies the search text and, when category is set, an exact
// category match.
func FilterGarments(garments []*model.Garment, query, category string) []*model.Garment {
	out := make([]*model.Garment, 0, len(garments))
	for _, g := range garments {
		if category != "" && g.Category != category {
			continue
		}
		if Matches(query, g.Name, g.Category, deref(g.Description)) {
			out = append(out, g)
		}
	}
	return out
}
