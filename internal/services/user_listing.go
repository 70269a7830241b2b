package services

import (
	"slices"
	"strings"

	"github.com/japanesestudent/useradmin/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// UserSorter orders users with locale-aware string comparison
type UserSorter struct {
	locale language.Tag
}

// NewUserSorter creates a sorter using collation rules of the given locale
func NewUserSorter(locale language.Tag) *UserSorter {
	return &UserSorter{locale: locale}
}

// Sort returns a stably sorted copy of users.
//
// Invalid orders are replaced by models.DefaultSortOrder.
func (s *UserSorter) Sort(users []models.User, order models.SortOrder) []models.User {
	if !order.Valid() {
		order = models.DefaultSortOrder
	}

	// collate.Collator keeps internal buffers, so each call gets its own
	col := collate.New(s.locale)
	key := sortKey(order.Field)

	sorted := slices.Clone(users)
	slices.SortStableFunc(sorted, func(a, b models.User) int {
		c := col.CompareString(key(a), key(b))
		if order.Direction == models.SortDesc {
			return -c
		}
		return c
	})
	return sorted
}

func sortKey(field models.SortField) func(models.User) string {
	if field == models.SortByEmail {
		return func(u models.User) string { return u.Email }
	}
	return func(u models.User) string { return u.FullName }
}

// FilterUsers returns users whose full name or email contains query, ignoring case.
//
// An empty query keeps every user.
func FilterUsers(users []models.User, query string) []models.User {
	if query == "" {
		return slices.Clone(users)
	}

	fold := cases.Fold()
	needle := fold.String(query)

	filtered := make([]models.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(fold.String(u.FullName), needle) || strings.Contains(fold.String(u.Email), needle) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}
