package metrics

import (
	"sort"

	"orderpulse/pkg/contracts/domain"
)

// PaymentMethodCounts counts distinct orders per payment type, sorted by type
func PaymentMethodCounts(orders []domain.Order) []domain.CategoryCount {
	ids := make(map[string]map[string]struct{})
	for _, o := range orders {
		addDistinct(ids, o.PaymentType, o.OrderID)
	}

	counts := make([]domain.CategoryCount, 0, len(ids))
	for key, set := range ids {
		counts = append(counts, domain.CategoryCount{Key: key, Count: len(set)})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Key < counts[j].Key
	})
	return counts
}

// ReviewScoreCounts counts distinct orders per review score, sorted by score.
// Orders without a score are excluded.
func ReviewScoreCounts(orders []domain.Order) []domain.ReviewScoreCount {
	ids := make(map[int]map[string]struct{})
	for _, o := range orders {
		if o.ReviewScore == nil {
			continue
		}
		score := *o.ReviewScore
		set, ok := ids[score]
		if !ok {
			set = make(map[string]struct{})
			ids[score] = set
		}
		set[o.OrderID] = struct{}{}
	}

	counts := make([]domain.ReviewScoreCount, 0, len(ids))
	for score, set := range ids {
		counts = append(counts, domain.ReviewScoreCount{Score: score, Count: len(set)})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Score < counts[j].Score
	})
	return counts
}

// IsLowScore reports whether a review score is 1 or 2
func IsLowScore(score int) bool {
	return score == 1 || score == 2
}

// LowScoreReviews returns the rows scored 1 or 2 that carry both a comment
// title and a comment message, in input order. An empty string counts as present.
func LowScoreReviews(orders []domain.Order) []domain.ReviewComment {
	comments := make([]domain.ReviewComment, 0)
	for _, o := range orders {
		if o.ReviewScore == nil || !IsLowScore(*o.ReviewScore) {
			continue
		}
		if o.ReviewCommentTitle == nil || o.ReviewCommentMessage == nil {
			continue
		}
		comments = append(comments, domain.ReviewComment{
			OrderID:     o.OrderID,
			ReviewScore: *o.ReviewScore,
			Title:       *o.ReviewCommentTitle,
			Message:     *o.ReviewCommentMessage,
		})
	}
	return comments
}

// TopCategoriesPerYear counts observations per (category, year) and keeps the
// TopN categories of each year, by count descending then label ascending.
// Years are ascending. The input is never date filtered.
func TopCategoriesPerYear(observations []domain.ProductCategoryObservation) []domain.YearlyTopCategories {
	type key struct {
		category string
		year     int
	}
	counts := make(map[key]int)
	for _, obs := range observations {
		counts[key{category: obs.ProductCategory, year: obs.Year}]++
	}

	byYear := make(map[int][]domain.CategoryYearCount)
	for k, n := range counts {
		byYear[k.year] = append(byYear[k.year], domain.CategoryYearCount{
			ProductCategory: k.category,
			Year:            k.year,
			OrderCount:      n,
		})
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	result := make([]domain.YearlyTopCategories, 0, len(years))
	for _, year := range years {
		categories := byYear[year]
		sort.Slice(categories, func(i, j int) bool {
			if categories[i].OrderCount != categories[j].OrderCount {
				return categories[i].OrderCount > categories[j].OrderCount
			}
			return categories[i].ProductCategory < categories[j].ProductCategory
		})
		if len(categories) > TopN {
			categories = categories[:TopN]
		}
		result = append(result, domain.YearlyTopCategories{Year: year, Categories: categories})
	}
	return result
}

// CustomersPerState counts distinct customer ids per state over every
// customer, sorted by state. It never sees the date window.
func CustomersPerState(customers []domain.Customer) []domain.StateCount {
	ids := make(map[string]map[string]struct{})
	for _, c := range customers {
		addDistinct(ids, c.CustomerState, c.CustomerID)
	}

	counts := make([]domain.StateCount, 0, len(ids))
	for state, set := range ids {
		counts = append(counts, domain.StateCount{CustomerState: state, Count: len(set)})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].CustomerState < counts[j].CustomerState
	})
	return counts
}

func addDistinct(sets map[string]map[string]struct{}, group, id string) {
	set, ok := sets[group]
	if !ok {
		set = make(map[string]struct{})
		sets[group] = set
	}
	set[id] = struct{}{}
}
