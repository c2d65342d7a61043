package services

import (
	"math"
	"strings"

	"lostfound/internal/models"

	"gorm.io/gorm"
)

// PerPage is the fixed listing page size.
const PerPage = 10

// ListingFilter narrows the listing index. Zero values impose no
// constraint.
type ListingFilter struct {
	Query      string
	CategoryID uint
	TownID     uint
	Page       int // 1-indexed; out-of-range pages yield an empty page
}

// ListingPage is one page of filter results.
type ListingPage struct {
	Listings   []models.Listing
	Total      int64
	Page       int
	TotalPages int
}

type SearchService struct {
	db *gorm.DB
}

func NewSearchService(g *gorm.DB) *SearchService {
	return &SearchService{db: g}
}

// FilterListings returns listings matching the free-text query plus the
// category/town constraints, newest first. Every whitespace-separated
// token of the normalized query must appear in the normalized title or
// description.
func (s *SearchService) FilterListings(filter ListingFilter) (*ListingPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}

	q := s.db.Model(&models.Listing{})

	for _, token := range strings.Fields(models.NormalizeSearch(filter.Query)) {
		pattern := "%" + token + "%"
		q = q.Where("title_search LIKE ? OR description_search LIKE ?", pattern, pattern)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.TownID != 0 {
		q = q.Where("town_id = ?", filter.TownID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(PerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var listings []models.Listing
	err := q.Preload("Category").Preload("Town").Preload("Images").
		Order("created_at DESC, id DESC").
		Limit(PerPage).
		Offset((page - 1) * PerPage).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}

	return &ListingPage{
		Listings:   listings,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}
