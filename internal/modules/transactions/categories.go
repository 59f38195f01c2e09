package transactions

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fundkeep/fundkeep/internal/domain"
)

// CategoryRepository handles category rows in books.db. Categories are
// referenced by transactions and recurring templates; the quick-add form
// requires one.
type CategoryRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *sql.DB, log zerolog.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:  db,
		log: log.With().Str("repository", "categories").Logger(),
	}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(c domain.Category) error {
	_, err := r.db.Exec(`
		INSERT INTO categories (id, org_id, name, kind)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.OrgID, c.Name, string(c.Kind))
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// ListByOrg retrieves all categories of an organization.
func (r *CategoryRepository) ListByOrg(orgID string) ([]domain.Category, error) {
	rows, err := r.db.Query(`
		SELECT id, org_id, name, kind
		FROM categories WHERE org_id = ? ORDER BY name
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		var kind string
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Name, &kind); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan category row")
			continue
		}
		c.Kind = domain.CategoryKind(kind)
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
