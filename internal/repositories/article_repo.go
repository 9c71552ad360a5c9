package repositories

import (
	"context"

	"acta/internal/models"

	"github.com/google/uuid"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ArticleFilter, page models.PageRequest) ([]*models.Article, int, error)
}

// ArticleFilter narrows List; nil fields are not applied.
type ArticleFilter struct {
	TenantID  *uuid.UUID
	CompanyID *uuid.UUID
}

type articleRepo struct {
	db DBTX
}

func NewArticleRepo(db DBTX) ArticleRepository {
	return &articleRepo{db: db}
}

const articleColumns = `a.id, a.company_id, c.tenant_id, a.name, a.unit, a.code, a.vat_code::text, a.base_price, a.created_at, a.updated_at`

func scanArticle(row rowScanner) (*models.Article, error) {
	a := &models.Article{}
	err := row.Scan(&a.ID, &a.CompanyID, &a.TenantID, &a.Name, &a.Unit, &a.Code, &a.VATCode, &a.BasePrice, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *articleRepo) Create(ctx context.Context, a *models.Article) error {
	query := `
		INSERT INTO article (id, company_id, name, unit, code, vat_code, base_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.CompanyID, a.Name, a.Unit, a.Code, a.VATCode, a.BasePrice)
	return mapError(err, "Article")
}

func (r *articleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	query := `SELECT ` + articleColumns + `
		FROM article a
		JOIN company c ON c.id = a.company_id
		WHERE a.id = $1`
	a, err := scanArticle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "Article")
	}
	return a, nil
}

func (r *articleRepo) Update(ctx context.Context, a *models.Article) error {
	query := `
		UPDATE article
		SET company_id = $1, name = $2, unit = $3, code = $4, vat_code = $5, base_price = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query, a.CompanyID, a.Name, a.Unit, a.Code, a.VATCode, a.BasePrice, a.ID)
	if err != nil {
		return mapError(err, "Article")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "Article")
	}
	return nil
}

func (r *articleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM article WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Article")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "Article")
	}
	return nil
}

func (r *articleRepo) List(ctx context.Context, filter ArticleFilter, page models.PageRequest) ([]*models.Article, int, error) {
	where := `WHERE ($1::uuid IS NULL OR c.tenant_id = $1) AND ($2::uuid IS NULL OR a.company_id = $2)`

	var total int
	countQuery := `SELECT COUNT(*) FROM article a JOIN company c ON c.id = a.company_id ` + where
	if err := r.db.QueryRow(ctx, countQuery, filter.TenantID, filter.CompanyID).Scan(&total); err != nil {
		return nil, 0, mapError(err, "Article")
	}

	query := `SELECT ` + articleColumns + `
		FROM article a
		JOIN company c ON c.id = a.company_id
		` + where + `
		ORDER BY a.name ASC, a.id ASC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, filter.TenantID, filter.CompanyID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, mapError(err, "Article")
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, mapError(err, "Article")
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, "Article")
	}
	return articles, total, nil
}
