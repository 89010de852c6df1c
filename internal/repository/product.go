package repository

import (
	"context"
	"fmt"
)

const productColumns = `p.id, p.name, p.description, p.image_url, p.retail_price,
	p.unit_of_measure, p.category_id, p.is_popular, p.is_active, p.created_at, p.updated_at,
	c.name, c.description`

type FindProductsParams struct {
	CategoryID *int64
	IsPopular  *bool
	IsActive   *bool
	Search     string
	Limit      int32
	Offset     int32
}

type FindProductsRow struct {
	Product
	CategoryName        *string
	CategoryDescription *string
}

func productFilters(arg FindProductsParams) (string, []interface{}) {
	where := "1=1"
	args := []interface{}{}
	if arg.CategoryID != nil {
		args = append(args, *arg.CategoryID)
		where += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}
	if arg.IsPopular != nil {
		args = append(args, *arg.IsPopular)
		where += fmt.Sprintf(" AND p.is_popular = $%d", len(args))
	}
	if arg.IsActive != nil {
		args = append(args, *arg.IsActive)
		where += fmt.Sprintf(" AND p.is_active = $%d", len(args))
	}
	if arg.Search != "" {
		args = append(args, "%"+arg.Search+"%")
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args))
	}
	return where, args
}

func (q *Queries) FindProducts(
	c context.Context,
	arg FindProductsParams,
) ([]FindProductsRow, error) {
	where, args := productFilters(arg)
	args = append(args, arg.Limit, arg.Offset)
	query := fmt.Sprintf(`SELECT %s
FROM products p
LEFT JOIN categories c ON p.category_id = c.id
WHERE %s
ORDER BY p.is_popular DESC, p.retail_price DESC
LIMIT $%d OFFSET $%d`, productColumns, where, len(args)-1, len(args))

	rows, err := q.db.Query(c, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []FindProductsRow{}
	for rows.Next() {
		var i FindProductsRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.ImageUrl,
			&i.RetailPrice,
			&i.UnitOfMeasure,
			&i.CategoryID,
			&i.IsPopular,
			&i.IsActive,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.CategoryName,
			&i.CategoryDescription,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) CountProducts(c context.Context, arg FindProductsParams) (int64, error) {
	where, args := productFilters(arg)
	query := fmt.Sprintf(`SELECT count(*) FROM products p WHERE %s`, where)

	var total int64
	err := q.db.QueryRow(c, query, args...).Scan(&total)
	return total, err
}

func (q *Queries) FindProductById(c context.Context, id int64) (FindProductsRow, error) {
	query := fmt.Sprintf(`SELECT %s
FROM products p
LEFT JOIN categories c ON p.category_id = c.id
WHERE p.id = $1`, productColumns)

	var i FindProductsRow
	err := q.db.QueryRow(c, query, id).Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.ImageUrl,
		&i.RetailPrice,
		&i.UnitOfMeasure,
		&i.CategoryID,
		&i.IsPopular,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CategoryName,
		&i.CategoryDescription,
	)
	return i, err
}

func (q *Queries) FindCategories(c context.Context) ([]Category, error) {
	const query = `SELECT id, name, description, parent_id, created_at, updated_at
FROM categories
ORDER BY name`

	rows, err := q.db.Query(c, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Category{}
	for rows.Next() {
		var i Category
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.ParentID,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
