package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const cartColumns = `id, user_id, session_id, status, total_items, total_amount, created_at, updated_at`

func (q *Queries) FindActiveCartByUserId(c context.Context, userId int64) (Cart, error) {
	const query = `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND status = 'active'`

	var i Cart
	err := q.db.QueryRow(c, query, userId).Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.TotalItems,
		&i.TotalAmount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type InsertCartParams struct {
	UserID    int64
	SessionID pgtype.Text
}

func (q *Queries) InsertCart(c context.Context, arg InsertCartParams) (Cart, error) {
	const query = `INSERT INTO carts (user_id, session_id, status)
VALUES ($1, $2, 'active')
RETURNING ` + cartColumns

	var i Cart
	err := q.db.QueryRow(c, query, arg.UserID, arg.SessionID).Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.TotalItems,
		&i.TotalAmount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) UpdateCartSessionId(c context.Context, cartId int64, sessionId pgtype.Text) error {
	const query = `UPDATE carts SET session_id = $2, updated_at = now() WHERE id = $1`

	_, err := q.db.Exec(c, query, cartId, sessionId)
	return err
}

// UpdateCartTotals recomputes the cart aggregates from its lines.
func (q *Queries) UpdateCartTotals(c context.Context, cartId int64) error {
	const query = `UPDATE carts SET
	total_items = (SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = $1),
	total_amount = (SELECT COALESCE(SUM(total_price), 0) FROM cart_items WHERE cart_id = $1),
	updated_at = now()
WHERE id = $1`

	_, err := q.db.Exec(c, query, cartId)
	return err
}

const cartItemColumns = `id, cart_id, product_id, quantity, selected_size, customizations,
	unit_price, total_price, created_at, updated_at`

type FindCartItemByKeyParams struct {
	CartID         int64
	ProductID      int64
	SelectedSize   pgtype.Text
	Customizations []byte
}

// FindCartItemByKey resolves the line for a (product, size, customizations)
// combination, treating NULLs as equal so duplicate lines cannot form.
func (q *Queries) FindCartItemByKey(
	c context.Context,
	arg FindCartItemByKeyParams,
) (CartItem, error) {
	const query = `SELECT ` + cartItemColumns + `
FROM cart_items
WHERE cart_id = $1 AND product_id = $2
	AND selected_size IS NOT DISTINCT FROM $3
	AND customizations IS NOT DISTINCT FROM $4`

	var i CartItem
	err := q.db.QueryRow(
		c,
		query,
		arg.CartID,
		arg.ProductID,
		arg.SelectedSize,
		arg.Customizations,
	).Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.Quantity,
		&i.SelectedSize,
		&i.Customizations,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) FindCartItemById(c context.Context, id int64) (CartItem, error) {
	const query = `SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = $1`

	var i CartItem
	err := q.db.QueryRow(c, query, id).Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.Quantity,
		&i.SelectedSize,
		&i.Customizations,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type InsertCartItemParams struct {
	CartID         int64
	ProductID      int64
	Quantity       int32
	SelectedSize   pgtype.Text
	Customizations []byte
	UnitPrice      pgtype.Numeric
	TotalPrice     pgtype.Numeric
}

func (q *Queries) InsertCartItem(c context.Context, arg InsertCartItemParams) (CartItem, error) {
	const query = `INSERT INTO cart_items
	(cart_id, product_id, quantity, selected_size, customizations, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + cartItemColumns

	var i CartItem
	err := q.db.QueryRow(
		c,
		query,
		arg.CartID,
		arg.ProductID,
		arg.Quantity,
		arg.SelectedSize,
		arg.Customizations,
		arg.UnitPrice,
		arg.TotalPrice,
	).Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.Quantity,
		&i.SelectedSize,
		&i.Customizations,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type UpdateCartItemQuantityParams struct {
	ID         int64
	Quantity   int32
	TotalPrice pgtype.Numeric
}

func (q *Queries) UpdateCartItemQuantity(
	c context.Context,
	arg UpdateCartItemQuantityParams,
) (int64, error) {
	const query = `UPDATE cart_items
SET quantity = $2, total_price = $3, updated_at = now()
WHERE id = $1`

	tag, err := q.db.Exec(c, query, arg.ID, arg.Quantity, arg.TotalPrice)
	return tag.RowsAffected(), err
}

func (q *Queries) DeleteCartItem(c context.Context, id int64) (int64, error) {
	const query = `DELETE FROM cart_items WHERE id = $1`

	tag, err := q.db.Exec(c, query, id)
	return tag.RowsAffected(), err
}

func (q *Queries) DeleteCartItems(c context.Context, cartId int64) (int64, error) {
	const query = `DELETE FROM cart_items WHERE cart_id = $1`

	tag, err := q.db.Exec(c, query, cartId)
	return tag.RowsAffected(), err
}

type FindCartItemsWithProductRow struct {
	CartItem
	ProductName        string
	ProductDescription *string
	ProductImage       *string
	ProductPrice       pgtype.Numeric
	CategoryName       *string
}

func (q *Queries) FindCartItemsWithProduct(
	c context.Context,
	cartId int64,
) ([]FindCartItemsWithProductRow, error) {
	const query = `SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.selected_size,
	ci.customizations, ci.unit_price, ci.total_price, ci.created_at, ci.updated_at,
	p.name, p.description, p.image_url, p.retail_price, c.name
FROM cart_items ci
JOIN products p ON ci.product_id = p.id
LEFT JOIN categories c ON p.category_id = c.id
WHERE ci.cart_id = $1
ORDER BY ci.created_at DESC`

	rows, err := q.db.Query(c, query, cartId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []FindCartItemsWithProductRow{}
	for rows.Next() {
		var i FindCartItemsWithProductRow
		if err := rows.Scan(
			&i.ID,
			&i.CartID,
			&i.ProductID,
			&i.Quantity,
			&i.SelectedSize,
			&i.Customizations,
			&i.UnitPrice,
			&i.TotalPrice,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.ProductName,
			&i.ProductDescription,
			&i.ProductImage,
			&i.ProductPrice,
			&i.CategoryName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
