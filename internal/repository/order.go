package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, user_id, session_id, status, total_amount, tax_amount,
	discount_amount, final_amount, payment_status, payment_method, shipping_address,
	billing_address, notes, created_at, updated_at`

type InsertOrderParams struct {
	OrderNumber     string
	UserID          pgtype.Int8
	SessionID       pgtype.Text
	TotalAmount     pgtype.Numeric
	TaxAmount       pgtype.Numeric
	DiscountAmount  pgtype.Numeric
	FinalAmount     pgtype.Numeric
	PaymentMethod   pgtype.Text
	ShippingAddress []byte
	BillingAddress  []byte
	Notes           pgtype.Text
}

func (q *Queries) InsertOrder(c context.Context, arg InsertOrderParams) (Order, error) {
	const query = `INSERT INTO orders
	(order_number, user_id, session_id, total_amount, tax_amount, discount_amount,
	 final_amount, payment_method, shipping_address, billing_address, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + orderColumns

	var i Order
	err := q.db.QueryRow(
		c,
		query,
		arg.OrderNumber,
		arg.UserID,
		arg.SessionID,
		arg.TotalAmount,
		arg.TaxAmount,
		arg.DiscountAmount,
		arg.FinalAmount,
		arg.PaymentMethod,
		arg.ShippingAddress,
		arg.BillingAddress,
		arg.Notes,
	).Scan(
		&i.ID,
		&i.OrderNumber,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.TotalAmount,
		&i.TaxAmount,
		&i.DiscountAmount,
		&i.FinalAmount,
		&i.PaymentStatus,
		&i.PaymentMethod,
		&i.ShippingAddress,
		&i.BillingAddress,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type InsertOrderItemParams struct {
	OrderID        int64
	ProductID      int64
	Quantity       int32
	UnitPrice      pgtype.Numeric
	TotalPrice     pgtype.Numeric
	SelectedSize   pgtype.Text
	Customizations []byte
	Notes          pgtype.Text
}

func (q *Queries) InsertOrderItems(c context.Context, args []InsertOrderItemParams) (int64, error) {
	const query = `INSERT INTO order_items
	(order_id, product_id, quantity, unit_price, total_price, selected_size, customizations, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var inserted int64
	for _, arg := range args {
		tag, err := q.db.Exec(
			c,
			query,
			arg.OrderID,
			arg.ProductID,
			arg.Quantity,
			arg.UnitPrice,
			arg.TotalPrice,
			arg.SelectedSize,
			arg.Customizations,
			arg.Notes,
		)
		if err != nil {
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

func (q *Queries) FindOrderById(c context.Context, id int64) (Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var i Order
	err := q.db.QueryRow(c, query, id).Scan(
		&i.ID,
		&i.OrderNumber,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.TotalAmount,
		&i.TaxAmount,
		&i.DiscountAmount,
		&i.FinalAmount,
		&i.PaymentStatus,
		&i.PaymentMethod,
		&i.ShippingAddress,
		&i.BillingAddress,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type FindOrdersParams struct {
	UserID pgtype.Int8
	Limit  int32
}

func (q *Queries) FindOrders(c context.Context, arg FindOrdersParams) ([]Order, error) {
	const query = `SELECT ` + orderColumns + `
FROM orders
WHERE ($1::bigint IS NULL OR user_id = $1)
ORDER BY created_at DESC
LIMIT $2`

	rows, err := q.db.Query(c, query, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Order{}
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.OrderNumber,
			&i.UserID,
			&i.SessionID,
			&i.Status,
			&i.TotalAmount,
			&i.TaxAmount,
			&i.DiscountAmount,
			&i.FinalAmount,
			&i.PaymentStatus,
			&i.PaymentMethod,
			&i.ShippingAddress,
			&i.BillingAddress,
			&i.Notes,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type FindOrderItemsWithProductRow struct {
	OrderItem
	ProductName        string
	ProductDescription *string
	ProductImage       *string
}

func (q *Queries) FindOrderItemsWithProduct(
	c context.Context,
	orderId int64,
) ([]FindOrderItemsWithProductRow, error) {
	const query = `SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price,
	oi.total_price, oi.selected_size, oi.customizations, oi.notes, oi.created_at,
	p.name, p.description, p.image_url
FROM order_items oi
JOIN products p ON oi.product_id = p.id
WHERE oi.order_id = $1`

	rows, err := q.db.Query(c, query, orderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []FindOrderItemsWithProductRow{}
	for rows.Next() {
		var i FindOrderItemsWithProductRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalPrice,
			&i.SelectedSize,
			&i.Customizations,
			&i.Notes,
			&i.CreatedAt,
			&i.ProductName,
			&i.ProductDescription,
			&i.ProductImage,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
