package pgx

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/lborres/apothecary/core"
)

// potionDocument is the JSONB shape of a stored potion. The id lives in
// its own column.
type potionDocument struct {
	Name        string       `json:"name"`
	Ingredients []core.Value `json:"ingredients"`
	Effects     core.Effects `json:"effects"`
	Categories  []string     `json:"categories"`
	Price       float64      `json:"price"`
	Score       float64      `json:"score"`
	VendorID    string       `json:"vendorId"`
}

func encodePotion(p *core.Potion) ([]byte, error) {
	doc := potionDocument{
		Name:        p.Name,
		Ingredients: p.Ingredients,
		Effects:     p.Effects,
		Categories:  p.Categories,
		Price:       p.Price,
		Score:       p.Score,
		VendorID:    p.VendorID,
	}
	if doc.Ingredients == nil {
		doc.Ingredients = []core.Value{}
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	return json.Marshal(doc)
}

func decodePotion(id string, raw []byte) (*core.Potion, error) {
	var doc potionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, oops.Code("POTION_DECODE_FAILED").With("id", id).Wrap(err)
	}
	p := &core.Potion{
		ID:          id,
		Name:        doc.Name,
		Ingredients: doc.Ingredients,
		Effects:     doc.Effects,
		Categories:  doc.Categories,
		Price:       doc.Price,
		Score:       doc.Score,
		VendorID:    doc.VendorID,
	}
	if p.Ingredients == nil {
		p.Ingredients = []core.Value{}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	return p, nil
}

func (a *Adapter) CreatePotion(ctx context.Context, p *core.Potion) error {
	id, err := a.ids.New()
	if err != nil {
		return oops.Code("POTION_ID_FAILED").Wrap(err)
	}

	doc, err := encodePotion(p)
	if err != nil {
		return oops.Code("POTION_ENCODE_FAILED").Wrap(err)
	}

	if _, err := a.pool.Exec(ctx, `INSERT INTO potions (id, doc) VALUES ($1, $2)`, id, doc); err != nil {
		return oops.Code("POTION_INSERT_FAILED").With("vendor_id", p.VendorID).Wrap(err)
	}

	p.ID = id
	return nil
}

func (a *Adapter) GetPotion(ctx context.Context, id string) (*core.Potion, error) {
	var raw []byte
	err := a.pool.QueryRow(ctx, `SELECT doc FROM potions WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrPotionNotFound
		}
		return nil, oops.Code("POTION_QUERY_FAILED").With("id", id).Wrap(err)
	}
	return decodePotion(id, raw)
}

func (a *Adapter) ListPotions(ctx context.Context, filter core.PotionFilter) ([]*core.Potion, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.VendorID == "" {
		rows, err = a.pool.Query(ctx, `SELECT id, doc FROM potions ORDER BY seq`)
	} else {
		rows, err = a.pool.Query(ctx,
			`SELECT id, doc FROM potions WHERE doc->>'vendorId' = $1 ORDER BY seq`,
			filter.VendorID)
	}
	if err != nil {
		return nil, oops.Code("POTION_QUERY_FAILED").With("vendor_id", filter.VendorID).Wrap(err)
	}
	defer rows.Close()

	potions := []*core.Potion{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, oops.Code("POTION_SCAN_FAILED").Wrap(err)
		}
		p, err := decodePotion(id, raw)
		if err != nil {
			return nil, err
		}
		potions = append(potions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POTION_QUERY_FAILED").With("operation", "iterate potions").Wrap(err)
	}
	return potions, nil
}

func (a *Adapter) ListPotionNames(ctx context.Context) ([]string, error) {
	rows, err := a.pool.Query(ctx, `SELECT doc->>'name' FROM potions ORDER BY seq`)
	if err != nil {
		return nil, oops.Code("POTION_QUERY_FAILED").With("operation", "list names").Wrap(err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, oops.Code("POTION_SCAN_FAILED").Wrap(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POTION_QUERY_FAILED").With("operation", "iterate names").Wrap(err)
	}
	return names, nil
}

// UpdatePotion locks the row for the length of a transaction so
// concurrent updates to the same potion apply one after the other.
func (a *Adapter) UpdatePotion(ctx context.Context, id string, fn func(*core.Potion) (*core.Potion, error)) (*core.Potion, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, oops.Code("POTION_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM potions WHERE id = $1 FOR UPDATE`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrPotionNotFound
		}
		return nil, oops.Code("POTION_QUERY_FAILED").With("id", id).Wrap(err)
	}
	current, err := decodePotion(id, raw)
	if err != nil {
		return nil, err
	}

	updated, err := fn(current)
	if err != nil {
		return nil, err
	}
	updated.ID = id

	doc, err := encodePotion(updated)
	if err != nil {
		return nil, oops.Code("POTION_ENCODE_FAILED").With("id", id).Wrap(err)
	}
	if _, err := tx.Exec(ctx, `UPDATE potions SET doc = $2 WHERE id = $1`, id, doc); err != nil {
		return nil, oops.Code("POTION_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, oops.Code("POTION_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	return updated, nil
}

func (a *Adapter) DeletePotion(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM potions WHERE id = $1`, id)
	if err != nil {
		return oops.Code("POTION_DELETE_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrPotionNotFound
	}
	return nil
}
