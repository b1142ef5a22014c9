package importer

// masterdata.go resolves referenced master data with find-or-create
// semantics. Each entity is keyed by its natural identifier and created on
// first miss; there is no update path, so the first-created record is
// reused as-is on every later sighting even when the row carries different
// attribute values.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hfauzan/marketimport/internal/store"
)

// defaultCarrierDeliveryType is assigned to every auto-created carrier.
const defaultCarrierDeliveryType = "fixed"

// deliveryProductCode is the SKU of the platform default delivery product.
// It must already exist in the store before a carrier can be created.
const deliveryProductCode = "DELIVERY"

// Resolver finds or creates partners, products and carriers against a
// store handle.
type Resolver struct {
	st store.Store
}

// NewResolver creates a Resolver bound to the given store.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{st: st}
}

// Partner resolves the buyer partner for a row, keyed by the buyer
// username (exact, case-sensitive). A blank username is the one mapping
// failure that aborts the row.
func (r *Resolver) Partner(ctx context.Context, row RawRow) (int64, error) {
	username := row[colBuyerUsername]
	if username == "" {
		return 0, &ValidationError{Msg: "Username (Pembeli) is required to create or find a partner"}
	}

	rec, err := r.st.FindOne(ctx, store.KindPartner, store.Eq("name", username))
	if err != nil {
		return 0, err
	}
	if rec != nil {
		return rec.ID, nil
	}

	fields := store.Fields{
		"name":   username,
		"phone":  row[colReceiverPhone],
		"street": row[colShippingAddress],
		"city":   row[colCity],
	}
	if stateID, ok, err := r.stateID(ctx, row[colProvince]); err != nil {
		return 0, err
	} else if ok {
		fields["state_id"] = stateID
	} else {
		fields["state_id"] = nil
	}

	return r.st.Create(ctx, store.KindPartner, fields)
}

// stateID looks up a state by name. Unknown provinces are not an error;
// the partner is simply created without a state reference.
func (r *Resolver) stateID(ctx context.Context, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, nil
	}
	rec, err := r.st.FindOne(ctx, store.KindState, store.Eq("name", name))
	if err != nil {
		return 0, false, err
	}
	if rec == nil {
		return 0, false, nil
	}
	return rec.ID, true, nil
}

// Product resolves the product for a row, keyed by SKU reference. A row
// with no SKU still resolves: it keys a product with an empty SKU, which
// all later SKU-less rows share.
func (r *Resolver) Product(ctx context.Context, row RawRow) (int64, error) {
	sku := row[colSKUReference]
	if sku == "" {
		slog.Warn("row has no SKU reference, using empty-SKU product",
			"product_name", row[colProductName])
	}

	rec, err := r.st.FindOne(ctx, store.KindProduct, store.Eq("default_code", sku))
	if err != nil {
		return 0, err
	}
	if rec != nil {
		return rec.ID, nil
	}

	return r.st.Create(ctx, store.KindProduct, store.Fields{
		"name":         row[colProductName],
		"default_code": sku,
		"list_price":   ParseFloat(row[colOriginalPrice]),
		"weight":       ParseFloat(row[colProductWeight]),
	})
}

// Carrier resolves the delivery carrier by name. An absent name means no
// carrier reference (ok=false, not an error). A new carrier gets the fixed
// default delivery type and a reference to the platform delivery product,
// which must already exist in the store.
func (r *Resolver) Carrier(ctx context.Context, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, nil
	}

	rec, err := r.st.FindOne(ctx, store.KindCarrier, store.Eq("name", name))
	if err != nil {
		return 0, false, err
	}
	if rec != nil {
		return rec.ID, true, nil
	}

	delivery, err := r.st.FindOne(ctx, store.KindProduct, store.Eq("default_code", deliveryProductCode))
	if err != nil {
		return 0, false, err
	}
	if delivery == nil {
		return 0, false, fmt.Errorf("default delivery product %q not found in the store", deliveryProductCode)
	}

	id, err := r.st.Create(ctx, store.KindCarrier, store.Fields{
		"name":          name,
		"delivery_type": defaultCarrierDeliveryType,
		"product_id":    delivery.ID,
	})
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
