package importer

// order.go maps one export row into an order aggregate: the full header
// field set plus exactly one new line. Orders upsert by order number with
// last-write-wins header semantics; lines always append, even when the SKU
// duplicates a prior line on the same order.

import (
	"context"

	"github.com/hfauzan/marketimport/internal/store"
)

// Required reference records. Both must exist in the store before any
// order can be imported.
const (
	paymentModeName = "BC Online"
	workflowName    = "Automatic"
)

// BatchContext carries the operator-selected references that apply to
// every row of a batch.
type BatchContext struct {
	MarketplaceID int64
}

// Upserter maps rows into orders against a store handle.
type Upserter struct {
	st       store.Store
	resolver *Resolver
}

// NewUpserter creates an Upserter bound to the given store.
func NewUpserter(st store.Store) *Upserter {
	return &Upserter{st: st, resolver: NewResolver(st)}
}

// Upsert processes one row: resolves references and master data, builds
// the order header, creates or overwrites the order keyed by its order
// number, and appends a new line. It returns the order's identifier.
func (u *Upserter) Upsert(ctx context.Context, row RawRow, bc BatchContext) (int64, error) {
	existing, err := u.st.FindOne(ctx, store.KindOrder,
		store.Eq("nomor_pesanan", row[colOrderNumber]))
	if err != nil {
		return 0, err
	}

	paymentMode, err := u.st.FindOne(ctx, store.KindPaymentMode, store.Eq("name", paymentModeName))
	if err != nil {
		return 0, err
	}
	if paymentMode == nil {
		return 0, &ValidationError{Msg: "Payment mode 'BC Online' not found in the system"}
	}

	workflow, err := u.st.FindOne(ctx, store.KindWorkflow, store.Eq("name", workflowName))
	if err != nil {
		return 0, err
	}
	if workflow == nil {
		return 0, &ValidationError{Msg: "Workflow 'Automatic' not found in the system"}
	}

	partnerID, err := u.resolver.Partner(ctx, row)
	if err != nil {
		return 0, err
	}

	carrierID, hasCarrier, err := u.resolver.Carrier(ctx, row[colShippingOption])
	if err != nil {
		return 0, err
	}

	shippingOption := "pickup"
	if row[colCounterPickup] == counterPickupLabel {
		shippingOption = "antar counter"
	}

	header := store.Fields{
		"partner_id":                 partnerID,
		"nomor_pesanan":              row[colOrderNumber],
		"order_status":               row[colOrderStatus],
		"cancellation_return_status": row[colCancellationStatus],
		"tracking_number":            row[colTrackingNumber],
		"opsi_pengiriman":            row[colShippingOption],
		"shipping_option":            shippingOption,
		"must_ship_before":           dateField(row[colMustShipBefore]),
		"order_creation_time":        dateField(row[colOrderCreated]),
		"payment_time":               dateField(row[colPaymentTime]),
		"payment_method":             row[colPaymentMethod],
		"platform_discount":          ParseFloat(row[colPlatformDiscount]),
		"cashback":                   ParseFloat(row[colCashback]),
		"voucher_platform":           ParseFloat(row[colVoucherPlatform]),
		"package_discount":           ParseFloat(row[colPackageDiscount]),
		"package_discount_platform":  ParseFloat(row[colPackageDiscountPlt]),
		"package_discount_seller":    ParseFloat(row[colPackageDiscountSlr]),
		"coin_discount":              ParseFloat(row[colCoinDiscount]),
		"credit_card_discount":       ParseFloat(row[colCreditCardDiscount]),
		"shipping_fee_paid_by_buyer": ParseFloat(row[colShippingFeeBuyer]),
		"shipping_fee_discount":      ParseFloat(row[colShippingFeeRebate]),
		"return_shipping_fee":        ParseFloat(row[colReturnShippingFee]),
		"estimated_shipping_fee":     ParseFloat(row[colEstimatedShipFee]),
		"buyer_note":                 row[colBuyerNote],
		"buyer_username":             row[colBuyerUsername],
		"receiver_name":              row[colReceiverName],
		"receiver_phone":             row[colReceiverPhone],
		"shipping_address":           row[colShippingAddress],
		"city":                       row[colCity],
		"province":                   row[colProvince],
		"order_completion_time":      dateField(row[colOrderCompleted]),
		"sale_marketplace":           bc.MarketplaceID,
		"payment_mode_id":            paymentMode.ID,
		"workflow_process_id":        workflow.ID,
	}
	if hasCarrier {
		header["carrier_id"] = carrierID
	} else {
		header["carrier_id"] = nil
	}

	var orderID int64
	if existing != nil {
		// Last-write-wins: the newest row overwrites every header field.
		// Discounts and totals are not accumulated across repeated rows.
		orderID = existing.ID
		if err := u.st.Update(ctx, store.KindOrder, orderID, header); err != nil {
			return 0, err
		}
	} else {
		orderID, err = u.st.Create(ctx, store.KindOrder, header)
		if err != nil {
			return 0, err
		}
	}

	productID, err := u.resolver.Product(ctx, row)
	if err != nil {
		return 0, err
	}

	originalPrice := ParseFloat(row[colOriginalPrice])
	discountedPrice := ParseFloat(row[colDiscountedPrice])

	discountPercent := 0.0
	if originalPrice > 0 {
		discountPercent = (originalPrice - discountedPrice) / originalPrice * 100
	}

	// Lines append unconditionally: a repeated row adds another line even
	// when its SKU matches one already on the order.
	_, err = u.st.Create(ctx, store.KindOrderLine, store.Fields{
		"order_id":          orderID,
		"product_id":        productID,
		"parent_sku":        row[colParentSKU],
		"sku_reference":     row[colSKUReference],
		"variation_name":    row[colVariationName],
		"original_price":    originalPrice,
		"discounted_price":  discountedPrice,
		"returned_quantity": ParseFloat(row[colReturnedQuantity]),
		"product_uom_qty":   ParseFloat(row[colQuantity]),
		"product_weight":    ParseFloat(row[colProductWeight]),
		"total_weight":      ParseFloat(row[colTotalWeight]),
		"discount":          discountPercent,
		"price_unit":        originalPrice,
	})
	if err != nil {
		return 0, err
	}

	return orderID, nil
}
