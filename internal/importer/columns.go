package importer

// Column headers of the marketplace order export. The importer targets this
// one fixed schema; headers must match the export file exactly, including
// the marketplace's own spelling quirks (e.g. "Diskan Kartu Kredit").
const (
	colOrderNumber        = "No. Pesanan"
	colOrderStatus        = "Status Pesanan"
	colCancellationStatus = "Status Pembatalan/ Pengembalian"
	colTrackingNumber     = "No. Resi"
	colShippingOption     = "Opsi Pengiriman"
	colCounterPickup      = "Antar ke counter/ pick-up"
	colMustShipBefore     = "Pesanan Harus Dikirimkan Sebelum (Menghindari keterlambatan)"
	colOrderCreated       = "Waktu Pesanan Dibuat"
	colPaymentTime        = "Waktu Pembayaran Dilakukan"
	colPaymentMethod      = "Metode Pembayaran"
	colPlatformDiscount   = "Diskon Dari Shopee"
	colCashback           = "Cashback Koin"
	colVoucherPlatform    = "Voucher Ditanggung Shopee"
	colPackageDiscount    = "Paket Diskon"
	colPackageDiscountPlt = "Paket Diskon (Diskon dari Shopee)"
	colPackageDiscountSlr = "Paket Diskon (Diskon dari Penjual)"
	colCoinDiscount       = "Potongan Koin Shopee"
	colCreditCardDiscount = "Diskan Kartu Kredit"
	colShippingFeeBuyer   = "Ongkos Kirim Dibayar oleh Pembeli"
	colShippingFeeRebate  = "Estimasi Potongan Biaya Pengiriman"
	colReturnShippingFee  = "Ongkos Kirim Pengembalian Barang"
	colEstimatedShipFee   = "Perkiraan Ongkos Kirim"
	colBuyerNote          = "Catatan dari Pembeli"
	colBuyerUsername      = "Username (Pembeli)"
	colReceiverName       = "Nama Penerima"
	colReceiverPhone      = "No. Telepon"
	colShippingAddress    = "Alamat Pengiriman"
	colCity               = "Kota/Kabupaten"
	colProvince           = "Provinsi"
	colOrderCompleted     = "Waktu Pesanan Selesai"
	colParentSKU          = "SKU Induk"
	colSKUReference       = "Nomor Referensi SKU"
	colVariationName      = "Nama Variasi"
	colProductName        = "Nama Produk"
	colOriginalPrice      = "Harga Awal"
	colDiscountedPrice    = "Harga Setelah Diskon"
	colQuantity           = "Jumlah"
	colReturnedQuantity   = "Returned quantity"
	colProductWeight      = "Berat Produk"
	colTotalWeight        = "Total Berat"
)

// counterPickupLabel is the exact cell value that selects counter drop-off.
// The comparison is case- and whitespace-sensitive; any other value means
// pickup.
const counterPickupLabel = "Antar Ke Counter"
