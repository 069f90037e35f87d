package service

// QRCodeService renders order numbers as QR images for the pickup-counter flow.
type QRCodeService interface {
	// GenerateOrderQR encodes the order number into a PNG image.
	GenerateOrderQR(orderNo string) ([]byte, error)
}
