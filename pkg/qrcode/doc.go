// Package qrcode generates QR code images as raw PNG bytes or as base64
// data URIs that can be embedded directly into HTML.
//
// It is a thin wrapper around github.com/skip2/go-qrcode with input
// validation and a default image size. Sentinel errors can be matched with
// errors.Is.
package qrcode
