// Package blobstore persists generated artifacts such as published template
// previews and QR code images, behind a Storage interface with local
// filesystem and S3 backends.
//
// Keys are slash-separated relative paths:
//
//	store, err := blobstore.New(ctx, cfg)
//	obj, err := store.Put(ctx, "previews/"+slug+"/index.html", html, "text/html; charset=utf-8")
//	// obj.URL is ready to hand to clients
//
// The local backend confines all operations to its base directory and
// publishes writes atomically. The S3 backend works with any S3-compatible
// service via BLOBSTORE_S3_ENDPOINT.
package blobstore
